package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-lab-api/internal/models"
)

var classRowColumns = []string{"id", "name", "image_url", "instructor_name", "instructor_email", "price", "available_seat", "total_enrolled", "status", "feedback", "created_at", "updated_at"}

func TestClassRepositoryCreateDefaultsToPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO classes")).WillReturnResult(sqlmock.NewResult(0, 1))

	class := &models.ClassListing{Name: "Spanish A1", InstructorEmail: "i@x.com", AvailableSeat: 10}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)
	assert.Equal(t, models.ClassStatusPending, class.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListByStatusRanksByEnrollment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(classRowColumns).
		AddRow("c2", "French", "", "Ines", "i@x.com", "40.00", 3, 10, "approved", nil, now, now).
		AddRow("c1", "Spanish", "", "Ines", "i@x.com", "50.00", 5, 3, "approved", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE status = $1 ORDER BY total_enrolled DESC")).
		WithArgs(models.ClassStatusApproved).
		WillReturnRows(rows)

	classes, err := repo.ListByStatus(context.Background(), models.ClassStatusApproved)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 10, classes[0].TotalEnrolled)
	assert.Equal(t, 40.0, classes[0].Price)
	assert.Nil(t, classes[0].Feedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListByInstructorEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(instructor_email) = LOWER($1)")).
		WithArgs("i@x.com").
		WillReturnRows(sqlmock.NewRows(classRowColumns))

	classes, err := repo.ListByInstructor(context.Background(), "i@x.com")
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Empty(t, classes)
}

func TestClassRepositoryUpdateFeedbackNoMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET feedback = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("missing", "Add more detail", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := repo.UpdateFeedback(context.Background(), "missing", "Add more detail")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MatchedCount)
}
