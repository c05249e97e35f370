package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/language-lab-api/internal/models"
)

// Enrollment failures. Each one means nothing was committed.
var (
	ErrSelectionNotFound = errors.New("selection not found")
	ErrSelectionMismatch = errors.New("selection does not match payment")
	ErrSelectionConsumed = errors.New("selection already paid")
	ErrClassNotFound     = errors.New("class not found")
	ErrClassSoldOut      = errors.New("class sold out")
)

const uniqueViolation = pq.ErrorCode("23505")

// EnrollmentRepository runs the payment -> seat -> cart transition in one transaction.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll consumes the payment's selection entry, takes one seat from the class, and
// records the payment. Seats are taken with a conditional update so concurrent payments
// for the last seat cannot drive available_seat negative; the selection row is locked so
// it is consumed at most once. Either all three writes commit or none do.
func (r *EnrollmentRepository) Enroll(ctx context.Context, payment *models.PaymentRecord) (result *models.EnrollmentResult, err error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.Date.IsZero() {
		payment.Date = now
	}
	payment.CreatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enrollment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var selection models.SelectionEntry
	const lockSelection = `SELECT ` + selectionColumns + ` FROM selected_classes WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &selection, lockSelection, payment.SelectedClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSelectionNotFound
		}
		return nil, fmt.Errorf("lock selection: %w", err)
	}
	if selection.ClassID != payment.ClassID || !strings.EqualFold(selection.StudentEmail, payment.StudentEmail) {
		return nil, ErrSelectionMismatch
	}
	if payment.ClassName == "" {
		payment.ClassName = selection.Name
	}

	var seats models.SeatCounters
	const takeSeat = `UPDATE classes SET available_seat = available_seat - 1, total_enrolled = total_enrolled + 1, updated_at = $2
WHERE id = $1 AND available_seat > 0
RETURNING available_seat, total_enrolled`
	if err = tx.GetContext(ctx, &seats, takeSeat, payment.ClassID, now); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("take seat: %w", err)
		}
		return nil, r.classMissingOrFull(ctx, tx, payment.ClassID)
	}

	const insertPayment = `INSERT INTO payments (` + paymentColumns + `)
VALUES (:id, :student_email, :class_id, :selected_class_id, :class_name, :amount, :transaction_id, :date, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertPayment, payment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrSelectionConsumed
		}
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	const deleteSelection = `DELETE FROM selected_classes WHERE id = $1`
	res, err := tx.ExecContext(ctx, deleteSelection, payment.SelectedClassID)
	if err != nil {
		return nil, fmt.Errorf("delete selection: %w", err)
	}
	deleted, err := deleteResult(res)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enrollment: %w", err)
	}

	return &models.EnrollmentResult{
		InsertResult: models.InsertResult{Acknowledged: true, InsertedID: payment.ID},
		UpdateResult: models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1},
		DeleteResult: deleted,
		Seats:        seats,
	}, nil
}

func (r *EnrollmentRepository) classMissingOrFull(ctx context.Context, tx *sqlx.Tx, classID string) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)`, classID); err != nil {
		return fmt.Errorf("check class: %w", err)
	}
	if !exists {
		return ErrClassNotFound
	}
	return ErrClassSoldOut
}
