package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/language-lab-api/internal/models"
)

const classColumns = `id, name, image_url, instructor_name, instructor_email, price, available_seat, total_enrolled, status, feedback, created_at, updated_at`

// ClassRepository persists the class catalog.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create inserts a new listing.
func (r *ClassRepository) Create(ctx context.Context, class *models.ClassListing) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	if class.Status == "" {
		class.Status = models.ClassStatusPending
	}

	const query = `INSERT INTO classes (` + classColumns + `)
VALUES (:id, :name, :image_url, :instructor_name, :instructor_email, :price, :available_seat, :total_enrolled, :status, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// FindByID returns a listing by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassListing, error) {
	const query = `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	var class models.ClassListing
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// ListAll returns every listing, newest first.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.ClassListing, error) {
	const query = `SELECT ` + classColumns + ` FROM classes ORDER BY created_at DESC`
	return r.list(ctx, "list classes", query)
}

// ListByStatus returns listings in the given status, most enrolled first.
func (r *ClassRepository) ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.ClassListing, error) {
	const query = `SELECT ` + classColumns + ` FROM classes WHERE status = $1 ORDER BY total_enrolled DESC, created_at ASC`
	return r.list(ctx, "list classes by status", query, status)
}

// ListByInstructor returns the listings owned by an instructor.
func (r *ClassRepository) ListByInstructor(ctx context.Context, email string) ([]models.ClassListing, error) {
	const query = `SELECT ` + classColumns + ` FROM classes WHERE LOWER(instructor_email) = LOWER($1) ORDER BY created_at DESC`
	return r.list(ctx, "list classes by instructor", query, email)
}

// UpdateStatus overwrites a listing's moderation status.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, status models.ClassStatus) (models.UpdateResult, error) {
	const query = `UPDATE classes SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update class status: %w", err)
	}
	return updateResult(res)
}

// UpdateFeedback overwrites a listing's moderation feedback.
func (r *ClassRepository) UpdateFeedback(ctx context.Context, id, feedback string) (models.UpdateResult, error) {
	const query = `UPDATE classes SET feedback = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, feedback, time.Now().UTC())
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update class feedback: %w", err)
	}
	return updateResult(res)
}

func (r *ClassRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]models.ClassListing, error) {
	classes := []models.ClassListing{}
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return classes, nil
}
