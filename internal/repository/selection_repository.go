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

const selectionColumns = `id, student_email, class_id, name, image_url, instructor_name, price, created_at`

// SelectionRepository persists the per-student selection ledger (cart).
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository constructs the repository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// Create inserts a cart entry. Duplicate entries for the same class are allowed.
func (r *SelectionRepository) Create(ctx context.Context, entry *models.SelectionEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO selected_classes (` + selectionColumns + `)
VALUES (:id, :student_email, :class_id, :name, :image_url, :instructor_name, :price, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create selection: %w", err)
	}
	return nil
}

// FindByID returns a cart entry.
func (r *SelectionRepository) FindByID(ctx context.Context, id string) (*models.SelectionEntry, error) {
	const query = `SELECT ` + selectionColumns + ` FROM selected_classes WHERE id = $1`
	var entry models.SelectionEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find selection: %w", err)
	}
	return &entry, nil
}

// ListByStudent returns a student's cart, oldest first.
func (r *SelectionRepository) ListByStudent(ctx context.Context, email string) ([]models.SelectionEntry, error) {
	const query = `SELECT ` + selectionColumns + ` FROM selected_classes WHERE LOWER(student_email) = LOWER($1) ORDER BY created_at ASC`
	entries := []models.SelectionEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, email); err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	return entries, nil
}

// Delete removes a cart entry owned by studentEmail. Entries owned by someone else are
// left untouched and report zero deletions.
func (r *SelectionRepository) Delete(ctx context.Context, id, studentEmail string) (models.DeleteResult, error) {
	const query = `DELETE FROM selected_classes WHERE id = $1 AND LOWER(student_email) = LOWER($2)`
	res, err := r.db.ExecContext(ctx, query, id, studentEmail)
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete selection: %w", err)
	}
	return deleteResult(res)
}
