package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/language-lab-api/internal/models"
)

const paymentColumns = `id, student_email, class_id, selected_class_id, class_name, amount, transaction_id, date, created_at`

// PaymentRepository reads the append-only payment ledger. Writes happen only inside the
// enrollment transaction.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByStudent returns a student's payments, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE LOWER(student_email) = LOWER($1) ORDER BY date DESC`
	payments := []models.PaymentRecord{}
	if err := r.db.SelectContext(ctx, &payments, query, email); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
