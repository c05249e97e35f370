package models

import "time"

// PaymentRecord is an immutable completed payment. A student's enrolled classes are
// exactly their payment records.
type PaymentRecord struct {
	ID              string    `db:"id" json:"id"`
	StudentEmail    string    `db:"student_email" json:"studentEmail"`
	ClassID         string    `db:"class_id" json:"classId"`
	SelectedClassID string    `db:"selected_class_id" json:"selectedClassId"`
	ClassName       string    `db:"class_name" json:"className"`
	Amount          float64   `db:"amount" json:"amount"`
	TransactionID   string    `db:"transaction_id" json:"transactionId"`
	Date            time.Time `db:"date" json:"date"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
