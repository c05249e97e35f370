package dto

import "time"

// PaymentIntentRequest asks the processor for an intent covering price.
type PaymentIntentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

// PaymentRequest records a processor-confirmed payment and triggers the enrollment
// transition.
type PaymentRequest struct {
	SelectedClassID string    `json:"selectedClassId" validate:"required"`
	ClassID         string    `json:"classId" validate:"required"`
	StudentEmail    string    `json:"studentEmail" validate:"omitempty,email"`
	ClassName       string    `json:"className" validate:"max=200"`
	Amount          float64   `json:"amount" validate:"gte=0"`
	TransactionID   string    `json:"transactionId" validate:"max=255"`
	Date            time.Time `json:"date"`
}

// ExportFormat selects the payment history renderer.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)
