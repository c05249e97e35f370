package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/repository"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/export"
	"github.com/noah-isme/language-lab-api/pkg/payment"
)

type enrollmentStore interface {
	Enroll(ctx context.Context, payment *models.PaymentRecord) (*models.EnrollmentResult, error)
}

type paymentRepository interface {
	ListByStudent(ctx context.Context, email string) ([]models.PaymentRecord, error)
}

type intentProcessor interface {
	CreateIntent(ctx context.Context, amount int64) (*payment.Intent, error)
}

type catalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

type renderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered payment history document.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// PaymentService covers payment intents, the enrollment transition and payment history.
type PaymentService struct {
	enrollments enrollmentStore
	payments    paymentRepository
	processor   intentProcessor
	catalog     catalogInvalidator
	renderers   map[dto.ExportFormat]renderer
	metrics     *MetricsService
	audit       *AuditService
	validator   *validator.Validate
	logger      *zap.Logger
}

// PaymentServiceParams groups the dependencies of NewPaymentService. Processor may be nil
// when no processor key is configured.
type PaymentServiceParams struct {
	Enrollments enrollmentStore
	Payments    paymentRepository
	Processor   intentProcessor
	Catalog     catalogInvalidator
	Metrics     *MetricsService
	Audit       *AuditService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewPaymentService constructs the service with the PDF and CSV history renderers.
func NewPaymentService(p PaymentServiceParams) *PaymentService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	return &PaymentService{
		enrollments: p.Enrollments,
		payments:    p.Payments,
		processor:   p.Processor,
		catalog:     p.Catalog,
		renderers: map[dto.ExportFormat]renderer{
			dto.ExportFormatPDF: export.NewPDFExporter(),
			dto.ExportFormatCSV: export.NewCSVExporter(),
		},
		metrics:   p.Metrics,
		audit:     p.Audit,
		validator: p.Validator,
		logger:    p.Logger,
	}
}

// CreateIntent asks the processor for an intent covering price and returns it verbatim.
func (s *PaymentService) CreateIntent(ctx context.Context, req dto.PaymentIntentRequest) (*payment.Intent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment intent payload")
	}
	if s.processor == nil {
		return nil, appErrors.ErrPaymentsDisabled
	}
	amount := payment.MinorUnits(req.Price)
	if amount <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price is below the smallest currency unit")
	}

	start := time.Now()
	intent, err := s.processor.CreateIntent(ctx, amount)
	s.metrics.ObservePaymentIntent(err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("payment intent failed", zap.Int64("amount", amount), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment processor unavailable")
	}
	return intent, nil
}

// Enroll records a confirmed payment: it consumes the selection, takes a seat and stores the
// payment in one transaction. On any error nothing was committed.
func (s *PaymentService) Enroll(ctx context.Context, actor Actor, req dto.PaymentRequest) (*models.EnrollmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if req.StudentEmail != "" && !strings.EqualFold(req.StudentEmail, actor.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "payment must be made by the paying student")
	}
	if err := checkID(req.SelectedClassID, "selection"); err != nil {
		return nil, err
	}
	if err := checkID(req.ClassID, "class"); err != nil {
		return nil, err
	}

	record := &models.PaymentRecord{
		StudentEmail:    actor.Email,
		ClassID:         req.ClassID,
		SelectedClassID: req.SelectedClassID,
		ClassName:       req.ClassName,
		Amount:          req.Amount,
		TransactionID:   req.TransactionID,
		Date:            req.Date.UTC(),
	}

	result, err := s.enrollments.Enroll(ctx, record)
	if err != nil {
		outcome, mapped := enrollmentError(err)
		s.metrics.RecordEnrollment(outcome)
		if outcome == EnrollmentFailed {
			s.logger.Error("enrollment aborted",
				zap.String("selected_class_id", req.SelectedClassID),
				zap.String("class_id", req.ClassID),
				zap.Error(err))
		}
		return nil, mapped
	}

	s.metrics.RecordEnrollment(EnrollmentCommitted)
	if s.catalog != nil {
		s.catalog.InvalidateCatalog(ctx)
	}
	s.audit.Record(ctx, actor.event(models.AuditActionEnroll, "payment", record.ID, map[string]interface{}{
		"classId":         record.ClassID,
		"selectedClassId": record.SelectedClassID,
		"amount":          record.Amount,
		"availableSeat":   result.Seats.AvailableSeat,
	}))
	return result, nil
}

func enrollmentError(err error) (string, error) {
	switch {
	case errors.Is(err, repository.ErrClassSoldOut):
		return EnrollmentSoldOut, appErrors.ErrSoldOut
	case errors.Is(err, repository.ErrSelectionNotFound):
		return EnrollmentRejected, appErrors.Clone(appErrors.ErrNotFound, "selection not found")
	case errors.Is(err, repository.ErrClassNotFound):
		return EnrollmentRejected, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	case errors.Is(err, repository.ErrSelectionMismatch):
		return EnrollmentRejected, appErrors.Clone(appErrors.ErrValidation, "selection does not match the paid class")
	case errors.Is(err, repository.ErrSelectionConsumed):
		return EnrollmentRejected, appErrors.Clone(appErrors.ErrNotFound, "selection already paid")
	default:
		return EnrollmentFailed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enrollment did not complete")
	}
}

// History returns email's payments, newest first.
func (s *PaymentService) History(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	payments, err := s.payments.ListByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment history")
	}
	return payments, nil
}

// Enrolled returns email's enrolled classes, which are exactly their payment records.
func (s *PaymentService) Enrolled(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	return s.History(ctx, email)
}

// ExportHistory renders email's payment history in format.
func (s *PaymentService) ExportHistory(ctx context.Context, email string, format dto.ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatPDF
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	payments, err := s.History(ctx, email)
	if err != nil {
		return nil, err
	}

	body, err := r.Render(paymentDataset(payments), "Payment history for "+email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render payment history")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("payment-history-%s.%s", time.Now().UTC().Format("20060102"), r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

func paymentDataset(payments []models.PaymentRecord) export.Dataset {
	data := export.Dataset{Headers: []string{"Date", "Class", "Amount", "Transaction"}}
	for _, p := range payments {
		data.Rows = append(data.Rows, map[string]string{
			"Date":        p.Date.Format("2006-01-02 15:04"),
			"Class":       p.ClassName,
			"Amount":      fmt.Sprintf("%.2f", p.Amount),
			"Transaction": p.TransactionID,
		})
	}
	return data
}
