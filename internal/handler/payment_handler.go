package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/payment"
	"github.com/noah-isme/language-lab-api/pkg/response"
)

type paymentService interface {
	CreateIntent(ctx context.Context, req dto.PaymentIntentRequest) (*payment.Intent, error)
	Enroll(ctx context.Context, actor service.Actor, req dto.PaymentRequest) (*models.EnrollmentResult, error)
	History(ctx context.Context, email string) ([]models.PaymentRecord, error)
	Enrolled(ctx context.Context, email string) ([]models.PaymentRecord, error)
	ExportHistory(ctx context.Context, email string, format dto.ExportFormat) (*service.ExportFile, error)
}

// PaymentHandler serves payment intents, enrollment and payment history.
type PaymentHandler struct {
	service paymentService
	users   subjectAuthorizer
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc paymentService, users subjectAuthorizer) *PaymentHandler {
	return &PaymentHandler{service: svc, users: users}
}

// CreateIntent godoc
// @Summary Create a payment intent
// @Description Returns the processor's client secret for a card payment of price
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PaymentIntentRequest true "Price"
// @Success 200 {object} map[string]string
// @Failure 502 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /create-payment-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	intent, err := h.service.CreateIntent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

// Pay godoc
// @Summary Record a payment and enroll
// @Description Consumes the cart entry, takes a seat and stores the payment atomically
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PaymentRequest true "Confirmed payment"
// @Success 201 {object} models.EnrollmentResult
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope "sold out"
// @Router /payments [post]
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.Enroll(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Enrolled godoc
// @Summary Enrolled classes
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param email query string false "Student email, defaults to the caller"
// @Success 200 {array} models.PaymentRecord
// @Router /enrolled-classes [get]
func (h *PaymentHandler) Enrolled(c *gin.Context) {
	email, ok := resolveSubject(c, h.users, c.Query("email"))
	if !ok {
		return
	}
	payments, err := h.service.Enrolled(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments)
}

// History godoc
// @Summary Payment history, newest first
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param email query string false "Student email, defaults to the caller"
// @Success 200 {array} models.PaymentRecord
// @Router /payment-history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	email, ok := resolveSubject(c, h.users, c.Query("email"))
	if !ok {
		return
	}
	payments, err := h.service.History(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments)
}

// Export godoc
// @Summary Download payment history
// @Tags Payments
// @Produce application/pdf
// @Produce text/csv
// @Security BearerAuth
// @Param format query string false "Format" Enums(pdf, csv)
// @Param email query string false "Student email, defaults to the caller"
// @Success 200 {file} file
// @Router /payment-history/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	email, ok := resolveSubject(c, h.users, c.Query("email"))
	if !ok {
		return
	}
	file, err := h.service.ExportHistory(c.Request.Context(), email, dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatPDF))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, file.ContentType, file.Filename, file.Body)
}
