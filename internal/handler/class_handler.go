package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/middleware"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/response"
)

type classService interface {
	Create(ctx context.Context, actor service.Actor, req dto.CreateClassRequest) (*models.InsertResult, error)
	Get(ctx context.Context, id string) (*models.ClassListing, error)
	ListAll(ctx context.Context) ([]models.ClassListing, error)
	ListApproved(ctx context.Context, status models.ClassStatus) ([]models.ClassListing, bool, error)
	ListByInstructor(ctx context.Context, email string) ([]models.ClassListing, error)
	SetStatus(ctx context.Context, actor service.Actor, id string, status models.ClassStatus) (*models.UpdateResult, error)
	SetFeedback(ctx context.Context, actor service.Actor, id string, req dto.FeedbackRequest) (*models.UpdateResult, error)
}

// ClassHandler serves the class catalog.
type ClassHandler struct {
	service classService
	users   subjectAuthorizer
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(svc classService, users subjectAuthorizer) *ClassHandler {
	return &ClassHandler{service: svc, users: users}
}

// ListAll godoc
// @Summary Full catalog
// @Tags Classes
// @Produce json
// @Success 200 {array} models.ClassListing
// @Router /classes [get]
func (h *ClassHandler) ListAll(c *gin.Context) {
	classes, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// Get godoc
// @Summary Class detail
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} models.ClassListing
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// ListApproved godoc
// @Summary Storefront catalog
// @Description Listings in a status (approved by default), most enrolled first
// @Tags Classes
// @Produce json
// @Param status query string false "Status" Enums(pending, approved, denied)
// @Success 200 {array} models.ClassListing
// @Header 200 {boolean} X-Cache-Hit "Served from the catalog cache"
// @Router /approved-classes [get]
func (h *ClassHandler) ListApproved(c *gin.Context) {
	classes, hit, err := h.service.ListApproved(c.Request.Context(), models.ClassStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, classes, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create a class
// @Description Instructors submit listings for moderation
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateClassRequest true "Listing"
// @Success 201 {object} models.InsertResult
// @Router /class [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// MyClasses godoc
// @Summary Instructor's own listings
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param email query string false "Instructor email, defaults to the caller"
// @Success 200 {array} models.ClassListing
// @Router /my-classes [get]
func (h *ClassHandler) MyClasses(c *gin.Context) {
	email, ok := resolveSubject(c, h.users, c.Query("email"))
	if !ok {
		return
	}
	classes, err := h.service.ListByInstructor(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// SetStatus godoc
// @Summary Moderate a class
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param status query string true "Status" Enums(pending, approved, denied)
// @Success 200 {object} models.UpdateResult
// @Router /status/{id} [patch]
func (h *ClassHandler) SetStatus(c *gin.Context) {
	result, err := h.service.SetStatus(c.Request.Context(), actorFromContext(c), c.Param("id"), models.ClassStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// SetFeedback godoc
// @Summary Leave moderation feedback
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param payload body dto.FeedbackRequest true "Feedback"
// @Success 200 {object} models.UpdateResult
// @Router /feedback/{id} [put]
func (h *ClassHandler) SetFeedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.SetFeedback(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
