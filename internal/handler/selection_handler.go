package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/response"
)

type selectionService interface {
	Select(ctx context.Context, actor service.Actor, req dto.SelectClassRequest) (*models.InsertResult, error)
	ListForStudent(ctx context.Context, email string) ([]models.SelectionEntry, error)
	Remove(ctx context.Context, actor service.Actor, id string) (*models.DeleteResult, error)
}

// SelectionHandler serves the student cart.
type SelectionHandler struct {
	service selectionService
	users   subjectAuthorizer
}

// NewSelectionHandler constructs a SelectionHandler.
func NewSelectionHandler(svc selectionService, users subjectAuthorizer) *SelectionHandler {
	return &SelectionHandler{service: svc, users: users}
}

// Select godoc
// @Summary Add a class to the cart
// @Tags Selections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SelectClassRequest true "Class"
// @Success 201 {object} models.InsertResult
// @Router /select-class [post]
func (h *SelectionHandler) Select(c *gin.Context) {
	var req dto.SelectClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.Select(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List cart entries
// @Tags Selections
// @Produce json
// @Security BearerAuth
// @Param email query string false "Student email, defaults to the caller"
// @Success 200 {array} models.SelectionEntry
// @Router /selected-classes [get]
func (h *SelectionHandler) List(c *gin.Context) {
	email, ok := resolveSubject(c, h.users, c.Query("email"))
	if !ok {
		return
	}
	entries, err := h.service.ListForStudent(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Remove godoc
// @Summary Remove a cart entry
// @Tags Selections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Selection ID"
// @Success 200 {object} models.DeleteResult
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /delete-class/{id} [delete]
func (h *SelectionHandler) Remove(c *gin.Context) {
	result, err := h.service.Remove(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
