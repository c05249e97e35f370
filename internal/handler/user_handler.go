package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/dto"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/response"
)

type userService interface {
	RegisterIfAbsent(ctx context.Context, req dto.RegisterUserRequest) (*models.InsertResult, error)
	GetRole(ctx context.Context, email string) (*dto.RoleResponse, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	PromoteRole(ctx context.Context, actor service.Actor, id string, role models.UserRole) (*models.UpdateResult, error)
	AuthorizeSubject(ctx context.Context, caller, subject string) (string, error)
}

// UserHandler serves the identity store.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Register godoc
// @Summary Register user
// @Description Stores the user unless the email is already known
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body dto.RegisterUserRequest true "Profile"
// @Success 201 {object} models.InsertResult
// @Success 200 {object} response.Envelope "user already exists"
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.service.RegisterIfAbsent(c.Request.Context(), req)
	if errors.Is(err, appErrors.ErrAlreadyExists) {
		response.Message(c, http.StatusOK, appErrors.ErrAlreadyExists.Message)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CheckRole godoc
// @Summary Look up a user's role
// @Tags Users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} dto.RoleResponse
// @Router /users/check-role/{email} [get]
func (h *UserHandler) CheckRole(c *gin.Context) {
	role, err := h.service.GetRole(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, role)
}

// Instructors godoc
// @Summary Instructor directory
// @Description Lists users holding the instructor role
// @Tags Users
// @Produce json
// @Success 200 {array} models.User
// @Router /all-instructor [get]
func (h *UserHandler) Instructors(c *gin.Context) {
	users, err := h.service.ListByRole(c.Request.Context(), models.RoleInstructor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// Get godoc
// @Summary Get a user profile
// @Description Callers may read their own profile; admins may read any
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {object} models.User
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{email} [get]
func (h *UserHandler) Get(c *gin.Context) {
	email, ok := resolveSubject(c, h.service, c.Param("email"))
	if !ok {
		return
	}
	user, err := h.service.GetByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// MakeAdmin godoc
// @Summary Promote a user to admin
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.UpdateResult
// @Router /users/admin/{id} [patch]
func (h *UserHandler) MakeAdmin(c *gin.Context) {
	h.promote(c, models.RoleAdmin)
}

// MakeInstructor godoc
// @Summary Promote a user to instructor
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.UpdateResult
// @Router /users/instructor/{id} [patch]
func (h *UserHandler) MakeInstructor(c *gin.Context) {
	h.promote(c, models.RoleInstructor)
}

func (h *UserHandler) promote(c *gin.Context, role models.UserRole) {
	result, err := h.service.PromoteRole(c.Request.Context(), actorFromContext(c), c.Param("id"), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

type subjectAuthorizer interface {
	AuthorizeSubject(ctx context.Context, caller, subject string) (string, error)
}

// resolveSubject maps an email parameter to the records the caller may read. On refusal it
// writes the error response and reports false.
func resolveSubject(c *gin.Context, authz subjectAuthorizer, requested string) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	email, err := authz.AuthorizeSubject(c.Request.Context(), claims.Email, requested)
	if err != nil {
		response.Error(c, err)
		return "", false
	}
	return email, true
}
