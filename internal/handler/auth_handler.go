package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/response"
)

type authService interface {
	IssueToken(req models.TokenRequest) (*models.TokenResponse, error)
	Revoke(ctx context.Context, actor service.Actor, claims *models.JWTClaims) error
}

// AuthHandler issues and revokes access tokens.
type AuthHandler struct {
	service authService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// IssueToken godoc
// @Summary Issue access token
// @Description Signs the caller's identity claims into a short-lived bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.TokenRequest true "Identity claims"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /jwt [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	token, err := h.service.IssueToken(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token)
}

// Logout godoc
// @Summary Revoke the current token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Revoke(c.Request.Context(), actorFromContext(c), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "logged out")
}
