package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/middleware"
	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		actor.Email = claims.Email
	}
	return actor
}
