package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/models"
	"github.com/noah-isme/language-lab-api/internal/service"
)

// AuditRecorder stores audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event service.AuditEvent)
}

// AuditDenied records mutating requests rejected by the access gates.
func AuditDenied(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			return
		}
		status := c.Writer.Status()
		if status != http.StatusUnauthorized && status != http.StatusForbidden {
			return
		}

		event := service.AuditEvent{
			Action:    models.AuditActionAccessDenied,
			Resource:  c.FullPath(),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			Detail: map[string]interface{}{
				"method": c.Request.Method,
				"status": status,
			},
		}
		if claims, ok := CurrentClaims(c); ok {
			event.ActorEmail = claims.Email
		}
		recorder.Record(c.Request.Context(), event)
	}
}
