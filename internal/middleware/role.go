package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/language-lab-api/internal/models"
	appErrors "github.com/noah-isme/language-lab-api/pkg/errors"
	"github.com/noah-isme/language-lab-api/pkg/response"
)

// RoleLookup resolves the stored role for an email.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (models.UserRole, bool, error)
}

// RequireRole loads the authenticated caller from the identity store and admits them only
// when their stored role is one of roles. It must run after Authenticate.
func RequireRole(store RoleLookup, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		role, found, err := store.RoleOf(c.Request.Context(), claims.Email)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !found {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "unknown user"))
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// RequireAdmin admits admins.
func RequireAdmin(store RoleLookup) gin.HandlerFunc {
	return RequireRole(store, models.RoleAdmin)
}

// RequireInstructor admits instructors.
func RequireInstructor(store RoleLookup) gin.HandlerFunc {
	return RequireRole(store, models.RoleInstructor)
}

// RequireStudent admits students, including users whose role was never set.
func RequireStudent(store RoleLookup) gin.HandlerFunc {
	return RequireRole(store, models.RoleStudent, models.RoleUnset)
}
