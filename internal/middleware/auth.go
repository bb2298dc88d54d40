package middleware

import (
	"net/http"
	"strings"

	"votebox/internal/apperr"
	"votebox/internal/models"
	"votebox/internal/response"
	"votebox/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Context keys set by Authenticate and read by handlers.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Authenticate verifies the Bearer token on every request and stashes the
// caller's identity and role in the gin context. Routes under /api/v1/auth
// are registered outside this middleware and never see it.
func Authenticate(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, response.Error(http.StatusUnauthorized, "Unauthorized!"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logrus.WithError(err).Warn("rejected token")
			c.AbortWithStatusJSON(http.StatusOK, response.Error(http.StatusUnauthorized, "Invalid Token"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group on the role carried by the token.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != role {
			response.Fail(c, apperr.E(apperr.KindForbidden, "Unauthorized"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin is shorthand for the four admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// UserID returns the authenticated caller's id from the context.
func UserID(c *gin.Context) uint {
	v, _ := c.Get(UserIDKey)
	id, _ := v.(uint)
	return id
}
