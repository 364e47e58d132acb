package middleware

import (
	"strings"

	"github.com/crestapp/crest/backend/internal/auth"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token on protected routes and stores
// the authenticated user in the request context under "user_id" and "user".
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.RespondUnauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			util.RespondUnauthorized(c, "Authorization header must be a Bearer token")
			c.Abort()
			return
		}

		user, err := authService.ValidateToken(token)
		if err != nil {
			util.RespondUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
