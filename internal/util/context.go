package util

import (
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// GetUserIDFromContext returns the authenticated user ID set by the auth
// middleware. On failure it writes a 401 response and returns ok=false, so
// handlers can bail out with a bare return.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}

// GetUserFromContext returns the full authenticated user, if the middleware
// loaded one.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		RespondUnauthorized(c)
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok {
		RespondUnauthorized(c)
		return nil, false
	}
	return user, true
}
