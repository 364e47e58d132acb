package handlers

import (
	"net/http"
	"strconv"

	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
)

const defaultTrendingLimit = 20

// GetTrending returns the top-scored recent public posts
// GET /api/v1/trending
func (h *Handlers) GetTrending(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}

	limit := defaultTrendingLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	posts, err := h.trending.Trending(c.Request.Context(), limit)
	if err != nil {
		util.RespondInternalError(c, "Failed to load trending posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
