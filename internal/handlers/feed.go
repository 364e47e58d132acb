package handlers

import (
	"net/http"

	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetFeed returns the caller's home feed: their own posts plus posts from
// accepted followees
// GET /api/v1/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	page, pageSize := util.ParsePagination(c)

	result, err := h.feed.GetFeed(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		util.RespondInternalError(c, "Failed to load feed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFollowingFeed returns only followees' posts
// GET /api/v1/feed/following
func (h *Handlers) GetFollowingFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	page, pageSize := util.ParsePagination(c)

	result, err := h.feed.GetFollowingFeed(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		util.RespondInternalError(c, "Failed to load feed")
		return
	}

	c.JSON(http.StatusOK, result)
}
