package handlers

import (
	"errors"
	"net/http"

	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SharePost records the caller sharing a post, optionally with a quote. A
// user shares a given post at most once.
// POST /api/v1/posts/:id/share
func (h *Handlers) SharePost(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Quote string `json:"quote,omitempty" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	share := models.Share{
		UserID: userID,
		PostID: postID,
		Quote:  req.Quote,
	}
	if err := database.DB.Create(&share).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.RespondConflict(c, "share")
			return
		}
		util.RespondInternalError(c, "Failed to share post")
		return
	}

	if _, err := h.engagement.RecountShares(c.Request.Context(), postID); err != nil {
		logger.Log.Warn("Failed to recount shares", zap.String("post_id", postID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"share": share})
}

// UnsharePost removes the caller's share of a post
// DELETE /api/v1/posts/:id/share
func (h *Handlers) UnsharePost(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Share{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to remove share")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "share")
		return
	}

	if _, err := h.engagement.RecountShares(c.Request.Context(), postID); err != nil {
		logger.Log.Warn("Failed to recount shares", zap.String("post_id", postID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"unshared": true})
}
