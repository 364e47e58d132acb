package handlers

import (
	"errors"
	"net/http"

	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/engagement"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePost publishes a new post
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Body     string `json:"body" binding:"required,min=1,max=5000"`
		MediaURL string `json:"media_url,omitempty"`
		IsPublic *bool  `json:"is_public,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	post := models.Post{
		UserID:   userID,
		Body:     req.Body,
		MediaURL: req.MediaURL,
		IsPublic: true,
	}
	if req.IsPublic != nil {
		post.IsPublic = *req.IsPublic
	}

	if err := database.DB.Create(&post).Error; err != nil {
		util.RespondInternalError(c, "Failed to create post")
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error; err != nil {
		logger.Log.Warn("Failed to increment post count", zap.String("user_id", userID), zap.Error(err))
	}

	h.feed.InvalidateForNewPost(c.Request.Context(), userID)

	if post.IsPublic {
		h.notifier.Dispatch(notify.Event{
			Type:    notify.EventNewPost,
			ActorID: userID,
			PostID:  post.ID,
		})
	}

	if err := database.DB.Preload("User").First(&post, "id = ?", post.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload post with user", zap.String("post_id", post.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// GetPost returns a single post with the viewer's like state
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.Preload("User").First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	isLiked, err := h.engagement.IsLiked(c.Request.Context(), userID, postID, models.TargetPost)
	if err != nil {
		isLiked = false
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"is_liked": isLiked,
	})
}

// DeletePost removes the caller's own post
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}
	if post.UserID != userID {
		util.RespondForbidden(c, "You can only delete your own posts")
		return
	}

	if err := database.DB.Delete(&post).Error; err != nil {
		util.RespondInternalError(c, "Failed to delete post")
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ? AND post_count > 0", userID).
		UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error; err != nil {
		logger.Log.Warn("Failed to decrement post count", zap.String("user_id", userID), zap.Error(err))
	}

	h.feed.InvalidateForNewPost(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RecordView increments a post's view counter
// POST /api/v1/posts/:id/view
func (h *Handlers) RecordView(c *gin.Context) {
	if _, ok := util.GetUserIDFromContext(c); !ok {
		return
	}
	postID := c.Param("id")

	if err := h.engagement.IncrementViews(c.Request.Context(), postID); err != nil {
		if errors.Is(err, engagement.ErrTargetNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "Failed to record view")
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true})
}
