package handlers

import (
	"net/http"

	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/realtime"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateComment creates a new comment on a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Content  string  `json:"content" binding:"required,min=1,max=2000"`
		ParentID *string `json:"parent_id,omitempty"`
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

	// Replies nest one level deep; a reply to a reply attaches to the root.
	if req.ParentID != nil && *req.ParentID != "" {
		var parent models.Comment
		if err := database.DB.First(&parent, "id = ? AND post_id = ?", *req.ParentID, postID).Error; err != nil {
			util.RespondValidationError(c, "parent_id", "Parent comment not found")
			return
		}
		if parent.ParentID != nil {
			req.ParentID = parent.ParentID
		}
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  req.Content,
		ParentID: req.ParentID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, "Failed to create comment")
		return
	}

	count, err := h.engagement.RecountComments(c.Request.Context(), postID)
	if err != nil {
		logger.Log.Warn("Failed to recount comments", zap.String("post_id", postID), zap.Error(err))
	}

	h.notifier.Dispatch(notify.Event{
		Type:         notify.EventNewComment,
		ActorID:      userID,
		TargetUserID: post.UserID,
		PostID:       postID,
		CommentID:    comment.ID,
	})

	if h.wsHandler != nil && err == nil {
		h.wsHandler.BroadcastCountUpdate(
			realtime.MessageTypeCommentCountUpdate,
			postID, string(models.TargetPost), count,
		)
	}

	if err := database.DB.Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload comment with user", zap.String("comment_id", comment.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetComments lists a post's comments, oldest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetComments(c *gin.Context) {
	postID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	page, pageSize := util.ParsePagination(c)

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var comments []models.Comment
	err := database.DB.
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize + 1).
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load comments")
		return
	}

	hasMore := false
	if len(comments) > pageSize {
		hasMore = true
		comments = comments[:pageSize]
	}

	liked := make(map[string]bool, len(comments))
	if len(comments) > 0 {
		commentIDs := make([]string, 0, len(comments))
		for _, comment := range comments {
			commentIDs = append(commentIDs, comment.ID)
		}
		var likedIDs []string
		err := database.DB.Model(&models.Like{}).
			Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, models.TargetComment, commentIDs).
			Pluck("target_id", &likedIDs).Error
		if err == nil {
			for _, id := range likedIDs {
				liked[id] = true
			}
		}
	}

	type commentWithLike struct {
		models.Comment
		IsLiked bool `json:"is_liked"`
	}
	result := make([]commentWithLike, 0, len(comments))
	for _, comment := range comments {
		result = append(result, commentWithLike{
			Comment: comment,
			IsLiked: liked[comment.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":  result,
		"page":      page,
		"page_size": pageSize,
		"has_more":  hasMore,
	})
}

// DeleteComment removes the caller's own comment
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	commentID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", commentID).Error; err != nil {
		util.RespondNotFound(c, "comment")
		return
	}
	if comment.UserID != userID {
		util.RespondForbidden(c, "You can only delete your own comments")
		return
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		util.RespondInternalError(c, "Failed to delete comment")
		return
	}

	if _, err := h.engagement.RecountComments(c.Request.Context(), comment.PostID); err != nil {
		logger.Log.Warn("Failed to recount comments", zap.String("post_id", comment.PostID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
