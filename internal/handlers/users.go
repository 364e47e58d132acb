package handlers

import (
	"net/http"

	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetUser returns a user's public profile
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	var user models.User
	if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	var follow models.Follow
	followStatus := ""
	err := database.DB.
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		First(&follow).Error
	if err == nil {
		followStatus = string(follow.Status)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"follow_status": followStatus,
	})
}

// UpdateProfile updates the caller's own profile
// PATCH /api/v1/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName *string `json:"display_name,omitempty" binding:"omitempty,min=1,max=50"`
		Bio         *string `json:"bio,omitempty" binding:"omitempty,max=500"`
		AvatarURL   *string `json:"avatar_url,omitempty"`
		IsPrivate   *bool   `json:"is_private,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "No fields to update")
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "Failed to update profile")
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		util.RespondInternalError(c, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserPosts lists a user's public posts, newest first
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	page, pageSize := util.ParsePagination(c)

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	query := database.DB.
		Preload("User").
		Where("user_id = ?", targetID).
		Order("created_at DESC")
	// Non-owners only see public posts.
	if targetID != userID {
		query = query.Where("is_public = ?", true)
	}

	var posts []models.Post
	err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize + 1).
		Find(&posts).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load posts")
		return
	}

	hasMore := false
	if len(posts) > pageSize {
		hasMore = true
		posts = posts[:pageSize]
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":     posts,
		"page":      page,
		"page_size": pageSize,
		"has_more":  hasMore,
	})
}
