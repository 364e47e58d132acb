package handlers

import (
	"errors"
	"net/http"

	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowUser creates a follow edge toward another user. Following a private
// account creates a pending request instead of an accepted edge.
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	followingID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if followingID == userID {
		util.RespondBadRequest(c, "You cannot follow yourself")
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", followingID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	status := models.FollowStatusAccepted
	if target.IsPrivate {
		status = models.FollowStatusPending
	}

	follow := models.Follow{
		FollowerID:  userID,
		FollowingID: followingID,
		Status:      status,
	}
	if err := database.DB.Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.RespondConflict(c, "follow")
			return
		}
		util.RespondInternalError(c, "Failed to follow user")
		return
	}

	if status == models.FollowStatusAccepted {
		h.applyFollowCounters(userID, followingID, 1)
		h.feed.InvalidateForFollowChange(c.Request.Context(), userID)

		// Pending requests stay silent; a private followee sees them in the
		// request list, not as a follow notification.
		h.notifier.Dispatch(notify.Event{
			Type:         notify.EventNewFollow,
			ActorID:      userID,
			TargetUserID: followingID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"follow": follow,
		"status": string(status),
	})
}

// UnfollowUser removes a follow edge or a pending request
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	followingID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var follow models.Follow
	err := database.DB.
		Where("follower_id = ? AND following_id = ?", userID, followingID).
		First(&follow).Error
	if err != nil {
		util.RespondNotFound(c, "follow")
		return
	}

	if err := database.DB.Delete(&follow).Error; err != nil {
		util.RespondInternalError(c, "Failed to unfollow user")
		return
	}

	if follow.Status == models.FollowStatusAccepted {
		h.applyFollowCounters(userID, followingID, -1)
		h.feed.InvalidateForFollowChange(c.Request.Context(), userID)
	}

	c.JSON(http.StatusOK, gin.H{"unfollowed": true})
}

// ApproveFollowRequest accepts a pending request on the caller's account
// POST /api/v1/follows/requests/:id/approve
func (h *Handlers) ApproveFollowRequest(c *gin.Context) {
	requesterID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var follow models.Follow
	err := database.DB.
		Where("follower_id = ? AND following_id = ? AND status = ?", requesterID, userID, models.FollowStatusPending).
		First(&follow).Error
	if err != nil {
		util.RespondNotFound(c, "follow request")
		return
	}

	if err := database.DB.Model(&follow).Update("status", models.FollowStatusAccepted).Error; err != nil {
		util.RespondInternalError(c, "Failed to approve follow request")
		return
	}

	h.applyFollowCounters(requesterID, userID, 1)
	// The requester can now see the approver's posts.
	h.feed.InvalidateForFollowChange(c.Request.Context(), requesterID)

	c.JSON(http.StatusOK, gin.H{"approved": true})
}

// RejectFollowRequest declines a pending request on the caller's account
// POST /api/v1/follows/requests/:id/reject
func (h *Handlers) RejectFollowRequest(c *gin.Context) {
	requesterID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.
		Where("follower_id = ? AND following_id = ? AND status = ?", requesterID, userID, models.FollowStatusPending).
		Delete(&models.Follow{})
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to reject follow request")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "follow request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

// GetFollowRequests lists pending requests toward the caller
// GET /api/v1/follows/requests
func (h *Handlers) GetFollowRequests(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var requests []models.Follow
	err := database.DB.
		Preload("Follower").
		Where("following_id = ? AND status = ?", userID, models.FollowStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load follow requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// applyFollowCounters adjusts both users' denormalized follow counts when an
// accepted edge appears or disappears.
func (h *Handlers) applyFollowCounters(followerID, followingID string, delta int) {
	op := "+ 1"
	guard := ""
	if delta < 0 {
		op = "- 1"
		guard = " AND following_count > 0"
	}

	err := database.DB.Model(&models.User{}).
		Where("id = ?"+guard, followerID).
		UpdateColumn("following_count", gorm.Expr("following_count "+op)).Error
	if err != nil {
		logger.Log.Warn("Failed to update following count", zap.String("user_id", followerID), zap.Error(err))
	}

	guard = ""
	if delta < 0 {
		guard = " AND follower_count > 0"
	}
	err = database.DB.Model(&models.User{}).
		Where("id = ?"+guard, followingID).
		UpdateColumn("follower_count", gorm.Expr("follower_count "+op)).Error
	if err != nil {
		logger.Log.Warn("Failed to update follower count", zap.String("user_id", followingID), zap.Error(err))
	}
}
