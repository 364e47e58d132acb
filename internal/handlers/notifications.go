package handlers

import (
	"net/http"

	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	page, pageSize := util.ParsePagination(c)

	var notifications []models.Notification
	err := database.DB.
		Preload("Sender").
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize + 1).
		Find(&notifications).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to load notifications")
		return
	}

	hasMore := false
	if len(notifications) > pageSize {
		hasMore = true
		notifications = notifications[:pageSize]
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"page":          page,
		"page_size":     pageSize,
		"has_more":      hasMore,
	})
}

// GetNotificationCounts returns total and unread counts
// GET /api/v1/notifications/counts
func (h *Handlers) GetNotificationCounts(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var total, unread int64
	if err := database.DB.Model(&models.Notification{}).
		Where("recipient_id = ?", userID).
		Count(&total).Error; err != nil {
		util.RespondInternalError(c, "Failed to count notifications")
		return
	}
	if err := database.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		util.RespondInternalError(c, "Failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"unread": unread,
	})
}

// MarkNotificationRead marks one notification as read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	notificationID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to mark notification read")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead marks every unread notification as read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		util.RespondInternalError(c, "Failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": result.RowsAffected})
}
