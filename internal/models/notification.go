package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationNewPost    NotificationType = "new_post"
	NotificationNewFollow  NotificationType = "new_follow"
	NotificationNewComment NotificationType = "new_comment"
	NotificationLike       NotificationType = "like"
)

// Notification is one fan-out record for one recipient. It is persisted
// before any realtime push is attempted and outlives the entity that
// triggered it: deleting a post does not delete the notifications it caused.
type Notification struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	RecipientID string `gorm:"not null;index:idx_notifications_recipient_created,priority:1" json:"recipient_id"`
	SenderID    string `gorm:"not null" json:"sender_id"`
	Sender      User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Type NotificationType `gorm:"not null" json:"type"`

	// Subject references; nullable because not every type has both.
	PostID    *string `gorm:"type:uuid" json:"post_id,omitempty"`
	CommentID *string `gorm:"type:uuid" json:"comment_id,omitempty"`

	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	IsRead bool `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
