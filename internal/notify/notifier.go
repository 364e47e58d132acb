// Package notify fans engagement events out to notification rows and live
// push channels. Dispatch runs after the triggering write has committed and
// never blocks or fails the request that produced the event: every
// per-recipient error is logged and swallowed.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/metrics"
	"github.com/crestapp/crest/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventType identifies what happened upstream.
type EventType string

const (
	EventNewPost     EventType = "new_post"
	EventNewFollow   EventType = "new_follow"
	EventNewComment  EventType = "new_comment"
	EventLikeToggled EventType = "like_toggled"
)

// Event is one engagement occurrence to fan out. Fields beyond ActorID are
// set per type: PostID for posts/comments/likes, CommentID for comments and
// comment likes, TargetUserID for follows and like recipients.
type Event struct {
	Type         EventType
	ActorID      string
	TargetUserID string
	PostID       string
	CommentID    string
	TargetKind   models.TargetKind
	IsLiked      bool
}

// Pusher delivers a persisted notification to a live channel. Delivery is
// best-effort; the notification row is the source of truth.
type Pusher interface {
	Push(userID string, notification *models.Notification) error
}

// Notifier resolves recipients for events and writes their notifications.
type Notifier struct {
	db     *gorm.DB
	pusher Pusher // nil when no live channel is configured
}

// NewNotifier creates a notifier. pusher may be nil.
func NewNotifier(db *gorm.DB, pusher Pusher) *Notifier {
	return &Notifier{db: db, pusher: pusher}
}

// deliverTimeout bounds one event's whole fan-out, not one recipient.
const deliverTimeout = 30 * time.Second

// Dispatch fans an event out on its own goroutine and returns immediately.
// Callers invoke it only after the triggering write has committed.
func (n *Notifier) Dispatch(event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		n.deliver(ctx, event)
	}()
}

// DeliverSync runs the fan-out inline. It exists for the CLI and tests;
// request paths use Dispatch.
func (n *Notifier) DeliverSync(ctx context.Context, event Event) {
	n.deliver(ctx, event)
}

func (n *Notifier) deliver(ctx context.Context, event Event) {
	metrics.Get().FanoutEventsTotal.WithLabelValues(string(event.Type)).Inc()

	recipients, err := n.resolveRecipients(ctx, event)
	if err != nil {
		logger.Log.Error("Failed to resolve notification recipients",
			zap.String("event_type", string(event.Type)),
			zap.String("actor_id", event.ActorID),
			zap.Error(err),
		)
		return
	}

	var actor models.User
	if err := n.db.WithContext(ctx).First(&actor, "id = ?", event.ActorID).Error; err != nil {
		logger.Log.Error("Failed to load actor for notification",
			zap.String("actor_id", event.ActorID),
			zap.Error(err),
		)
		return
	}

	for _, recipientID := range recipients {
		n.notifyOne(ctx, event, &actor, recipientID)
	}
}

// notifyOne persists and pushes a single recipient's notification. A failure
// here affects no other recipient.
func (n *Notifier) notifyOne(ctx context.Context, event Event, actor *models.User, recipientID string) {
	notification := n.build(event, actor, recipientID)

	if err := n.db.WithContext(ctx).Create(notification).Error; err != nil {
		metrics.Get().FanoutRecipientErrors.Inc()
		logger.Log.Error("Failed to persist notification",
			zap.String("event_type", string(event.Type)),
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
		return
	}

	if n.pusher == nil {
		return
	}
	if err := n.pusher.Push(recipientID, notification); err != nil {
		metrics.Get().FanoutRecipientErrors.Inc()
		logger.Log.Warn("Failed to push notification",
			zap.String("notification_id", notification.ID),
			zap.String("recipient_id", recipientID),
			zap.Error(err),
		)
	}
}

// resolveRecipients maps an event to the users who should hear about it.
// Actors never notify themselves.
func (n *Notifier) resolveRecipients(ctx context.Context, event Event) ([]string, error) {
	switch event.Type {
	case EventNewPost:
		var followerIDs []string
		err := n.db.WithContext(ctx).
			Model(&models.Follow{}).
			Where("following_id = ? AND status = ?", event.ActorID, models.FollowStatusAccepted).
			Pluck("follower_id", &followerIDs).Error
		return followerIDs, err

	case EventNewFollow, EventNewComment:
		if event.TargetUserID == "" || event.TargetUserID == event.ActorID {
			return nil, nil
		}
		return []string{event.TargetUserID}, nil

	case EventLikeToggled:
		// Only the like transition notifies; an unlike is silent.
		if !event.IsLiked {
			return nil, nil
		}
		if event.TargetUserID == "" || event.TargetUserID == event.ActorID {
			return nil, nil
		}
		return []string{event.TargetUserID}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}
}

func (n *Notifier) build(event Event, actor *models.User, recipientID string) *models.Notification {
	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    actor.ID,
		CreatedAt:   time.Now().UTC(),
	}

	name := actor.DisplayName
	if name == "" {
		name = actor.Username
	}

	switch event.Type {
	case EventNewPost:
		notification.Type = models.NotificationNewPost
		notification.PostID = &event.PostID
		notification.Title = "New post"
		notification.Message = fmt.Sprintf("%s published a new post", name)

	case EventNewFollow:
		notification.Type = models.NotificationNewFollow
		notification.Title = "New follower"
		notification.Message = fmt.Sprintf("%s started following you", name)

	case EventNewComment:
		notification.Type = models.NotificationNewComment
		notification.PostID = &event.PostID
		notification.CommentID = &event.CommentID
		notification.Title = "New comment"
		notification.Message = fmt.Sprintf("%s commented on your post", name)

	case EventLikeToggled:
		notification.Type = models.NotificationLike
		notification.Title = "New like"
		if event.TargetKind == models.TargetComment {
			notification.CommentID = &event.CommentID
			notification.Message = fmt.Sprintf("%s liked your comment", name)
		} else {
			notification.PostID = &event.PostID
			notification.Message = fmt.Sprintf("%s liked your post", name)
		}
	}

	return notification
}
