// Package engagement owns the like edges and the cached engagement counters
// on posts and comments. The edge table is the source of truth; counters are
// recounted from it after every mutation rather than incremented, so a
// duplicate request or a partially failed earlier toggle can never leave a
// counter permanently wrong.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/crestapp/crest/backend/internal/errors"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/metrics"
	"github.com/crestapp/crest/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	recountAttempts = 3
	recountBackoff  = 50 * time.Millisecond
)

// ErrTargetNotFound is returned when the liked post or comment does not
// exist.
var ErrTargetNotFound = apperrors.NotFound("target")

// ToggleResult is the outcome of a like toggle.
type ToggleResult struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`

	// AuthorID of the target, for the caller's notification fan-out.
	AuthorID string `json:"-"`
}

// Service implements the like toggle and counter recounts.
type Service struct {
	db *gorm.DB
}

// NewService creates an engagement service on the given connection.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ToggleLike flips the like edge for (userID, targetID, targetKind) and
// returns the new edge state together with the freshly recounted like count.
// Concurrent duplicate calls are arbitrated by the unique index on the edge
// tuple: the insert either succeeds (toggle on) or reports a duplicate, in
// which case the existing edge is deleted (toggle off). A failed recount
// after a successful flip is retried and, if it keeps failing, surfaced:
// a stale persisted count is a correctness bug, not a cosmetic one.
func (s *Service) ToggleLike(ctx context.Context, userID, targetID string, kind models.TargetKind) (*ToggleResult, error) {
	if !kind.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown target kind %q", kind))
	}

	authorID, err := s.targetAuthor(ctx, targetID, kind)
	if err != nil {
		return nil, err
	}

	liked, err := s.flipEdge(ctx, userID, targetID, kind)
	if err != nil {
		return nil, err
	}

	count, err := s.recountLikes(ctx, targetID, kind)
	if err != nil {
		return nil, err
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	metrics.Get().LikeTogglesTotal.WithLabelValues(string(kind), state).Inc()

	return &ToggleResult{IsLiked: liked, LikesCount: count, AuthorID: authorID}, nil
}

// flipEdge inserts the edge, falling back to delete when the unique index
// reports the edge already exists. If the delete then finds nothing (a
// concurrent toggle removed it first), the insert is retried once so the
// call settles on a definite state instead of a no-op.
func (s *Service) flipEdge(ctx context.Context, userID, targetID string, kind models.TargetKind) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.db.WithContext(ctx).Create(&models.Like{
			UserID:     userID,
			TargetID:   targetID,
			TargetKind: kind,
		}).Error
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, fmt.Errorf("create like edge: %w", err)
		}

		res := s.db.WithContext(ctx).
			Where("user_id = ? AND target_id = ? AND target_kind = ?", userID, targetID, kind).
			Delete(&models.Like{})
		if res.Error != nil {
			return false, fmt.Errorf("delete like edge: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return false, nil
		}

		logger.Log.Debug("like edge vanished mid-toggle, retrying insert",
			zap.String("user_id", userID),
			zap.String("target_id", targetID),
		)
	}
	return false, apperrors.Conflict("like")
}

// recountLikes counts live edges for the target and overwrites the cached
// counter. Retried because giving up after a successful edge flip would
// persist a stale count.
func (s *Service) recountLikes(ctx context.Context, targetID string, kind models.TargetKind) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < recountAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(recountBackoff):
			case <-ctx.Done():
				return 0, fmt.Errorf("recount likes: %w", ctx.Err())
			}
		}

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Like{}).
			Where("target_id = ? AND target_kind = ?", targetID, kind).
			Count(&count).Error; err != nil {
			lastErr = err
			continue
		}

		if err := s.persistLikesCount(ctx, targetID, kind, count); err != nil {
			lastErr = err
			continue
		}
		return count, nil
	}

	logger.Log.Error("like recount failed after retries",
		zap.String("target_id", targetID),
		zap.String("target_kind", string(kind)),
		zap.Error(lastErr),
	)
	return 0, fmt.Errorf("recount likes for %s %s: %w", kind, targetID, lastErr)
}

func (s *Service) persistLikesCount(ctx context.Context, targetID string, kind models.TargetKind, count int64) error {
	switch kind {
	case models.TargetPost:
		return s.db.WithContext(ctx).Model(&models.Post{}).
			Where("id = ?", targetID).
			UpdateColumn("likes_count", count).Error
	case models.TargetComment:
		return s.db.WithContext(ctx).Model(&models.Comment{}).
			Where("id = ?", targetID).
			UpdateColumn("likes_count", count).Error
	}
	return fmt.Errorf("unknown target kind %q", kind)
}

func (s *Service) targetAuthor(ctx context.Context, targetID string, kind models.TargetKind) (string, error) {
	var authorID string
	var err error
	switch kind {
	case models.TargetPost:
		var post models.Post
		err = s.db.WithContext(ctx).Select("id", "user_id").First(&post, "id = ?", targetID).Error
		authorID = post.UserID
	case models.TargetComment:
		var comment models.Comment
		err = s.db.WithContext(ctx).Select("id", "user_id").First(&comment, "id = ?", targetID).Error
		authorID = comment.UserID
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTargetNotFound
		}
		return "", fmt.Errorf("load target: %w", err)
	}
	return authorID, nil
}

// IsLiked reports whether the user currently likes the target.
func (s *Service) IsLiked(ctx context.Context, userID, targetID string, kind models.TargetKind) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target_id = ? AND target_kind = ?", userID, targetID, kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecountComments overwrites the post's cached comment count from the live
// comment rows. Called eagerly after comment creation and deletion.
func (s *Service) RecountComments(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("recount comments: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comments_count", count).Error; err != nil {
		return 0, fmt.Errorf("persist comment count: %w", err)
	}
	return count, nil
}

// RecountShares overwrites the post's cached share count from the live share
// rows. Called eagerly after share creation and removal.
func (s *Service) RecountShares(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Share{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("recount shares: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("shares_count", count).Error; err != nil {
		return 0, fmt.Errorf("persist share count: %w", err)
	}
	return count, nil
}

// IncrementViews bumps the post's view counter. Views have no backing edge
// table, so an atomic increment is the authoritative operation here.
func (s *Service) IncrementViews(ctx context.Context, postID string) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTargetNotFound
	}
	return nil
}
