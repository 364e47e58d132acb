// Package feed assembles the home timelines and caches assembled pages.
//
// The feed is computed directly from follow edges and posts on every miss:
// there is no fan-out-on-write or precomputed timeline store. Cached pages
// are whole serialized responses, invalidated by user whenever the set of
// posts visible to that user can change.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/metrics"
	"github.com/crestapp/crest/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feed variants. Both show recent posts by accepted followees; the full
// variant also includes the viewer's own posts.
const (
	VariantFull      = "full"
	VariantFollowing = "following"
)

// FeedPost is one post as it appears in a feed page, annotated with
// viewer-specific state.
type FeedPost struct {
	models.Post
	IsLiked bool `json:"is_liked"`
}

// Page is one page of a feed. HasMore is a look-ahead probe: the query
// fetches one row beyond the page size and reports whether it existed.
type Page struct {
	Posts    []FeedPost `json:"posts"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	HasMore  bool       `json:"has_more"`
}

// Service computes feed pages and orchestrates the cache around them.
type Service struct {
	db    *gorm.DB
	cache Cache // nil when caching is disabled
	ttl   time.Duration
}

// NewService creates a feed service. cache may be nil, in which case every
// request computes the page directly.
func NewService(db *gorm.DB, cache Cache, ttl time.Duration) *Service {
	return &Service{db: db, cache: cache, ttl: ttl}
}

// GetFeed returns the viewer's full home feed: their own public posts plus
// public posts by users they follow with an accepted edge.
func (s *Service) GetFeed(ctx context.Context, userID string, page, pageSize int) (*Page, error) {
	return s.assemble(ctx, VariantFull, userID, page, pageSize)
}

// GetFollowingFeed returns only followees' posts, excluding the viewer's own.
func (s *Service) GetFollowingFeed(ctx context.Context, userID string, page, pageSize int) (*Page, error) {
	return s.assemble(ctx, VariantFollowing, userID, page, pageSize)
}

func (s *Service) assemble(ctx context.Context, variant, userID string, page, pageSize int) (*Page, error) {
	key := Key(variant, userID, page, pageSize)

	if s.cache != nil {
		payload, found, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Log.Warn("Feed cache read failed, computing directly",
				zap.String("key", key),
				zap.Error(err),
			)
		} else if found {
			var cached Page
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				metrics.RecordCacheHit("feed")
				return &cached, nil
			}
			logger.Log.Warn("Discarding unparseable feed cache entry", zap.String("key", key))
		}
		metrics.RecordCacheMiss("feed")
	}

	result, err := s.compute(ctx, variant, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
				logger.Log.Warn("Feed cache write failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}

	return result, nil
}

func (s *Service) compute(ctx context.Context, variant, userID string, page, pageSize int) (*Page, error) {
	authorIDs, err := s.authorSet(ctx, variant, userID)
	if err != nil {
		return nil, err
	}

	result := &Page{
		Posts:    []FeedPost{},
		Page:     page,
		PageSize: pageSize,
	}
	if len(authorIDs) == 0 {
		return result, nil
	}

	offset := (page - 1) * pageSize

	var posts []models.Post
	err = s.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ? AND is_public = ?", authorIDs, true).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize + 1). // one extra row to probe for another page
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	if len(posts) > pageSize {
		result.HasMore = true
		posts = posts[:pageSize]
	}

	liked, err := s.likedSet(ctx, userID, posts)
	if err != nil {
		return nil, err
	}

	for _, post := range posts {
		result.Posts = append(result.Posts, FeedPost{
			Post:    post,
			IsLiked: liked[post.ID],
		})
	}

	return result, nil
}

// authorSet resolves whose posts the viewer sees: accepted followees, plus
// the viewer themselves for the full variant.
func (s *Service) authorSet(ctx context.Context, variant, userID string) ([]string, error) {
	var authorIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Pluck("following_id", &authorIDs).Error
	if err != nil {
		return nil, err
	}

	if variant == VariantFull {
		authorIDs = append(authorIDs, userID)
	}
	return authorIDs, nil
}

// likedSet batches the viewer's like state for a page of posts into one query.
func (s *Service) likedSet(ctx context.Context, userID string, posts []models.Post) (map[string]bool, error) {
	liked := make(map[string]bool, len(posts))
	if len(posts) == 0 {
		return liked, nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
	}

	var likedIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, models.TargetPost, postIDs).
		Pluck("target_id", &likedIDs).Error
	if err != nil {
		return nil, err
	}

	for _, id := range likedIDs {
		liked[id] = true
	}
	return liked, nil
}

// InvalidateForNewPost drops cached feeds that could include a new or deleted
// post by authorID: the author's own pages and those of accepted followers.
// Invalidation is best-effort; stale pages age out with the TTL anyway.
func (s *Service) InvalidateForNewPost(ctx context.Context, authorID string) {
	if s.cache == nil {
		return
	}

	s.invalidateUser(ctx, authorID)

	var followerIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", authorID, models.FollowStatusAccepted).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		logger.Log.Warn("Failed to load followers for feed invalidation",
			zap.String("author_id", authorID),
			zap.Error(err),
		)
		return
	}

	for _, followerID := range followerIDs {
		s.invalidateUser(ctx, followerID)
	}
}

// InvalidateForFollowChange drops the cached feeds of the user whose follow
// set changed. Only the follower's visible set is affected by the edge.
func (s *Service) InvalidateForFollowChange(ctx context.Context, followerID string) {
	if s.cache == nil {
		return
	}
	s.invalidateUser(ctx, followerID)
}

func (s *Service) invalidateUser(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		logger.Log.Warn("Feed cache invalidation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
