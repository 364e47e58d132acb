// Package trending ranks posts by a weighted engagement score with linear
// time decay. Scoring is pure: it reads counters off candidate posts and
// never touches storage, so the same inputs always produce the same order.
package trending

import (
	"context"
	"sort"
	"time"

	"github.com/crestapp/crest/backend/internal/models"
	"gorm.io/gorm"
)

// Score weights. Comments and shares signal more effort than likes, so they
// weigh more; views are high-volume and nearly free, so they weigh little.
const (
	likeWeight    = 3.0
	commentWeight = 5.0
	shareWeight   = 7.0
	viewWeight    = 0.1

	hoursPerDay = 24.0
)

// ScoredPost pairs a post with its computed trending score.
type ScoredPost struct {
	models.Post
	Score float64 `json:"score"`
}

// Score computes the trending score of one post at a reference time. The
// decay term subtracts one point per day of age, so an old post needs
// sustained engagement to stay ranked.
func Score(post *models.Post, now time.Time) float64 {
	ageDays := now.Sub(post.CreatedAt).Hours() / hoursPerDay

	return likeWeight*float64(post.LikesCount) +
		commentWeight*float64(post.CommentsCount) +
		shareWeight*float64(post.SharesCount) +
		viewWeight*float64(post.ViewsCount) -
		ageDays
}

// Rank scores candidates and returns them ordered by score descending,
// breaking ties by recency. The input slice is not modified.
func Rank(candidates []models.Post, now time.Time) []ScoredPost {
	scored := make([]ScoredPost, 0, len(candidates))
	for _, post := range candidates {
		scored = append(scored, ScoredPost{
			Post:  post,
			Score: Score(&post, now),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].CreatedAt.After(scored[j].CreatedAt)
	})

	return scored
}

// Service loads trending candidates from storage and ranks them.
type Service struct {
	db     *gorm.DB
	window time.Duration
}

// NewService creates a trending service that considers public posts created
// within the window.
func NewService(db *gorm.DB, window time.Duration) *Service {
	return &Service{db: db, window: window}
}

// Trending returns the top public posts from the recent window, ranked by
// score. Only posts with at least one like, comment or share are eligible;
// views alone never qualify, however many there are.
func (s *Service) Trending(ctx context.Context, limit int) ([]ScoredPost, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-s.window)

	var candidates []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("is_public = ? AND created_at > ?", true, cutoff).
		Where("likes_count > 0 OR comments_count > 0 OR shares_count > 0").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	ranked := Rank(candidates, now)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
