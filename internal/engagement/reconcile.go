package engagement

import (
	"context"
	"time"

	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/metrics"
	"github.com/crestapp/crest/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler periodically recounts cached engagement counters against the
// edge tables. The toggle path already recounts eagerly; this catches drift
// from crashes between an edge mutation and its recount.
type Reconciler struct {
	db       *gorm.DB
	svc      *Service
	interval time.Duration
	window   time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewReconciler creates a reconciler that sweeps posts touched within the
// given window on the given interval.
func NewReconciler(db *gorm.DB, interval time.Duration) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		db:       db,
		svc:      NewService(db),
		interval: interval,
		window:   24 * time.Hour,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic reconciliation loop.
func (r *Reconciler) Start() {
	logger.Log.Info("Starting engagement counter reconciler",
		zap.Duration("interval", r.interval))
	go r.run()
}

// Stop stops the reconciler.
func (r *Reconciler) Stop() {
	r.cancel()
}

func (r *Reconciler) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if fixed, err := r.ReconcileRecent(r.ctx); err != nil {
				logger.Log.Warn("Counter reconciliation failed", zap.Error(err))
			} else if fixed > 0 {
				logger.Log.Info("Counter reconciliation fixed drift", zap.Int("fixed", fixed))
			}
		case <-r.ctx.Done():
			return
		}
	}
}

// ReconcileRecent recounts counters for posts updated within the sweep
// window and returns how many counters were corrected.
func (r *Reconciler) ReconcileRecent(ctx context.Context) (int, error) {
	var posts []models.Post
	since := time.Now().UTC().Add(-r.window)
	if err := r.db.WithContext(ctx).
		Select("id", "likes_count", "comments_count", "shares_count").
		Where("updated_at > ?", since).
		Find(&posts).Error; err != nil {
		return 0, err
	}
	return r.reconcilePosts(ctx, posts)
}

// ReconcileAll recounts counters for every post. Used by the admin CLI.
func (r *Reconciler) ReconcileAll(ctx context.Context) (int, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Select("id", "likes_count", "comments_count", "shares_count").
		Find(&posts).Error; err != nil {
		return 0, err
	}
	return r.reconcilePosts(ctx, posts)
}

func (r *Reconciler) reconcilePosts(ctx context.Context, posts []models.Post) (int, error) {
	fixed := 0
	for i := range posts {
		post := &posts[i]

		var likes int64
		if err := r.db.WithContext(ctx).Model(&models.Like{}).
			Where("target_id = ? AND target_kind = ?", post.ID, models.TargetPost).
			Count(&likes).Error; err != nil {
			return fixed, err
		}
		if likes != post.LikesCount {
			if err := r.svc.persistLikesCount(ctx, post.ID, models.TargetPost, likes); err != nil {
				return fixed, err
			}
			fixed++
		}

		var comments int64
		if err := r.db.WithContext(ctx).Model(&models.Comment{}).
			Where("post_id = ?", post.ID).
			Count(&comments).Error; err != nil {
			return fixed, err
		}
		if comments != post.CommentsCount {
			if err := r.db.WithContext(ctx).Model(&models.Post{}).
				Where("id = ?", post.ID).
				UpdateColumn("comments_count", comments).Error; err != nil {
				return fixed, err
			}
			fixed++
		}

		var shares int64
		if err := r.db.WithContext(ctx).Model(&models.Share{}).
			Where("post_id = ?", post.ID).
			Count(&shares).Error; err != nil {
			return fixed, err
		}
		if shares != post.SharesCount {
			if err := r.db.WithContext(ctx).Model(&models.Post{}).
				Where("id = ?", post.ID).
				UpdateColumn("shares_count", shares).Error; err != nil {
				return fixed, err
			}
			fixed++
		}
	}

	if fixed > 0 {
		metrics.Get().ReconcileDriftTotal.Add(float64(fixed))
	}
	return fixed, nil
}
