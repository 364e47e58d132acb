package notify

import (
	"context"
	"time"

	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pruner periodically deletes old read notifications. Unread rows are kept
// indefinitely; a user who has not opened the app yet loses nothing.
type Pruner struct {
	db       *gorm.DB
	interval time.Duration
	maxAge   time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewPruner creates a pruner that removes read notifications older than
// maxAge on the given interval.
func NewPruner(db *gorm.DB, interval, maxAge time.Duration) *Pruner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pruner{
		db:       db,
		interval: interval,
		maxAge:   maxAge,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic prune loop.
func (p *Pruner) Start() {
	logger.Log.Info("🧹 Starting notification pruner",
		zap.Duration("interval", p.interval),
		zap.Duration("max_age", p.maxAge),
	)
	go p.run()
}

// Stop stops the pruner.
func (p *Pruner) Stop() {
	p.cancel()
}

func (p *Pruner) run() {
	// Run once on startup, then on the interval.
	p.sweep()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pruner) sweep() {
	if pruned, err := p.PruneOnce(p.ctx); err != nil {
		logger.Log.Warn("Notification prune failed", zap.Error(err))
	} else if pruned > 0 {
		logger.Log.Info("Pruned old notifications", zap.Int64("pruned", pruned))
	}
}

// PruneOnce deletes read notifications past the retention age and returns
// how many rows were removed. Used by the run loop and the admin CLI.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-p.maxAge)
	result := p.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
