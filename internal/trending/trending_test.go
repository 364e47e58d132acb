package trending

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/crestapp/crest/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestScoreWeights(t *testing.T) {
	now := time.Now().UTC()
	post := &models.Post{
		LikesCount:    2,
		CommentsCount: 3,
		SharesCount:   1,
		ViewsCount:    10,
		CreatedAt:     now,
	}

	// 3*2 + 5*3 + 7*1 + 0.1*10 - 0 days of decay
	assert.InDelta(t, 29.0, Score(post, now), 0.001)
}

func TestScoreIsDeterministic(t *testing.T) {
	now := time.Now().UTC()
	post := &models.Post{LikesCount: 5, ViewsCount: 100, CreatedAt: now.Add(-12 * time.Hour)}

	assert.Equal(t, Score(post, now), Score(post, now))
}

func TestScoreDecaysWithAge(t *testing.T) {
	now := time.Now().UTC()
	fresh := &models.Post{LikesCount: 1, CreatedAt: now}
	dayOld := &models.Post{LikesCount: 1, CreatedAt: now.Add(-24 * time.Hour)}

	assert.InDelta(t, 3.0, Score(fresh, now), 0.001)
	assert.InDelta(t, 2.0, Score(dayOld, now), 0.001)
	assert.Greater(t, Score(fresh, now), Score(dayOld, now))
}

func TestScoreCanGoNegative(t *testing.T) {
	now := time.Now().UTC()
	stale := &models.Post{ViewsCount: 1, CreatedAt: now.Add(-10 * 24 * time.Hour)}

	assert.Less(t, Score(stale, now), 0.0)
}

func TestRankOrdersByScore(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		{ID: "low", LikesCount: 1, CreatedAt: now},
		{ID: "high", SharesCount: 3, CreatedAt: now},
		{ID: "mid", CommentsCount: 2, CreatedAt: now},
	}

	ranked := Rank(posts, now)
	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].ID)
	assert.Equal(t, "mid", ranked[1].ID)
	assert.Equal(t, "low", ranked[2].ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRankTieBreaksOnRecency(t *testing.T) {
	now := time.Now().UTC()
	posts := []models.Post{
		{ID: "older", LikesCount: 2, CreatedAt: now.Add(-time.Minute)},
		{ID: "newer", LikesCount: 2, CreatedAt: now},
	}

	ranked := Rank(posts, now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "newer", ranked[0].ID, "equal scores fall back to newest first")
}

func trendingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:trending_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

func seedPost(t *testing.T, db *gorm.DB, userID, id string, likes int64, public bool, age time.Duration) {
	t.Helper()
	post := &models.Post{ID: id, UserID: userID, Body: id, IsPublic: public, LikesCount: likes}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Model(post).
		UpdateColumn("created_at", time.Now().UTC().Add(-age)).Error)
}

func TestTrendingService(t *testing.T) {
	db := trendingTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "u@test.com", Username: "u", DisplayName: "U"}
	require.NoError(t, db.Create(user).Error)

	seedPost(t, db, user.ID, "hot", 10, true, time.Hour)
	seedPost(t, db, user.ID, "warm", 2, true, time.Hour)
	seedPost(t, db, user.ID, "ignored-zero", 0, true, time.Hour)
	seedPost(t, db, user.ID, "ignored-private", 50, false, time.Hour)
	seedPost(t, db, user.ID, "ignored-old", 50, true, 100*time.Hour)

	svc := NewService(db, 72*time.Hour)
	ranked, err := svc.Trending(ctx, 10)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "hot", ranked[0].ID)
	assert.Equal(t, "warm", ranked[1].ID)
}

func TestTrendingHonorsLimit(t *testing.T) {
	db := trendingTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "u@test.com", Username: "u", DisplayName: "U"}
	require.NoError(t, db.Create(user).Error)

	for i := 0; i < 5; i++ {
		seedPost(t, db, user.ID, fmt.Sprintf("post-%d", i), int64(i+1), true, time.Hour)
	}

	svc := NewService(db, 72*time.Hour)
	ranked, err := svc.Trending(ctx, 3)
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, "post-4", ranked[0].ID)
}

func TestTrendingIgnoresViewOnlyPosts(t *testing.T) {
	db := trendingTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "u@test.com", Username: "u", DisplayName: "U"}
	require.NoError(t, db.Create(user).Error)

	viewed := &models.Post{ID: "viewed", UserID: user.ID, Body: "viewed", IsPublic: true, ViewsCount: 500}
	require.NoError(t, db.Create(viewed).Error)
	seedPost(t, db, user.ID, "liked", 1, true, time.Hour)

	svc := NewService(db, 72*time.Hour)
	ranked, err := svc.Trending(ctx, 10)
	require.NoError(t, err)

	// Views feed the score but never make a post eligible on their own.
	require.Len(t, ranked, 1)
	assert.Equal(t, "liked", ranked[0].ID)
}
