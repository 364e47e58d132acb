// Package seed fills the database with realistic fake data for development.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/crestapp/crest/backend/internal/engagement"
	"github.com/crestapp/crest/backend/internal/logger"
	"github.com/crestapp/crest/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder generates development data.
type Seeder struct {
	db  *gorm.DB
	svc *engagement.Service
}

// NewSeeder creates a seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		svc: engagement.NewService(db),
	}
}

// SeedDev fills the database with a realistic development dataset.
func (s *Seeder) SeedDev() error {
	logger.Log.Info("🌱 Seeding development database")

	users, err := s.seedUsers(25)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	posts, err := s.seedPosts(users, 120)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	if err := s.seedEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("✅ Seed complete",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

// SeedTest creates a minimal dataset for manual testing.
func (s *Seeder) SeedTest() error {
	users, err := s.seedUsers(3)
	if err != nil {
		return err
	}
	_, err = s.seedPosts(users, 6)
	return err
}

// Clean removes all seeded data. Destructive; development only.
func (s *Seeder) Clean() error {
	tables := []interface{}{
		&models.Notification{},
		&models.Like{},
		&models.Share{},
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)

	for i := 0; i < count; i++ {
		user := models.User{
			Email:       fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Username:    fmt.Sprintf("%s%d", gofakeit.Username(), i),
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.HipsterSentence(),
			IsPrivate:   rand.Intn(5) == 0,
		}
		if err := user.SetPassword("password123"); err != nil {
			return nil, err
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *Seeder) seedFollows(users []models.User) error {
	for i := range users {
		for j := range users {
			if i == j || rand.Intn(3) != 0 {
				continue
			}
			status := models.FollowStatusAccepted
			if users[j].IsPrivate && rand.Intn(2) == 0 {
				status = models.FollowStatusPending
			}
			follow := models.Follow{
				FollowerID:  users[i].ID,
				FollowingID: users[j].ID,
				Status:      status,
			}
			if err := s.db.Create(&follow).Error; err != nil {
				return err
			}
			if status == models.FollowStatusAccepted {
				s.db.Model(&models.User{}).Where("id = ?", users[i].ID).
					UpdateColumn("following_count", gorm.Expr("following_count + 1"))
				s.db.Model(&models.User{}).Where("id = ?", users[j].ID).
					UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)

	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			UserID:   author.ID,
			Body:     gofakeit.Paragraph(1, 3, 12, " "),
			IsPublic: rand.Intn(10) != 0,
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}

		// Backdate so trending decay has something to bite on.
		createdAt := gofakeit.DateRange(time.Now().AddDate(0, 0, -14), time.Now())
		s.db.Model(&post).UpdateColumn("created_at", createdAt)

		s.db.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1"))

		posts = append(posts, post)
	}

	return posts, nil
}

func (s *Seeder) seedEngagement(users []models.User, posts []models.Post) error {
	ctx := context.Background()

	for _, post := range posts {
		for _, user := range users {
			if rand.Intn(4) != 0 {
				continue
			}
			if _, err := s.svc.ToggleLike(ctx, user.ID, post.ID, models.TargetPost); err != nil {
				return err
			}
		}

		for i := 0; i < rand.Intn(5); i++ {
			comment := models.Comment{
				PostID:  post.ID,
				UserID:  users[rand.Intn(len(users))].ID,
				Content: gofakeit.HipsterSentence(),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
		}
		if _, err := s.svc.RecountComments(ctx, post.ID); err != nil {
			return err
		}

		for i := 0; i < rand.Intn(30); i++ {
			if err := s.svc.IncrementViews(ctx, post.ID); err != nil {
				return err
			}
		}
	}

	return nil
}
