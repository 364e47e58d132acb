package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a piece of content in the feed.
type Post struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index:idx_posts_user_created,priority:1" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Body     string `gorm:"type:text;not null" json:"body"`
	MediaURL string `json:"media_url,omitempty"`

	// Engagement counters. Derived caches of the like/comment/share rows;
	// the engagement service recounts them from the source tables after
	// every mutation, so they can be overwritten at any time.
	LikesCount    int64 `gorm:"default:0" json:"likes_count"`
	CommentsCount int64 `gorm:"default:0" json:"comments_count"`
	SharesCount   int64 `gorm:"default:0" json:"shares_count"`
	ViewsCount    int64 `gorm:"default:0" json:"views_count"`

	// No column default: gorm omits zero-value fields that carry one on
	// insert, so IsPublic:false would be stored as true. Callers set the
	// value explicitly.
	IsPublic bool `json:"is_public"`

	CreatedAt time.Time      `gorm:"index:idx_posts_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// Comment represents a comment on a Post. Top-level comments have a nil
// ParentID.
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	ParentID *string  `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *Comment `gorm:"foreignKey:ParentID" json:"-"`

	// Cached like count, recounted from the likes table after every toggle.
	LikesCount int64 `gorm:"default:0" json:"likes_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

// Share represents a user sharing a post to their own feed (like a retweet).
// One share per user per post.
type Share struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;uniqueIndex:idx_shares_user_post" json:"user_id"`
	PostID string `gorm:"not null;uniqueIndex:idx_shares_user_post" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"post,omitempty"`

	Quote string `gorm:"type:text" json:"quote,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}
