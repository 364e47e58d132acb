package models

import (
	"time"

	"gorm.io/gorm"
)

// TargetKind identifies what a like edge points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid reports whether the kind is one of the known target kinds.
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// Like is the source of truth for "user X likes target Y". The composite
// unique index makes concurrent duplicate toggles settle on exactly one edge
// state; the database rejects the second insert, there is no check-then-act
// window. Rows are hard-deleted on toggle-off and never updated in place.
type Like struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string     `gorm:"not null;uniqueIndex:idx_likes_tuple" json:"user_id"`
	TargetID   string     `gorm:"not null;uniqueIndex:idx_likes_tuple;index" json:"target_id"`
	TargetKind TargetKind `gorm:"not null;uniqueIndex:idx_likes_tuple" json:"target_kind"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}
