package models

import (
	"time"

	"github.com/google/uuid"
)

// Article is an editorial post for the education feed. The author link is
// optional and survives account deletion as NULL.
type Article struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string     `gorm:"column:title;not null"`
	Content     string     `gorm:"column:content;not null"`
	Published   bool       `gorm:"column:published;not null;default:true"`
	AuthorID    *uuid.UUID `gorm:"column:author_id;type:uuid"`
	PublishedAt time.Time  `gorm:"column:published_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
