package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a time-boxed engagement drive that can award points on adhesion.
type Campaign struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title             string    `gorm:"column:title;not null"`
	Description       *string   `gorm:"column:description"`
	StartsOn          time.Time `gorm:"column:starts_on;type:date;not null"`
	EndsOn            time.Time `gorm:"column:ends_on;type:date;not null"`
	IsActive          bool      `gorm:"column:is_active;not null;default:true"`
	PointsPerAdhesion int       `gorm:"column:points_per_adhesion;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
