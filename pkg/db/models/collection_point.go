package models

import (
	"time"

	"github.com/google/uuid"
)

// CollectionPoint is a drop-off location operated by a company.
type CollectionPoint struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID    uuid.UUID `gorm:"column:company_id;type:uuid;not null"`
	Name         string    `gorm:"column:name;not null"`
	OpeningHours *string   `gorm:"column:opening_hours"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	AddressID    uuid.UUID `gorm:"column:address_id;type:uuid;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
