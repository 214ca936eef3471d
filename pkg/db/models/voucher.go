package models

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is a partner reward purchasable with points.
// RemainingStock nil means unlimited stock.
type Voucher struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerName    string     `gorm:"column:partner_name;not null"`
	Title          string     `gorm:"column:title;not null"`
	Description    *string    `gorm:"column:description"`
	PointCost      int        `gorm:"column:point_cost;not null"`
	ExpiresOn      *time.Time `gorm:"column:expires_on;type:date"`
	RemainingStock *int       `gorm:"column:remaining_stock"`
	ImageURL       *string    `gorm:"column:image_url"`
	CreatedBy      *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
