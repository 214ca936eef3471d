package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PickupItem is one material line within a pickup request.
type PickupItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PickupID    uuid.UUID       `gorm:"column:pickup_id;type:uuid;not null;index"`
	WasteTypeID uuid.UUID       `gorm:"column:waste_type_id;type:uuid;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(10,3);not null"`
	Unit        *string         `gorm:"column:unit"`
}
