package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the legal entity behind collection points and pickups.
type Company struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	LegalName string    `gorm:"column:legal_name;not null"`
	TradeName string    `gorm:"column:trade_name;not null"`
	CNPJ      string    `gorm:"column:cnpj;not null;uniqueIndex"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
