package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reciclaja/reciclaja-backend/pkg/enums"
)

// PickupSchedule is a user's request for a company to collect materials.
type PickupSchedule struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	CompanyID         uuid.UUID          `gorm:"column:company_id;type:uuid;not null;index"`
	AddressID         uuid.UUID          `gorm:"column:address_id;type:uuid;not null"`
	Status            enums.PickupStatus `gorm:"column:status;type:pickup_status_enum;not null;default:REQUESTED"`
	ScheduledFor      *time.Time         `gorm:"column:scheduled_for"`
	EstimatedVolumeM3 *decimal.Decimal   `gorm:"column:estimated_volume_m3;type:numeric(10,3)"`
	EstimatedWeightKg *decimal.Decimal   `gorm:"column:estimated_weight_kg;type:numeric(10,3)"`
	UserNotes         *string            `gorm:"column:user_notes"`
	RejectionReason   *string            `gorm:"column:rejection_reason"`
	Items             []PickupItem       `gorm:"foreignKey:PickupID;constraint:OnDelete:CASCADE"`
	RequestedAt       time.Time          `gorm:"column:requested_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
