package models

import (
	"time"

	"github.com/google/uuid"
)

// VoucherRedemption records one issued voucher code for one user.
type VoucherRedemption struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	VoucherID   uuid.UUID `gorm:"column:voucher_id;type:uuid;not null"`
	PointsSpent int       `gorm:"column:points_spent;not null"`
	Code        string    `gorm:"column:code;not null;uniqueIndex"`
	Used        bool      `gorm:"column:used;not null;default:false"`
	RedeemedAt  time.Time `gorm:"column:redeemed_at;autoCreateTime"`
}
