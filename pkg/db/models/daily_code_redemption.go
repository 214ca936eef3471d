package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyCodeRedemption records one user's scan of a daily code.
// One redemption per (user, code) pair.
type DailyCodeRedemption struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_daily_code_redemptions_user_code"`
	DailyCodeID uuid.UUID `gorm:"column:daily_code_id;type:uuid;not null;uniqueIndex:ux_daily_code_redemptions_user_code"`
	RedeemedAt  time.Time `gorm:"column:redeemed_at;autoCreateTime"`
}
