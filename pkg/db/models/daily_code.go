package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyCode is a scannable code valid for one collection point on one date.
// The (collection_point_id, valid_on) unique index arbitrates between the
// cron and lazy issuance paths.
type DailyCode struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CollectionPointID uuid.UUID `gorm:"column:collection_point_id;type:uuid;not null;uniqueIndex:ux_daily_codes_point_day"`
	Code              string    `gorm:"column:code;not null"`
	ValidOn           time.Time `gorm:"column:valid_on;type:date;not null;uniqueIndex:ux_daily_codes_point_day"`
	PointsValue       int       `gorm:"column:points_value;not null"`
}
