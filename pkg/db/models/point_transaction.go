package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reciclaja/reciclaja-backend/pkg/enums"
)

// PointTransaction is an immutable ledger entry. Rows are only ever
// inserted; the user balance is the sum of Points across their rows.
type PointTransaction struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	Kind        enums.PointTransactionKind `gorm:"column:kind;type:point_transaction_kind_enum;not null"`
	Points      int                        `gorm:"column:points;not null"`
	Description *string                    `gorm:"column:description"`
	ReferenceID *uuid.UUID                 `gorm:"column:reference_id;type:uuid"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
