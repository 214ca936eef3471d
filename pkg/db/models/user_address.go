package models

import "github.com/google/uuid"

// UserAddress links a user to an address. Composite primary key.
type UserAddress struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	AddressID uuid.UUID `gorm:"column:address_id;type:uuid;primaryKey"`
	Label     *string   `gorm:"column:label"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false"`
}

// TableName pins the join table name.
func (UserAddress) TableName() string {
	return "user_addresses"
}
