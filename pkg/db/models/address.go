package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shared postal address row.
type Address struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Street     string    `gorm:"column:street;not null"`
	Number     string    `gorm:"column:number;not null"`
	Complement *string   `gorm:"column:complement"`
	District   string    `gorm:"column:district;not null"`
	City       string    `gorm:"column:city;not null"`
	State      string    `gorm:"column:state;not null"`
	ZipCode    string    `gorm:"column:zip_code;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
