package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reciclaja/reciclaja-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID                    uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string         `gorm:"column:name;not null"`
	Email                 string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash          string         `gorm:"column:password_hash;not null"`
	Phone                 *string        `gorm:"column:phone"`
	Role                  enums.UserRole `gorm:"column:role;type:user_role_enum;not null"`
	CPF                   *string        `gorm:"column:cpf;uniqueIndex"`
	IsActive              bool           `gorm:"column:is_active;not null;default:true"`
	RecoveryCode          *string        `gorm:"column:recovery_code"`
	RecoveryCodeExpiresAt *time.Time     `gorm:"column:recovery_code_expires_at"`
	CreatedAt             time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
