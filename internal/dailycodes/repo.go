package dailycodes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for daily codes and user redemptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCode(ctx context.Context, code *models.DailyCode) error
	FindByCodeAndDate(ctx context.Context, code string, validOn time.Time) (*models.DailyCode, error)
	FindByPointAndDate(ctx context.Context, pointID uuid.UUID, validOn time.Time) (*models.DailyCode, error)

	CreateRedemption(ctx context.Context, redemption *models.DailyCodeRedemption) error
	FindRedemption(ctx context.Context, userID, codeID uuid.UUID) (*models.DailyCodeRedemption, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a daily code repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCode(ctx context.Context, code *models.DailyCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) FindByCodeAndDate(ctx context.Context, code string, validOn time.Time) (*models.DailyCode, error) {
	var row models.DailyCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND valid_on = ?", code, validOn).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByPointAndDate(ctx context.Context, pointID uuid.UUID, validOn time.Time) (*models.DailyCode, error) {
	var row models.DailyCode
	err := r.db.WithContext(ctx).
		Where("collection_point_id = ? AND valid_on = ?", pointID, validOn).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.DailyCodeRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) FindRedemption(ctx context.Context, userID, codeID uuid.UUID) (*models.DailyCodeRedemption, error) {
	var redemption models.DailyCodeRedemption
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND daily_code_id = ?", userID, codeID).
		First(&redemption).Error
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}
