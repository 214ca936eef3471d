package pickups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for pickup schedules and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pickup *models.PickupSchedule) error
	CreateItems(ctx context.Context, items []models.PickupItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PickupSchedule, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PickupSchedule, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PickupSchedule, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pickup repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, pickup *models.PickupSchedule) error {
	return r.db.WithContext(ctx).Omit("Items").Create(pickup).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.PickupItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PickupSchedule, error) {
	var pickup models.PickupSchedule
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&pickup, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pickup, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PickupSchedule, error) {
	var pickups []models.PickupSchedule
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&pickups).Error
	if err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PickupSchedule, error) {
	var pickups []models.PickupSchedule
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ?", companyID).
		Order("requested_at DESC").
		Find(&pickups).Error
	if err != nil {
		return nil, err
	}
	return pickups, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PickupSchedule{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PickupSchedule{}, "id = ?", id).Error
}
