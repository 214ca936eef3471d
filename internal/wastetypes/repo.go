package wastetypes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for waste type rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wasteType *models.WasteType) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WasteType, error)
	List(ctx context.Context) ([]models.WasteType, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a waste type repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wasteType *models.WasteType) error {
	return r.db.WithContext(ctx).Create(wasteType).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WasteType, error) {
	var wasteType models.WasteType
	if err := r.db.WithContext(ctx).First(&wasteType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wasteType, nil
}

func (r *repository) List(ctx context.Context) ([]models.WasteType, error) {
	var wasteTypes []models.WasteType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&wasteTypes).Error; err != nil {
		return nil, err
	}
	return wasteTypes, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WasteType{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WasteType{}, "id = ?", id).Error
}
