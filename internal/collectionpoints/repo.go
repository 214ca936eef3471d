package collectionpoints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for collection points and their accepted
// waste types. Waste type links are explicit join-table writes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, point *models.CollectionPoint) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.CollectionPoint, error)
	ListActive(ctx context.Context) ([]models.CollectionPoint, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	ReplaceWasteTypes(ctx context.Context, pointID uuid.UUID, wasteTypeIDs []uuid.UUID) error
	ListWasteTypes(ctx context.Context, pointID uuid.UUID) ([]models.WasteType, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a collection point repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, point *models.CollectionPoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error) {
	var point models.CollectionPoint
	if err := r.db.WithContext(ctx).First(&point, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &point, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.CollectionPoint, error) {
	var points []models.CollectionPoint
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.CollectionPoint, error) {
	var points []models.CollectionPoint
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CollectionPoint{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CollectionPoint{}, "id = ?", id).Error
}

func (r *repository) ReplaceWasteTypes(ctx context.Context, pointID uuid.UUID, wasteTypeIDs []uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("collection_point_id = ?", pointID).
		Delete(&models.CollectionPointWasteType{}).Error; err != nil {
		return err
	}
	if len(wasteTypeIDs) == 0 {
		return nil
	}
	links := make([]models.CollectionPointWasteType, 0, len(wasteTypeIDs))
	for _, wtID := range wasteTypeIDs {
		links = append(links, models.CollectionPointWasteType{
			CollectionPointID: pointID,
			WasteTypeID:       wtID,
		})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *repository) ListWasteTypes(ctx context.Context, pointID uuid.UUID) ([]models.WasteType, error) {
	var rows []models.WasteType
	err := r.db.WithContext(ctx).
		Joins("JOIN collection_point_waste_types ON collection_point_waste_types.waste_type_id = waste_types.id").
		Where("collection_point_waste_types.collection_point_id = ?", pointID).
		Order("waste_types.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
