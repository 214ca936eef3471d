package addresses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for addresses and the user link table.
// Links are written with explicit join-table statements rather than ORM
// association helpers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, address *models.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	LinkToUser(ctx context.Context, link *models.UserAddress) error
	UnlinkFromUser(ctx context.Context, userID, addressID uuid.UUID) error
	FindLink(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an address repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Address{}, "id = ?", id).Error
}

func (r *repository) LinkToUser(ctx context.Context, link *models.UserAddress) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) UnlinkFromUser(ctx context.Context, userID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND address_id = ?", userID, addressID).
		Delete(&models.UserAddress{}).Error
}

func (r *repository) FindLink(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	var link models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND address_id = ?", userID, addressID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Joins("JOIN user_addresses ON user_addresses.address_id = addresses.id").
		Where("user_addresses.user_id = ?", userID).
		Order("addresses.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
