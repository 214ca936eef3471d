package vouchers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for vouchers and their redemptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	List(ctx context.Context) ([]models.Voucher, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock reduces remaining_stock by one only while stock is
	// positive, returning whether a row was affected. Vouchers with NULL
	// stock are unlimited and always succeed.
	DecrementStock(ctx context.Context, id uuid.UUID) (bool, error)

	CreateRedemption(ctx context.Context, redemption *models.VoucherRedemption) error
	FindRedemptionByCode(ctx context.Context, code string) (*models.VoucherRedemption, error)
	ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.VoucherRedemption, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a voucher repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *repository) List(ctx context.Context) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&vouchers).Error; err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Voucher{}, "id = ?", id).Error
}

func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND (remaining_stock IS NULL OR remaining_stock > 0)", id).
		Update("remaining_stock", gorm.Expr("CASE WHEN remaining_stock IS NULL THEN NULL ELSE remaining_stock - 1 END"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateRedemption(ctx context.Context, redemption *models.VoucherRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func (r *repository) FindRedemptionByCode(ctx context.Context, code string) (*models.VoucherRedemption, error) {
	var redemption models.VoucherRedemption
	if err := r.db.WithContext(ctx).First(&redemption, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *repository) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.VoucherRedemption, error) {
	var redemptions []models.VoucherRedemption
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("redeemed_at DESC").
		Find(&redemptions).Error
	if err != nil {
		return nil, err
	}
	return redemptions, nil
}
