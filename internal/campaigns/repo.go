package campaigns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
)

// Repository manages persistence for campaigns and memberships. Membership
// rows are written with explicit statements, never association helpers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateMembership(ctx context.Context, membership *models.CampaignMembership) error
	FindMembership(ctx context.Context, userID, campaignID uuid.UUID) (*models.CampaignMembership, error)
	DeleteMembership(ctx context.Context, userID, campaignID uuid.UUID) error
	ListCampaignsByUser(ctx context.Context, userID uuid.UUID) ([]models.Campaign, error)
	CountMembers(ctx context.Context, campaignID uuid.UUID) (int64, error)

	CreateCompanyLink(ctx context.Context, link *models.CampaignCompany) error
	FindCompanyLink(ctx context.Context, campaignID, companyID uuid.UUID) (*models.CampaignCompany, error)
	ListPartnerCompanies(ctx context.Context, campaignID uuid.UUID) ([]models.Company, error)
	CountPartnerCompanies(ctx context.Context, campaignID uuid.UUID) (int64, error)

	CreateCollectionPointLink(ctx context.Context, link *models.CampaignCollectionPoint) error
	FindCollectionPointLink(ctx context.Context, campaignID, pointID uuid.UUID) (*models.CampaignCollectionPoint, error)
	ListCollectionPoints(ctx context.Context, campaignID uuid.UUID) ([]models.CollectionPoint, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a campaign repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) List(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := r.db.WithContext(ctx).Order("starts_on DESC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Campaign{}, "id = ?", id).Error
}

func (r *repository) CreateMembership(ctx context.Context, membership *models.CampaignMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repository) FindMembership(ctx context.Context, userID, campaignID uuid.UUID) (*models.CampaignMembership, error) {
	var membership models.CampaignMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) DeleteMembership(ctx context.Context, userID, campaignID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND campaign_id = ?", userID, campaignID).
		Delete(&models.CampaignMembership{}).Error
}

func (r *repository) ListCampaignsByUser(ctx context.Context, userID uuid.UUID) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Joins("JOIN campaign_memberships ON campaign_memberships.campaign_id = campaigns.id").
		Where("campaign_memberships.user_id = ?", userID).
		Order("campaign_memberships.joined_at DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repository) CountMembers(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CampaignMembership{}).
		Where("campaign_id = ? AND is_active", campaignID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateCompanyLink(ctx context.Context, link *models.CampaignCompany) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) FindCompanyLink(ctx context.Context, campaignID, companyID uuid.UUID) (*models.CampaignCompany, error) {
	var link models.CampaignCompany
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND company_id = ?", campaignID, companyID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListPartnerCompanies(ctx context.Context, campaignID uuid.UUID) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.WithContext(ctx).
		Joins("JOIN campaign_companies ON campaign_companies.company_id = companies.id").
		Where("campaign_companies.campaign_id = ?", campaignID).
		Order("campaign_companies.linked_at DESC").
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *repository) CountPartnerCompanies(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CampaignCompany{}).
		Where("campaign_id = ?", campaignID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateCollectionPointLink(ctx context.Context, link *models.CampaignCollectionPoint) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repository) FindCollectionPointLink(ctx context.Context, campaignID, pointID uuid.UUID) (*models.CampaignCollectionPoint, error) {
	var link models.CampaignCollectionPoint
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND collection_point_id = ?", campaignID, pointID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListCollectionPoints(ctx context.Context, campaignID uuid.UUID) ([]models.CollectionPoint, error) {
	var points []models.CollectionPoint
	err := r.db.WithContext(ctx).
		Joins("JOIN campaign_collection_points ON campaign_collection_points.collection_point_id = collection_points.id").
		Where("campaign_collection_points.campaign_id = ?", campaignID).
		Order("campaign_collection_points.linked_at DESC").
		Find(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}
