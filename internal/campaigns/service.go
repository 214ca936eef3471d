package campaigns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/pkg/db"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type companyGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type collectionPointGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error)
}

// Service exposes campaign CRUD, the join/leave workflows that touch the
// points ledger, and the partner links companies and drop-off points
// attach to a campaign.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Join(ctx context.Context, userID, campaignID uuid.UUID) (*models.CampaignMembership, error)
	Leave(ctx context.Context, userID, campaignID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Campaign, error)

	AttachCompany(ctx context.Context, campaignID, companyID uuid.UUID) error
	AttachCollectionPoint(ctx context.Context, campaignID, pointID uuid.UUID) error
	Stats(ctx context.Context, campaignID uuid.UUID) (*CampaignStats, error)
	ListPartnerCompanies(ctx context.Context, campaignID uuid.UUID) ([]models.Company, error)
	ListCollectionPoints(ctx context.Context, campaignID uuid.UUID) ([]models.CollectionPoint, error)
}

type service struct {
	repo             Repository
	users            userGetter
	companies        companyGetter
	collectionPoints collectionPointGetter
	points           points.Service
	tx               txRunner
}

// CampaignStats aggregates the engagement counters shown on a campaign.
type CampaignStats struct {
	Supporters       int64
	PartnerCompanies int64
}

// CreateInput carries the fields accepted on campaign creation.
type CreateInput struct {
	Title             string
	Description       *string
	StartsOn          time.Time
	EndsOn            time.Time
	PointsPerAdhesion int
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	Title             *string
	Description       *string
	StartsOn          *time.Time
	EndsOn            *time.Time
	IsActive          *bool
	PointsPerAdhesion *int
}

// NewService wires a campaign service with its dependencies.
func NewService(repo Repository, users userGetter, companies companyGetter, collectionPoints collectionPointGetter, pointsSvc points.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaign repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user getter required")
	}
	if companies == nil {
		return nil, fmt.Errorf("company getter required")
	}
	if collectionPoints == nil {
		return nil, fmt.Errorf("collection point getter required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:             repo,
		users:            users,
		companies:        companies,
		collectionPoints: collectionPoints,
		points:           pointsSvc,
		tx:               tx,
	}, nil
}

func (s *service) requireUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return err
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Campaign, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.StartsOn.IsZero() || input.EndsOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if input.EndsOn.Before(input.StartsOn) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	if input.PointsPerAdhesion < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points per adhesion cannot be negative")
	}

	campaign := &models.Campaign{
		Title:             title,
		Description:       input.Description,
		StartsOn:          input.StartsOn,
		EndsOn:            input.EndsOn,
		IsActive:          true,
		PointsPerAdhesion: input.PointsPerAdhesion,
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, err
	}
	return campaign, nil
}

func (s *service) List(ctx context.Context) ([]models.Campaign, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Campaign, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.StartsOn != nil {
		updates["starts_on"] = *input.StartsOn
	}
	if input.EndsOn != nil {
		updates["ends_on"] = *input.EndsOn
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.PointsPerAdhesion != nil {
		if *input.PointsPerAdhesion < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "points per adhesion cannot be negative")
		}
		updates["points_per_adhesion"] = *input.PointsPerAdhesion
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Join adds the user to an active campaign and awards the campaign's
// adhesion points in the same transaction. Duplicate joins are rejected.
func (s *service) Join(ctx context.Context, userID, campaignID uuid.UUID) (*models.CampaignMembership, error) {
	if userID == uuid.Nil || campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and campaign id required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "campaign is not active")
	}

	membership := &models.CampaignMembership{
		UserID:     userID,
		CampaignID: campaignID,
		IsActive:   true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindMembership(ctx, userID, campaignID); err == nil {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "already a member of this campaign")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := repo.CreateMembership(ctx, membership); err != nil {
			if db.IsUniqueViolation(err, "ux_campaign_memberships_user_campaign") {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "already a member of this campaign")
			}
			return err
		}

		if campaign.PointsPerAdhesion > 0 {
			desc := fmt.Sprintf("joined campaign %s", campaign.Title)
			_, err := s.points.RecordTx(ctx, tx, points.RecordInput{
				UserID:      userID,
				Kind:        enums.PointTransactionKindEarnCampaign,
				Points:      campaign.PointsPerAdhesion,
				Description: &desc,
				ReferenceID: &campaign.ID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Leave removes the membership and appends an offsetting negative ledger
// entry. The reversal amount comes from the most recent positive adhesion
// award for this campaign; when no award is found the current
// points_per_adhesion is used instead.
func (s *service) Leave(ctx context.Context, userID, campaignID uuid.UUID) error {
	if userID == uuid.Nil || campaignID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and campaign id required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindMembership(ctx, userID, campaignID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "not a member of this campaign")
			}
			return err
		}

		if err := repo.DeleteMembership(ctx, userID, campaignID); err != nil {
			return err
		}

		reversal := campaign.PointsPerAdhesion
		award, err := s.points.LastAwardTx(ctx, tx, userID, enums.PointTransactionKindEarnCampaign, campaignID)
		if err == nil {
			reversal = award.Points
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if reversal > 0 {
			desc := fmt.Sprintf("left campaign %s", campaign.Title)
			_, err := s.points.RecordTx(ctx, tx, points.RecordInput{
				UserID:      userID,
				Kind:        enums.PointTransactionKindEarnCampaign,
				Points:      -reversal,
				Description: &desc,
				ReferenceID: &campaign.ID,
			})
			return err
		}
		return nil
	})
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Campaign, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListCampaignsByUser(ctx, userID)
}

// AttachCompany records a company as a campaign partner. Both sides must
// exist; a repeated link is rejected.
func (s *service) AttachCompany(ctx context.Context, campaignID, companyID uuid.UUID) error {
	if campaignID == uuid.Nil || companyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign id and company id required")
	}

	if _, err := s.Get(ctx, campaignID); err != nil {
		return err
	}
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return err
	}

	if _, err := s.repo.FindCompanyLink(ctx, campaignID, companyID); err == nil {
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "company already supports this campaign")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	link := &models.CampaignCompany{CampaignID: campaignID, CompanyID: companyID}
	if err := s.repo.CreateCompanyLink(ctx, link); err != nil {
		if db.IsUniqueViolation(err, "campaign_companies_pkey") {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "company already supports this campaign")
		}
		return err
	}
	return nil
}

// AttachCollectionPoint links a drop-off point to a campaign.
func (s *service) AttachCollectionPoint(ctx context.Context, campaignID, pointID uuid.UUID) error {
	if campaignID == uuid.Nil || pointID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign id and collection point id required")
	}

	if _, err := s.Get(ctx, campaignID); err != nil {
		return err
	}
	if _, err := s.collectionPoints.FindByID(ctx, pointID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "collection point not found")
		}
		return err
	}

	if _, err := s.repo.FindCollectionPointLink(ctx, campaignID, pointID); err == nil {
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "collection point already linked to this campaign")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	link := &models.CampaignCollectionPoint{CampaignID: campaignID, CollectionPointID: pointID}
	if err := s.repo.CreateCollectionPointLink(ctx, link); err != nil {
		if db.IsUniqueViolation(err, "campaign_collection_points_pkey") {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "collection point already linked to this campaign")
		}
		return err
	}
	return nil
}

// Stats returns the supporter and partner company counters for a campaign.
func (s *service) Stats(ctx context.Context, campaignID uuid.UUID) (*CampaignStats, error) {
	if _, err := s.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	supporters, err := s.repo.CountMembers(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	partners, err := s.repo.CountPartnerCompanies(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return &CampaignStats{Supporters: supporters, PartnerCompanies: partners}, nil
}

func (s *service) ListPartnerCompanies(ctx context.Context, campaignID uuid.UUID) ([]models.Company, error) {
	if _, err := s.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListPartnerCompanies(ctx, campaignID)
}

func (s *service) ListCollectionPoints(ctx context.Context, campaignID uuid.UUID) ([]models.CollectionPoint, error) {
	if _, err := s.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListCollectionPoints(ctx, campaignID)
}
