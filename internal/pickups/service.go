package pickups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/mailer"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// allowed status transitions; a same-status update is a no-op, anything
// else not listed here is rejected
var statusTransitions = map[enums.PickupStatus][]enums.PickupStatus{
	enums.PickupStatusRequested: {enums.PickupStatusConfirmed, enums.PickupStatusRejected, enums.PickupStatusCancelled},
	enums.PickupStatusConfirmed: {enums.PickupStatusCompleted, enums.PickupStatusCancelled},
}

// Service exposes pickup scheduling and the status lifecycle, including
// the one-time completion award.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PickupSchedule, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PickupSchedule, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PickupSchedule, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PickupSchedule, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.PickupSchedule, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*models.PickupSchedule, error)
	Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

type service struct {
	repo            Repository
	users           userGetter
	points          points.Service
	tx              txRunner
	mail            mailer.Mailer
	logg            *logger.Logger
	completionAward int
}

// ItemInput is one material line in a pickup request.
type ItemInput struct {
	WasteTypeID uuid.UUID
	Quantity    decimal.Decimal
	Unit        *string
}

// CreateInput carries the fields accepted when scheduling a pickup.
type CreateInput struct {
	UserID            uuid.UUID
	CompanyID         uuid.UUID
	AddressID         uuid.UUID
	ScheduledFor      *time.Time
	EstimatedVolumeM3 *decimal.Decimal
	EstimatedWeightKg *decimal.Decimal
	UserNotes         *string
	Items             []ItemInput
}

// UpdateInput carries the allow-listed mutable fields while a pickup is
// still in its requested state.
type UpdateInput struct {
	ScheduledFor      *time.Time
	EstimatedVolumeM3 *decimal.Decimal
	EstimatedWeightKg *decimal.Decimal
	UserNotes         *string
}

// StatusInput carries a status transition request.
type StatusInput struct {
	Status          enums.PickupStatus
	RejectionReason *string
}

// NewService wires a pickup service with its dependencies.
func NewService(repo Repository, users userGetter, pointsSvc points.Service, tx txRunner, mail mailer.Mailer, logg *logger.Logger, completionAward int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pickup repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user getter required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if mail == nil {
		mail = mailer.Noop{}
	}
	if completionAward <= 0 {
		return nil, fmt.Errorf("completion award must be positive")
	}
	return &service{
		repo:            repo,
		users:           users,
		points:          pointsSvc,
		tx:              tx,
		mail:            mail,
		logg:            logg,
		completionAward: completionAward,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PickupSchedule, error) {
	if input.UserID == uuid.Nil || input.CompanyID == uuid.Nil || input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user, company, and address ids required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range input.Items {
		if item.WasteTypeID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "waste type id required on every item")
		}
		if item.Quantity.Sign() <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	pickup := &models.PickupSchedule{
		ID:                uuid.New(),
		UserID:            input.UserID,
		CompanyID:         input.CompanyID,
		AddressID:         input.AddressID,
		Status:            enums.PickupStatusRequested,
		ScheduledFor:      input.ScheduledFor,
		EstimatedVolumeM3: input.EstimatedVolumeM3,
		EstimatedWeightKg: input.EstimatedWeightKg,
		UserNotes:         input.UserNotes,
	}

	items := make([]models.PickupItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, models.PickupItem{
			ID:          uuid.New(),
			PickupID:    pickup.ID,
			WasteTypeID: item.WasteTypeID,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, pickup); err != nil {
			return err
		}
		return repo.CreateItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	pickup.Items = items
	return pickup, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PickupSchedule, error) {
	pickup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup not found")
		}
		return nil, err
	}
	return pickup, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PickupSchedule, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.PickupSchedule, error) {
	if companyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company id required")
	}
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.PickupSchedule, error) {
	pickup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pickup.Status != enums.PickupStatusRequested {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "only requested pickups can be edited")
	}

	updates := map[string]any{}
	if input.ScheduledFor != nil {
		updates["scheduled_for"] = *input.ScheduledFor
	}
	if input.EstimatedVolumeM3 != nil {
		updates["estimated_volume_m3"] = *input.EstimatedVolumeM3
	}
	if input.EstimatedWeightKg != nil {
		updates["estimated_weight_kg"] = *input.EstimatedWeightKg
	}
	if input.UserNotes != nil {
		updates["user_notes"] = *input.UserNotes
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// UpdateStatus applies a lifecycle transition. Completing a pickup that
// was not already completed appends the EARN_PICKUP award in the same
// transaction, so the award happens at most once per pickup.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*models.PickupSchedule, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid pickup status %q", input.Status))
	}

	pickup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if pickup.Status == input.Status {
		return pickup, nil
	}
	if !transitionAllowed(pickup.Status, input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule,
			fmt.Sprintf("cannot move pickup from %s to %s", pickup.Status, input.Status))
	}
	if input.Status == enums.PickupStatusRejected && (input.RejectionReason == nil || *input.RejectionReason == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	previous := pickup.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		updates := map[string]any{"status": input.Status}
		if input.RejectionReason != nil {
			updates["rejection_reason"] = *input.RejectionReason
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}

		if input.Status == enums.PickupStatusCompleted && previous != enums.PickupStatusCompleted {
			desc := "pickup completed"
			_, err := s.points.RecordTx(ctx, tx, points.RecordInput{
				UserID:      pickup.UserID,
				Kind:        enums.PointTransactionKindEarnPickup,
				Points:      s.completionAward,
				Description: &desc,
				ReferenceID: &pickup.ID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, pickup.UserID, input.Status)
	return s.Get(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	pickup, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if pickup.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "pickup belongs to another user")
	}
	if _, err := s.UpdateStatus(ctx, id, StatusInput{Status: enums.PickupStatusCancelled}); err != nil {
		return err
	}
	return nil
}

func (s *service) notifyStatusChange(ctx context.Context, userID uuid.UUID, status enums.PickupStatus) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("pickup status email skipped: %v", err))
		}
		return
	}
	msg := mailer.Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "Atualização da sua coleta",
		HTML: fmt.Sprintf("<p>Olá %s,</p><p>O status da sua coleta mudou para <strong>%s</strong>.</p>",
			user.Name, status),
	}
	if err := s.mail.Send(ctx, msg); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("pickup status email failed: %v", err))
	}
}

func transitionAllowed(from, to enums.PickupStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
