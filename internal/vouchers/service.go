package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/mailer"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/pkg/db"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
	"github.com/reciclaja/reciclaja-backend/pkg/security"
)

const (
	codePrefix         = "ECO-"
	codeRandomLen      = 6
	codeCollisionRetry = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes the voucher catalog and the redemption workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Voucher, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	List(ctx context.Context) ([]models.Voucher, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Voucher, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Redeem(ctx context.Context, userID, voucherID uuid.UUID) (*RedeemResult, error)
	ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.VoucherRedemption, error)
}

type service struct {
	repo   Repository
	users  userGetter
	points points.Service
	tx     txRunner
	mail   mailer.Mailer
	logg   *logger.Logger
	loc    *time.Location
	now    func() time.Time
}

// CreateInput carries the fields accepted on voucher creation.
type CreateInput struct {
	PartnerName    string
	Title          string
	Description    *string
	PointCost      int
	ExpiresOn      *time.Time
	RemainingStock *int
	ImageURL       *string
	CreatedBy      *uuid.UUID
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	PartnerName    *string
	Title          *string
	Description    *string
	PointCost      *int
	ExpiresOn      *time.Time
	RemainingStock *int
	ImageURL       *string
}

// RedeemResult is returned to the caller after a successful redemption.
type RedeemResult struct {
	Code             string
	RemainingBalance int64
	Redemption       *models.VoucherRedemption
}

// NewService wires a voucher service with its dependencies.
func NewService(repo Repository, users userGetter, pointsSvc points.Service, tx txRunner, mail mailer.Mailer, logg *logger.Logger, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
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
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:   repo,
		users:  users,
		points: pointsSvc,
		tx:     tx,
		mail:   mail,
		logg:   logg,
		loc:    loc,
		now:    time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Voucher, error) {
	partner := strings.TrimSpace(input.PartnerName)
	title := strings.TrimSpace(input.Title)
	if partner == "" || title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner name and title are required")
	}
	if input.PointCost <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "point cost must be positive")
	}
	if input.RemainingStock != nil && *input.RemainingStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remaining stock cannot be negative")
	}

	voucher := &models.Voucher{
		PartnerName:    partner,
		Title:          title,
		Description:    input.Description,
		PointCost:      input.PointCost,
		ExpiresOn:      input.ExpiresOn,
		RemainingStock: input.RemainingStock,
		ImageURL:       input.ImageURL,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.repo.Create(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, err
	}
	return voucher, nil
}

func (s *service) List(ctx context.Context) ([]models.Voucher, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Voucher, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.PartnerName != nil {
		partner := strings.TrimSpace(*input.PartnerName)
		if partner == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner name cannot be empty")
		}
		updates["partner_name"] = partner
	}
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
	if input.PointCost != nil {
		if *input.PointCost <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "point cost must be positive")
		}
		updates["point_cost"] = *input.PointCost
	}
	if input.ExpiresOn != nil {
		updates["expires_on"] = *input.ExpiresOn
	}
	if input.RemainingStock != nil {
		if *input.RemainingStock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "remaining stock cannot be negative")
		}
		updates["remaining_stock"] = *input.RemainingStock
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
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

// Redeem exchanges points for a voucher code. Preconditions are checked in
// a fixed order and the stock decrement, redemption row, and ledger entry
// commit atomically. Redemption is deliberately not idempotent: each call
// that passes the checks issues a new code and spends points again.
func (s *service) Redeem(ctx context.Context, userID, voucherID uuid.UUID) (*RedeemResult, error) {
	if userID == uuid.Nil || voucherID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and voucher id required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	if user.Role != enums.UserRoleIndividual {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only individual users can redeem vouchers")
	}

	result := &RedeemResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		voucher, err := repo.FindByID(ctx, voucherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
			}
			return err
		}

		if voucher.RemainingStock != nil && *voucher.RemainingStock <= 0 {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "voucher is out of stock")
		}
		if voucher.ExpiresOn != nil && voucher.ExpiresOn.Before(s.today()) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "voucher has expired")
		}

		balance, err := s.points.BalanceOfTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance < int64(voucher.PointCost) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "insufficient point balance")
		}

		decremented, err := repo.DecrementStock(ctx, voucherID)
		if err != nil {
			return err
		}
		if !decremented {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "voucher is out of stock")
		}

		redemption, err := s.createRedemptionWithCode(ctx, repo, userID, voucher)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("redeemed voucher %s", voucher.Title)
		if _, err := s.points.RecordTx(ctx, tx, points.RecordInput{
			UserID:      userID,
			Kind:        enums.PointTransactionKindSpendVoucher,
			Points:      -voucher.PointCost,
			Description: &desc,
			ReferenceID: &redemption.ID,
		}); err != nil {
			return err
		}

		result.Code = redemption.Code
		result.RemainingBalance = balance - int64(voucher.PointCost)
		result.Redemption = redemption
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyRedemption(ctx, user, result)
	return result, nil
}

func (s *service) createRedemptionWithCode(ctx context.Context, repo Repository, userID uuid.UUID, voucher *models.Voucher) (*models.VoucherRedemption, error) {
	var lastErr error
	for attempt := 0; attempt < codeCollisionRetry; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}
		redemption := &models.VoucherRedemption{
			ID:          uuid.New(),
			UserID:      userID,
			VoucherID:   voucher.ID,
			PointsSpent: voucher.PointCost,
			Code:        code,
		}
		if err := repo.CreateRedemption(ctx, redemption); err != nil {
			if db.IsUniqueViolation(err, "") {
				lastErr = err
				continue
			}
			return nil, err
		}
		return redemption, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not generate a unique voucher code")
}

func (s *service) generateCode() (string, error) {
	random, err := security.GenerateCode(codeRandomLen)
	if err != nil {
		return "", err
	}
	epoch := fmt.Sprintf("%d", s.now().Unix())
	if len(epoch) > 6 {
		epoch = epoch[len(epoch)-6:]
	}
	return codePrefix + random + epoch, nil
}

func (s *service) notifyRedemption(ctx context.Context, user *models.User, result *RedeemResult) {
	msg := mailer.Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "Seu voucher ReciclaJá chegou!",
		HTML: fmt.Sprintf("<p>Olá %s,</p><p>Seu código de resgate é <strong>%s</strong>.</p>",
			user.Name, result.Code),
	}
	if err := s.mail.Send(ctx, msg); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("voucher redemption email failed: %v", err))
	}
}

func (s *service) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.VoucherRedemption, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListRedemptionsByUser(ctx, userID)
}

func (s *service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
