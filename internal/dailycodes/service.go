package dailycodes

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
	"github.com/reciclaja/reciclaja-backend/pkg/security"
)

const (
	codePrefix    = "ECO-"
	codeRandomLen = 4

	uniquePointDayConstraint = "ux_daily_codes_point_day"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type activePointLister interface {
	ListActive(ctx context.Context) ([]models.CollectionPoint, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error)
}

// Service exposes daily code redemption and the two issuance paths: the
// lazy read-side fallback and the bulk job used by the scheduler.
type Service interface {
	Redeem(ctx context.Context, userID uuid.UUID, code string) (*RedeemResult, error)
	EnsureTodayCode(ctx context.Context, pointID uuid.UUID) (*models.DailyCode, error)
	IssueTodayCodes(ctx context.Context) (int, error)
}

type service struct {
	repo       Repository
	pointsRepo activePointLister
	points     points.Service
	tx         txRunner
	codeValue  int
	loc        *time.Location
	now        func() time.Time
}

// RedeemResult is returned after a successful daily code scan.
type RedeemResult struct {
	PointsAwarded int
	Redemption    *models.DailyCodeRedemption
}

// NewService wires a daily code service with its dependencies.
func NewService(repo Repository, collectionPoints activePointLister, pointsSvc points.Service, tx txRunner, codeValue int, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("daily code repository required")
	}
	if collectionPoints == nil {
		return nil, fmt.Errorf("collection point lister required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if codeValue <= 0 {
		return nil, fmt.Errorf("code value must be positive")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:       repo,
		pointsRepo: collectionPoints,
		points:     pointsSvc,
		tx:         tx,
		codeValue:  codeValue,
		loc:        loc,
		now:        time.Now,
	}, nil
}

// Redeem awards a daily code's points to the user. A code is valid only on
// its calendar day, and each user can redeem a given code once.
func (s *service) Redeem(ctx context.Context, userID uuid.UUID, code string) (*RedeemResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	result := &RedeemResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		dailyCode, err := repo.FindByCodeAndDate(ctx, code, s.today())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "code not found or not valid today")
			}
			return err
		}

		if _, err := repo.FindRedemption(ctx, userID, dailyCode.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, "code already redeemed")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		redemption := &models.DailyCodeRedemption{
			ID:          uuid.New(),
			UserID:      userID,
			DailyCodeID: dailyCode.ID,
		}
		if err := repo.CreateRedemption(ctx, redemption); err != nil {
			if db.IsUniqueViolation(err, "ux_daily_code_redemptions_user_code") {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "code already redeemed")
			}
			return err
		}

		desc := fmt.Sprintf("daily code %s", dailyCode.Code)
		if _, err := s.points.RecordTx(ctx, tx, points.RecordInput{
			UserID:      userID,
			Kind:        enums.PointTransactionKindEarnCode,
			Points:      dailyCode.PointsValue,
			Description: &desc,
			ReferenceID: &redemption.ID,
		}); err != nil {
			return err
		}

		result.PointsAwarded = dailyCode.PointsValue
		result.Redemption = redemption
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EnsureTodayCode returns today's code for a collection point, creating one
// when the scheduler has not issued it yet. The unique (point, day) index
// arbitrates races with the job: on violation we re-fetch the winner.
func (s *service) EnsureTodayCode(ctx context.Context, pointID uuid.UUID) (*models.DailyCode, error) {
	if pointID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection point id required")
	}

	point, err := s.pointsRepo.FindByID(ctx, pointID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection point not found")
		}
		return nil, err
	}
	if !point.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "collection point is not active")
	}

	today := s.today()
	existing, err := s.repo.FindByPointAndDate(ctx, pointID, today)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := s.newCode(pointID, today)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCode(ctx, code); err != nil {
		if db.IsUniqueViolation(err, uniquePointDayConstraint) {
			return s.repo.FindByPointAndDate(ctx, pointID, today)
		}
		return nil, err
	}
	return code, nil
}

// IssueTodayCodes creates today's code for every active collection point
// that does not have one yet. The whole batch runs in one transaction, so
// any failure aborts all issuance for this run.
func (s *service) IssueTodayCodes(ctx context.Context) (int, error) {
	today := s.today()
	issued := 0

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		activePoints, err := s.pointsRepo.ListActive(ctx)
		if err != nil {
			return err
		}

		for _, point := range activePoints {
			if _, err := repo.FindByPointAndDate(ctx, point.ID, today); err == nil {
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			code, err := s.newCode(point.ID, today)
			if err != nil {
				return err
			}
			if err := repo.CreateCode(ctx, code); err != nil {
				return err
			}
			issued++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

func (s *service) newCode(pointID uuid.UUID, validOn time.Time) (*models.DailyCode, error) {
	random, err := security.GenerateCode(codeRandomLen)
	if err != nil {
		return nil, err
	}
	return &models.DailyCode{
		ID:                uuid.New(),
		CollectionPointID: pointID,
		Code:              codePrefix + random,
		ValidOn:           validOn,
		PointsValue:       s.codeValue,
	}, nil
}

func (s *service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
