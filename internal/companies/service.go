package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

// Service exposes company resource operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Company, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// CreateInput carries the fields accepted on company creation.
type CreateInput struct {
	UserID    uuid.UUID
	LegalName string
	TradeName string
	CNPJ      string
	Phone     *string
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	LegalName *string
	TradeName *string
	Phone     *string
}

// NewService wires a company service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Company, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	legalName := strings.TrimSpace(input.LegalName)
	tradeName := strings.TrimSpace(input.TradeName)
	cnpj := strings.TrimSpace(input.CNPJ)
	if legalName == "" || tradeName == "" || cnpj == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "legal name, trade name, and cnpj are required")
	}

	if _, err := s.repo.FindByCNPJ(ctx, cnpj); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cnpj already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company := &models.Company{
		UserID:    input.UserID,
		LegalName: legalName,
		TradeName: tradeName,
		CNPJ:      cnpj,
		Phone:     input.Phone,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, err
	}
	return company, nil
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	company, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, err
	}
	return company, nil
}

func (s *service) List(ctx context.Context) ([]models.Company, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Company, error) {
	updates := map[string]any{}
	if input.LegalName != nil {
		name := strings.TrimSpace(*input.LegalName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "legal name cannot be empty")
		}
		updates["legal_name"] = name
	}
	if input.TradeName != nil {
		name := strings.TrimSpace(*input.TradeName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "trade name cannot be empty")
		}
		updates["trade_name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
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
