package collectionpoints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/addresses"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes collection point operations scoped to a company.
type Service interface {
	Create(ctx context.Context, companyID uuid.UUID, input CreateInput) (*models.CollectionPoint, error)
	Get(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.CollectionPoint, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.CollectionPoint, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WasteTypes(ctx context.Context, id uuid.UUID) ([]models.WasteType, error)
}

type service struct {
	repo        Repository
	addressRepo addresses.Repository
	tx          txRunner
}

// CreateInput carries the fields accepted on collection point creation.
type CreateInput struct {
	Name         string
	OpeningHours *string
	Address      AddressInput
	WasteTypeIDs []uuid.UUID
}

// AddressInput is the inline address payload for a new collection point.
type AddressInput struct {
	Street     string
	Number     string
	Complement *string
	District   string
	City       string
	State      string
	ZipCode    string
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	Name         *string
	OpeningHours *string
	IsActive     *bool
	WasteTypeIDs []uuid.UUID
}

// NewService wires a collection point service with its dependencies.
func NewService(repo Repository, addressRepo addresses.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("collection point repository required")
	}
	if addressRepo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, addressRepo: addressRepo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, companyID uuid.UUID, input CreateInput) (*models.CollectionPoint, error) {
	if companyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateAddress(input.Address); err != nil {
		return nil, err
	}

	point := &models.CollectionPoint{
		ID:           uuid.New(),
		CompanyID:    companyID,
		Name:         name,
		OpeningHours: input.OpeningHours,
		IsActive:     true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		addressRepo := s.addressRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		address := &models.Address{
			ID:         uuid.New(),
			Street:     strings.TrimSpace(input.Address.Street),
			Number:     strings.TrimSpace(input.Address.Number),
			Complement: input.Address.Complement,
			District:   strings.TrimSpace(input.Address.District),
			City:       strings.TrimSpace(input.Address.City),
			State:      strings.TrimSpace(input.Address.State),
			ZipCode:    strings.TrimSpace(input.Address.ZipCode),
		}
		if err := addressRepo.Create(ctx, address); err != nil {
			return err
		}

		point.AddressID = address.ID
		if err := repo.Create(ctx, point); err != nil {
			return err
		}
		return repo.ReplaceWasteTypes(ctx, point.ID, input.WasteTypeIDs)
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error) {
	point, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection point not found")
		}
		return nil, err
	}
	return point, nil
}

func (s *service) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.CollectionPoint, error) {
	if companyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company id required")
	}
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.CollectionPoint, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.OpeningHours != nil {
		updates["opening_hours"] = *input.OpeningHours
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		if input.WasteTypeIDs != nil {
			return repo.ReplaceWasteTypes(ctx, id, input.WasteTypeIDs)
		}
		return nil
	})
	if err != nil {
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

func (s *service) WasteTypes(ctx context.Context, id uuid.UUID) ([]models.WasteType, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListWasteTypes(ctx, id)
}

func validateAddress(input AddressInput) error {
	missing := []string{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"street", input.Street},
		{"number", input.Number},
		{"district", input.District},
		{"city", input.City},
		{"state", input.State},
		{"zip_code", input.ZipCode},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required address fields").WithDetails(missing)
	}
	return nil
}
