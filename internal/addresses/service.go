package addresses

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

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes address CRUD scoped to a user.
type Service interface {
	CreateForUser(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Address, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	UpdateForUser(ctx context.Context, userID, addressID uuid.UUID, input UpdateInput) (*models.Address, error)
	RemoveFromUser(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreateInput carries address fields plus the optional link metadata.
type CreateInput struct {
	Street     string
	Number     string
	Complement *string
	District   string
	City       string
	State      string
	ZipCode    string
	Label      *string
	IsPrimary  bool
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	Street     *string
	Number     *string
	Complement *string
	District   *string
	City       *string
	State      *string
	ZipCode    *string
}

// NewService wires an address service with its repository and transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateForUser(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	address := &models.Address{
		ID:         uuid.New(),
		Street:     strings.TrimSpace(input.Street),
		Number:     strings.TrimSpace(input.Number),
		Complement: input.Complement,
		District:   strings.TrimSpace(input.District),
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		ZipCode:    strings.TrimSpace(input.ZipCode),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, address); err != nil {
			return err
		}
		link := &models.UserAddress{
			UserID:    userID,
			AddressID: address.ID,
			Label:     input.Label,
			IsPrimary: input.IsPrimary,
		}
		return repo.LinkToUser(ctx, link)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UpdateForUser(ctx context.Context, userID, addressID uuid.UUID, input UpdateInput) (*models.Address, error) {
	if _, err := s.findLink(ctx, userID, addressID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setTrimmed := func(column string, value *string) error {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, column+" cannot be empty")
		}
		updates[column] = trimmed
		return nil
	}

	for _, field := range []struct {
		column string
		value  *string
	}{
		{"street", input.Street},
		{"number", input.Number},
		{"district", input.District},
		{"city", input.City},
		{"state", input.State},
		{"zip_code", input.ZipCode},
	} {
		if err := setTrimmed(field.column, field.value); err != nil {
			return nil, err
		}
	}
	if input.Complement != nil {
		updates["complement"] = *input.Complement
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, addressID, updates); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, addressID)
}

func (s *service) RemoveFromUser(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.findLink(ctx, userID, addressID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UnlinkFromUser(ctx, userID, addressID); err != nil {
			return err
		}
		return repo.Delete(ctx, addressID)
	})
}

func (s *service) findLink(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	if userID == uuid.Nil || addressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and address id required")
	}
	link, err := s.repo.FindLink(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, err
	}
	return link, nil
}

func validateCreate(input CreateInput) error {
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
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").WithDetails(missing)
	}
	return nil
}
