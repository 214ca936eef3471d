package wastetypes

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

// Service exposes waste type catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.WasteType, error)
	Get(ctx context.Context, id uuid.UUID) (*models.WasteType, error)
	List(ctx context.Context) ([]models.WasteType, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.WasteType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// CreateInput carries the fields accepted on waste type creation.
type CreateInput struct {
	Name        string
	Description *string
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	Name        *string
	Description *string
}

// NewService wires a waste type service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("waste type repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.WasteType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	wasteType := &models.WasteType{
		ID:          uuid.New(),
		Name:        name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, wasteType); err != nil {
		return nil, err
	}
	return wasteType, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.WasteType, error) {
	wasteType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "waste type not found")
		}
		return nil, err
	}
	return wasteType, nil
}

func (s *service) List(ctx context.Context) ([]models.WasteType, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.WasteType, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
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
