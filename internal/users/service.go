package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/pkg/config"
	"github.com/reciclaja/reciclaja-backend/pkg/db"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes account registration, profile reads, and the
// allow-listed profile mutations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Profile(ctx context.Context, id uuid.UUID) (*ProfileResult, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        Repository
	companies   companies.Repository
	points      points.Service
	tx          txRunner
	passwordCfg config.PasswordConfig
}

// RegisterInput carries the fields accepted on account creation. Company
// details are required when the role is COMPANY and rejected otherwise.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
	Role     enums.UserRole
	CPF      *string
	Company  *CompanyInput
}

// CompanyInput is the company record created alongside a COMPANY account.
type CompanyInput struct {
	LegalName string
	TradeName string
	CNPJ      string
}

// UpdateInput carries the allow-listed mutable profile fields. Email, role,
// and password never change through this path.
type UpdateInput struct {
	Name  *string
	Phone *string
	CPF   *string
}

// ProfileResult is a user together with the derived points balance.
type ProfileResult struct {
	User    *models.User
	Balance int64
}

// NewService wires a user service with its dependencies.
func NewService(repo Repository, companyRepo companies.Repository, pointsSvc points.Service, tx txRunner, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if companyRepo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		companies:   companyRepo,
		points:      pointsSvc,
		tx:          tx,
		passwordCfg: passwordCfg,
	}, nil
}

// Register creates the account and, for COMPANY accounts, the company row
// in the same transaction. Admin accounts are provisioned out of band.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must have at least 8 characters")
	}
	if input.Role != enums.UserRoleIndividual && input.Role != enums.UserRoleCompany {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be INDIVIDUAL or COMPANY")
	}
	if input.Role == enums.UserRoleCompany && input.Company == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company details are required for company accounts")
	}
	if input.Role != enums.UserRoleCompany && input.Company != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company details are only accepted for company accounts")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.CPF != nil && *input.CPF != "" {
		if _, err := s.repo.FindByCPF(ctx, *input.CPF); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cpf already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Role:         input.Role,
		CPF:          input.CPF,
		IsActive:     true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email or cpf already registered")
			}
			return err
		}
		if input.Company == nil {
			return nil
		}
		company := &models.Company{
			ID:        uuid.New(),
			UserID:    user.ID,
			LegalName: strings.TrimSpace(input.Company.LegalName),
			TradeName: strings.TrimSpace(input.Company.TradeName),
			CNPJ:      strings.TrimSpace(input.Company.CNPJ),
		}
		if company.LegalName == "" || company.CNPJ == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "company legal name and cnpj are required")
		}
		if company.TradeName == "" {
			company.TradeName = company.LegalName
		}
		if err := s.companies.WithTx(tx).Create(ctx, company); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "cnpj already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the user with the balance derived from the ledger.
func (s *service) Profile(ctx context.Context, id uuid.UUID) (*ProfileResult, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.points.BalanceOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{User: user, Balance: balance}, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.User, error) {
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
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.CPF != nil {
		cpf := strings.TrimSpace(*input.CPF)
		if cpf == "" {
			// clearing writes NULL, an empty string would collide on the
			// unique index for the next user who clears theirs
			updates["cpf"] = nil
		} else {
			if existing, err := s.repo.FindByCPF(ctx, cpf); err == nil && existing.ID != id {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "cpf already registered")
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			updates["cpf"] = cpf
		}
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cpf already registered")
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate flips is_active off. Rows are kept so the ledger and
// redemption history stay intact.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, map[string]any{"is_active": false})
}
