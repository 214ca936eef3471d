package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/pkg/config"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/pagination"
	"github.com/reciclaja/reciclaja-backend/pkg/security"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	users map[uuid.UUID]*models.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByCPF(ctx context.Context, cpf string) (*models.User, error) {
	for _, u := range f.users {
		if u.CPF != nil && *u.CPF == cpf {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"]; ok {
		user.Name = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		phone := v.(string)
		user.Phone = &phone
	}
	if v, ok := updates["cpf"]; ok {
		if v == nil {
			user.CPF = nil
		} else {
			cpf := v.(string)
			user.CPF = &cpf
		}
	}
	if v, ok := updates["is_active"]; ok {
		user.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

type fakeCompanyRepository struct {
	companies map[uuid.UUID]*models.Company
}

func newFakeCompanyRepository() *fakeCompanyRepository {
	return &fakeCompanyRepository{companies: map[uuid.UUID]*models.Company{}}
}

func (f *fakeCompanyRepository) WithTx(tx *gorm.DB) companies.Repository { return f }

func (f *fakeCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	f.companies[company.ID] = company
	return nil
}

func (f *fakeCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if c, ok := f.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCompanyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	for _, c := range f.companies {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCompanyRepository) FindByCNPJ(ctx context.Context, cnpj string) (*models.Company, error) {
	for _, c := range f.companies {
		if c.CNPJ == cnpj {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	return nil, nil
}

func (f *fakeCompanyRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.companies, id)
	return nil
}

type fakePointsService struct {
	balances map[uuid.UUID]int64
}

func (f *fakePointsService) Record(ctx context.Context, input points.RecordInput) (*models.PointTransaction, error) {
	return nil, nil
}

func (f *fakePointsService) RecordTx(ctx context.Context, tx *gorm.DB, input points.RecordInput) (*models.PointTransaction, error) {
	return nil, nil
}

func (f *fakePointsService) BalanceOf(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.balances[userID], nil
}

func (f *fakePointsService) BalanceOfTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	return f.BalanceOf(ctx, userID)
}

func (f *fakePointsService) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, string, error) {
	return nil, "", nil
}

func (f *fakePointsService) LastAwardTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.PointTransactionKind, referenceID uuid.UUID) (*models.PointTransaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T) (Service, *fakeRepository, *fakeCompanyRepository, *fakePointsService) {
	t.Helper()
	repo := newFakeRepository()
	companyRepo := newFakeCompanyRepository()
	pts := &fakePointsService{balances: map[uuid.UUID]int64{}}
	svc, err := NewService(repo, companyRepo, pts, fakeTxRunner{}, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo, companyRepo, pts
}

func individualInput() RegisterInput {
	return RegisterInput{
		Name:     "Joana Silva",
		Email:    "Joana@Example.com",
		Password: "correct-horse",
		Role:     enums.UserRoleIndividual,
	}
}

func TestService_RegisterIndividual(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), individualInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "joana@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Role != enums.UserRoleIndividual || !user.IsActive {
		t.Fatalf("unexpected user state: %+v", user)
	}
	ok, err := security.VerifyPassword("correct-horse", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repo.users))
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), individualInput()); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	_, err := svc.Register(context.Background(), individualInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestService_RegisterCompanyCreatesCompany(t *testing.T) {
	svc, _, companyRepo, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Recicla Verde LTDA",
		Email:    "contato@reciclaverde.com.br",
		Password: "correct-horse",
		Role:     enums.UserRoleCompany,
		Company: &CompanyInput{
			LegalName: "Recicla Verde LTDA",
			TradeName: "Recicla Verde",
			CNPJ:      "12345678000190",
		},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	company, err := companyRepo.FindByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("expected company row, got %v", err)
	}
	if company.CNPJ != "12345678000190" {
		t.Fatalf("unexpected company: %+v", company)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "correct-horse", Role: enums.UserRoleIndividual}},
		{"short password", RegisterInput{Name: "Joana", Email: "a@b.com", Password: "short", Role: enums.UserRoleIndividual}},
		{"admin role rejected", RegisterInput{Name: "Joana", Email: "a@b.com", Password: "correct-horse", Role: enums.UserRoleAdmin}},
		{"company without details", RegisterInput{Name: "Empresa", Email: "a@b.com", Password: "correct-horse", Role: enums.UserRoleCompany}},
		{"individual with company details", RegisterInput{Name: "Joana", Email: "a@b.com", Password: "correct-horse", Role: enums.UserRoleIndividual, Company: &CompanyInput{LegalName: "X", CNPJ: "1"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_ProfileIncludesBalance(t *testing.T) {
	svc, _, _, pts := newTestService(t)

	user, err := svc.Register(context.Background(), individualInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	pts.balances[user.ID] = 230

	profile, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Profile error: %v", err)
	}
	if profile.Balance != 230 {
		t.Fatalf("expected balance 230, got %d", profile.Balance)
	}
	if profile.User.ID != user.ID {
		t.Fatal("profile should carry the user")
	}
}

func TestService_UpdateRejectsTakenCPF(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	cpf := "11122233344"
	first := individualInput()
	first.CPF = &cpf
	if _, err := svc.Register(context.Background(), first); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	second := individualInput()
	second.Email = "outra@example.com"
	other, err := svc.Register(context.Background(), second)
	if err != nil {
		t.Fatalf("second Register error: %v", err)
	}

	_, err = svc.Update(context.Background(), other.ID, UpdateInput{CPF: &cpf})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestService_UpdateClearsCPFToNull(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	firstCPF := "11122233344"
	first := individualInput()
	first.CPF = &firstCPF
	one, err := svc.Register(context.Background(), first)
	if err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	secondCPF := "55566677788"
	second := individualInput()
	second.Email = "outra@example.com"
	second.CPF = &secondCPF
	two, err := svc.Register(context.Background(), second)
	if err != nil {
		t.Fatalf("second Register error: %v", err)
	}

	// both users clear their cpf; the column must go back to NULL so the
	// unique index never sees two identical empty values
	empty := ""
	if _, err := svc.Update(context.Background(), one.ID, UpdateInput{CPF: &empty}); err != nil {
		t.Fatalf("first clear error: %v", err)
	}
	if _, err := svc.Update(context.Background(), two.ID, UpdateInput{CPF: &empty}); err != nil {
		t.Fatalf("second clear error: %v", err)
	}

	if repo.users[one.ID].CPF != nil || repo.users[two.ID].CPF != nil {
		t.Fatalf("expected cleared cpf to be nil, got %v and %v", repo.users[one.ID].CPF, repo.users[two.ID].CPF)
	}
}

func TestService_Deactivate(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	user, err := svc.Register(context.Background(), individualInput())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := svc.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("Deactivate error: %v", err)
	}
	if repo.users[user.ID].IsActive {
		t.Fatal("expected user to be inactive")
	}
}
