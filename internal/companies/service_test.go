package companies

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type fakeRepository struct {
	rows map[uuid.UUID]*models.Company
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: map[uuid.UUID]*models.Company{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	copied := *company
	f.rows[company.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	for _, row := range f.rows {
		if row.UserID == userID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByCNPJ(ctx context.Context, cnpj string) (*models.Company, error) {
	for _, row := range f.rows {
		if row.CNPJ == cnpj {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.Company, error) {
	out := make([]models.Company, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["legal_name"].(string); ok {
		row.LegalName = name
	}
	if name, ok := updates["trade_name"].(string); ok {
		row.TradeName = name
	}
	if phone, ok := updates["phone"].(string); ok {
		row.Phone = &phone
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func validInput() CreateInput {
	return CreateInput{
		UserID:    uuid.New(),
		LegalName: "EcoColeta Serviços Ambientais LTDA",
		TradeName: "EcoColeta",
		CNPJ:      "12.345.678/0001-90",
	}
}

func TestCreateCompany(t *testing.T) {
	svc, repo := newTestService(t)

	company, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.rows))
	}
	if company.TradeName != "EcoColeta" {
		t.Fatalf("unexpected trade name %q", company.TradeName)
	}
}

func TestCreateRejectsDuplicateCNPJ(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("Create: %v", err)
	}

	input.UserID = uuid.New()
	_, err := svc.Create(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateRequiresNamesAndCNPJ(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.CNPJ = "  "
	_, err := svc.Create(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAllowListedFields(t *testing.T) {
	svc, _ := newTestService(t)

	company, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	trade := "EcoColeta Sul"
	updated, err := svc.Update(context.Background(), company.ID, UpdateInput{TradeName: &trade})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.TradeName != trade {
		t.Fatalf("expected trade name %q, got %q", trade, updated.TradeName)
	}
	if updated.CNPJ != company.CNPJ {
		t.Fatal("cnpj must not change on update")
	}
}

func TestGetByUser(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("Create: %v", err)
	}

	company, err := svc.GetByUser(context.Background(), input.UserID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if company.UserID != input.UserID {
		t.Fatal("wrong company returned")
	}

	if _, err := svc.GetByUser(context.Background(), uuid.New()); pkgerrors.As(err) == nil {
		t.Fatal("expected not found for unknown user")
	}
}
