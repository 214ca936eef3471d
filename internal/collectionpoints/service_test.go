package collectionpoints

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/addresses"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	points     map[uuid.UUID]*models.CollectionPoint
	wasteTypes map[uuid.UUID][]uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		points:     map[uuid.UUID]*models.CollectionPoint{},
		wasteTypes: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, point *models.CollectionPoint) error {
	copied := *point
	f.points[point.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CollectionPoint, error) {
	row, ok := f.points[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.CollectionPoint, error) {
	out := []models.CollectionPoint{}
	for _, row := range f.points {
		if row.CompanyID == companyID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListActive(ctx context.Context) ([]models.CollectionPoint, error) {
	out := []models.CollectionPoint{}
	for _, row := range f.points {
		if row.IsActive {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	row, ok := f.points[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		row.Name = name
	}
	if active, ok := updates["is_active"].(bool); ok {
		row.IsActive = active
	}
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.points, id)
	return nil
}

func (f *fakeRepository) ReplaceWasteTypes(ctx context.Context, pointID uuid.UUID, wasteTypeIDs []uuid.UUID) error {
	f.wasteTypes[pointID] = wasteTypeIDs
	return nil
}

func (f *fakeRepository) ListWasteTypes(ctx context.Context, pointID uuid.UUID) ([]models.WasteType, error) {
	out := []models.WasteType{}
	for _, id := range f.wasteTypes[pointID] {
		out = append(out, models.WasteType{ID: id})
	}
	return out, nil
}

type fakeAddressRepository struct {
	created int
}

func (f *fakeAddressRepository) WithTx(tx *gorm.DB) addresses.Repository { return f }

func (f *fakeAddressRepository) Create(ctx context.Context, address *models.Address) error {
	f.created++
	return nil
}

func (f *fakeAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAddressRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (f *fakeAddressRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeAddressRepository) LinkToUser(ctx context.Context, link *models.UserAddress) error {
	return nil
}

func (f *fakeAddressRepository) UnlinkFromUser(ctx context.Context, userID, addressID uuid.UUID) error {
	return nil
}

func (f *fakeAddressRepository) FindLink(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return nil, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository, *fakeAddressRepository) {
	t.Helper()
	repo := newFakeRepository()
	addressRepo := &fakeAddressRepository{}
	svc, err := NewService(repo, addressRepo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, addressRepo
}

func validAddress() AddressInput {
	return AddressInput{
		Street:   "Rua Verde",
		Number:   "55",
		District: "Batel",
		City:     "Curitiba",
		State:    "PR",
		ZipCode:  "80420-000",
	}
}

func TestCreateStartsActiveWithAddress(t *testing.T) {
	svc, repo, addressRepo := newTestService(t)
	companyID := uuid.New()
	wasteTypeID := uuid.New()

	point, err := svc.Create(context.Background(), companyID, CreateInput{
		Name:         "Ecoponto Batel",
		Address:      validAddress(),
		WasteTypeIDs: []uuid.UUID{wasteTypeID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !point.IsActive {
		t.Fatal("new point must start active")
	}
	if addressRepo.created != 1 {
		t.Fatalf("expected one address row, got %d", addressRepo.created)
	}
	if got := repo.wasteTypes[point.ID]; len(got) != 1 || got[0] != wasteTypeID {
		t.Fatalf("expected waste type link, got %v", got)
	}
}

func TestCreateValidatesAddress(t *testing.T) {
	svc, _, _ := newTestService(t)

	address := validAddress()
	address.City = ""

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{Name: "Ecoponto", Address: address})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateReplacesWasteTypes(t *testing.T) {
	svc, repo, _ := newTestService(t)
	companyID := uuid.New()

	point, err := svc.Create(context.Background(), companyID, CreateInput{
		Name:         "Ecoponto Centro",
		Address:      validAddress(),
		WasteTypeIDs: []uuid.UUID{uuid.New()},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	replacement := []uuid.UUID{uuid.New(), uuid.New()}
	if _, err := svc.Update(context.Background(), point.ID, UpdateInput{WasteTypeIDs: replacement}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := repo.wasteTypes[point.ID]; len(got) != 2 {
		t.Fatalf("expected replaced waste types, got %v", got)
	}
}

func TestDeactivateHidesFromActiveList(t *testing.T) {
	svc, repo, _ := newTestService(t)
	companyID := uuid.New()

	point, err := svc.Create(context.Background(), companyID, CreateInput{
		Name:    "Ecoponto Sul",
		Address: validAddress(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inactive := false
	if _, err := svc.Update(context.Background(), point.ID, UpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	active, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active points, got %d", len(active))
	}
}
