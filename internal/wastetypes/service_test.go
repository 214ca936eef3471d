package wastetypes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type fakeRepository struct {
	rows map[uuid.UUID]*models.WasteType
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: map[uuid.UUID]*models.WasteType{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, wasteType *models.WasteType) error {
	copied := *wasteType
	f.rows[wasteType.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.WasteType, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepository) List(ctx context.Context) ([]models.WasteType, error) {
	out := make([]models.WasteType, 0, len(f.rows))
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
	if name, ok := updates["name"].(string); ok {
		row.Name = name
	}
	if desc, ok := updates["description"].(string); ok {
		row.Description = &desc
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
	require.NoError(t, err)
	return svc, repo
}

func TestCreateTrimsName(t *testing.T) {
	svc, repo := newTestService(t)

	wasteType, err := svc.Create(context.Background(), CreateInput{Name: "  Vidro  "})
	require.NoError(t, err)
	require.Equal(t, "Vidro", wasteType.Name)
	require.Len(t, repo.rows, 1)
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateAppliesAllowListedFields(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Papel"})
	require.NoError(t, err)

	name := "Papelão"
	desc := "caixas e embalagens"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Name: &name, Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "Papelão", updated.Name)
	require.NotNil(t, updated.Description)
	require.Equal(t, desc, *updated.Description)
}

func TestUpdateWithoutFieldsFails(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Metal"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdateInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDeleteRemovesRow(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{Name: "Eletrônicos"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.Empty(t, repo.rows)
}
