package points

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
)

func setupPointsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS point_transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  points INTEGER NOT NULL,
  description TEXT,
  reference_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, userID uuid.UUID, kind enums.PointTransactionKind, points int, createdAt time.Time) models.PointTransaction {
	t.Helper()
	entry := models.PointTransaction{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Points:    points,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestRepository_SumByUser(t *testing.T) {
	db := setupPointsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()
	now := time.Now()

	seedEntry(t, db, userID, enums.PointTransactionKindEarnCode, 50, now)
	seedEntry(t, db, userID, enums.PointTransactionKindEarnCampaign, 30, now)
	seedEntry(t, db, userID, enums.PointTransactionKindSpendVoucher, -60, now)
	seedEntry(t, db, otherID, enums.PointTransactionKindEarnCode, 999, now)

	total, err := repo.SumByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)
}

func TestRepository_SumByUserEmpty(t *testing.T) {
	db := setupPointsTestDB(t)
	repo := NewRepository(db)

	total, err := repo.SumByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRepository_ListByUserOrdersNewestFirst(t *testing.T) {
	db := setupPointsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().Add(-time.Hour)

	oldest := seedEntry(t, db, userID, enums.PointTransactionKindEarnCode, 10, base)
	middle := seedEntry(t, db, userID, enums.PointTransactionKindEarnCode, 20, base.Add(10*time.Minute))
	newest := seedEntry(t, db, userID, enums.PointTransactionKindEarnCode, 30, base.Add(20*time.Minute))

	entries, err := repo.ListByUser(ctx, userID, nil, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, newest.ID, entries[0].ID)
	assert.Equal(t, middle.ID, entries[1].ID)
	assert.Equal(t, oldest.ID, entries[2].ID)
}

func TestRepository_LastPositiveByKindAndReference(t *testing.T) {
	db := setupPointsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	campaignID := uuid.New()
	base := time.Now().Add(-time.Hour)

	first := models.PointTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        enums.PointTransactionKindEarnCampaign,
		Points:      40,
		ReferenceID: &campaignID,
		CreatedAt:   base,
	}
	require.NoError(t, db.Create(&first).Error)

	reversal := models.PointTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        enums.PointTransactionKindEarnCampaign,
		Points:      -40,
		ReferenceID: &campaignID,
		CreatedAt:   base.Add(5 * time.Minute),
	}
	require.NoError(t, db.Create(&reversal).Error)

	second := models.PointTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        enums.PointTransactionKindEarnCampaign,
		Points:      60,
		ReferenceID: &campaignID,
		CreatedAt:   base.Add(10 * time.Minute),
	}
	require.NoError(t, db.Create(&second).Error)

	got, err := repo.LastPositiveByKindAndReference(ctx, userID, string(enums.PointTransactionKindEarnCampaign), campaignID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, 60, got.Points)
}

func TestRepository_LastPositiveNotFound(t *testing.T) {
	db := setupPointsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.LastPositiveByKindAndReference(context.Background(), uuid.New(), string(enums.PointTransactionKindEarnCampaign), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
