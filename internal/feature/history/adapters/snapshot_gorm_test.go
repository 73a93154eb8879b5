package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/history/domain/entity"
	"portfolio_backend/internal/feature/history/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&SnapshotModel{}), "failed to migrate table")
	return db
}

func fp(v float64) *float64 { return &v }

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

// seedSnapshot creates a history row for the given user.
func seedSnapshot(t *testing.T, db *gorm.DB, userID string, date, createdAt time.Time) *SnapshotModel {
	t.Helper()

	m := &SnapshotModel{
		UserID:             userID,
		Date:               date,
		CreatedAt:          createdAt,
		TotalCurrentValue:  110,
		TotalInvestedValue: 100,
		DailyReturn:        10,
		DailyReturnRate:    10,
	}
	require.NoError(t, db.Create(m).Error, "failed to seed snapshot")
	return m
}

func TestNewSnapshotRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewSnapshotRepository(db)

	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestSnapshotGorm_Latest(t *testing.T) {
	t.Parallel()

	t.Run("returns newest row by created_at", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		repo := NewSnapshotRepository(db)
		base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

		seedSnapshot(t, db, "alice", day(10, 14), base.Add(2*time.Hour))
		newest := seedSnapshot(t, db, "alice", day(10, 14), base.Add(3*time.Hour))
		seedSnapshot(t, db, "alice", day(10, 13), base.Add(-24*time.Hour))
		seedSnapshot(t, db, "bob", day(10, 14), base.Add(5*time.Hour))

		got, err := repo.Latest(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, newest.ID, got.ID)
		assert.Equal(t, "alice", got.UserID)
		assert.True(t, base.Add(3*time.Hour).Equal(got.CreatedAt))
		assert.True(t, day(10, 14).Equal(got.Date))
	})

	t.Run("no rows", func(t *testing.T) {
		t.Parallel()

		repo := NewSnapshotRepository(setupTestDB(t))

		_, err := repo.Latest(context.Background(), "alice")

		assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)
	})
}

func TestSnapshotGorm_InsertAndUpdate(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	createdAt := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	s := &entity.Snapshot{
		UserID:          "alice",
		Date:            day(10, 14),
		CreatedAt:       createdAt,
		TotalCurrent:    1200,
		TotalInvested:   1000,
		DailyReturn:     200,
		DailyReturnRate: 20,
		KRCurrent:       fp(700),
		KRInvested:      fp(600),
		USCurrent:       fp(500),
		USInvested:      fp(400),
	}
	require.NoError(t, repo.Insert(ctx, s))
	require.NotZero(t, s.ID)

	s.TotalCurrent = 900
	s.DailyReturn = -100
	s.DailyReturnRate = -10
	s.KRCurrent = fp(0)
	s.Date = day(10, 20)
	s.CreatedAt = createdAt.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, *s))

	got, err := repo.Latest(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.InDelta(t, 900, got.TotalCurrent, 1e-9)
	assert.InDelta(t, -10, got.DailyReturnRate, 1e-9)
	require.NotNil(t, got.KRCurrent)
	assert.Zero(t, *got.KRCurrent)
	// date と created_at は更新されない
	assert.True(t, day(10, 14).Equal(got.Date))
	assert.True(t, createdAt.Equal(got.CreatedAt))

	var count int64
	require.NoError(t, db.Model(&SnapshotModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSnapshotGorm_Update_MissingRow(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository(setupTestDB(t))

	err := repo.Update(context.Background(), entity.Snapshot{ID: 42, TotalCurrent: 1})

	assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)
}

func TestSnapshotGorm_ListSince(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewSnapshotRepository(db)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	seedSnapshot(t, db, "alice", day(9, 1), base.AddDate(0, -1, 0))
	second := seedSnapshot(t, db, "alice", day(10, 8), base.AddDate(0, 0, 7).Add(time.Hour))
	first := seedSnapshot(t, db, "alice", day(10, 8), base.AddDate(0, 0, 7))
	third := seedSnapshot(t, db, "alice", day(10, 14), base.AddDate(0, 0, 13))
	seedSnapshot(t, db, "bob", day(10, 14), base.AddDate(0, 0, 13))

	tests := []struct {
		name        string
		since       string
		expectedIDs []uint
	}{
		{"inclusive lower bound ordered by created_at", "2026-10-08", []uint{first.ID, second.ID, third.ID}},
		{"later cutoff", "2026-10-09", []uint{third.ID}},
		{"future cutoff", "2026-12-01", []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := repo.ListSince(context.Background(), "alice", tt.since)
			require.NoError(t, err)

			ids := make([]uint, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}
