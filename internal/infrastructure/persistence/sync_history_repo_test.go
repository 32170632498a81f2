package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SyncHistoryModelSQLite is a SQLite-compatible version of SyncHistoryModel for testing
type SyncHistoryModelSQLite struct {
	ID           string `gorm:"primaryKey"`
	Kind         string `gorm:"not null;index"`
	Status       string `gorm:"not null;index"`
	FiltersJSON  string `gorm:"column:filters"`
	StartedAt    time.Time
	CompletedAt  *time.Time
	TotalItems   int `gorm:"not null;default:0"`
	SuccessCount int `gorm:"not null;default:0"`
	ErrorCount   int `gorm:"not null;default:0"`
	InitiatedBy  string
	ErrorMessage string
}

func (SyncHistoryModelSQLite) TableName() string {
	return "sync_histories"
}

// SyncDetailModelSQLite is a SQLite-compatible version of SyncDetailModel for testing
type SyncDetailModelSQLite struct {
	ID           string `gorm:"primaryKey"`
	HistoryID    string `gorm:"not null;index"`
	Identifier   string `gorm:"not null"`
	Action       string `gorm:"not null"`
	Status       string `gorm:"not null"`
	ErrorMessage string
	Position     int `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (SyncDetailModelSQLite) TableName() string {
	return "sync_details"
}

func setupSyncHistoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&SyncHistoryModelSQLite{}, &SyncDetailModelSQLite{})
	require.NoError(t, err)

	return db
}

func TestGormSyncHistoryRepository_CreateAndFindByID(t *testing.T) {
	db := setupSyncHistoryTestDB(t)
	repo := NewGormSyncHistoryRepository(db)
	ctx := context.Background()

	t.Run("round-trips a pending run", func(t *testing.T) {
		history := connector.NewSyncHistory(connector.SyncKindPush, connector.ItemFilter{UpdatedSinceDays: 7}, "admin")

		require.NoError(t, repo.Create(ctx, history))

		found, err := repo.FindByID(ctx, history.ID)
		require.NoError(t, err)
		assert.Equal(t, connector.SyncKindPush, found.Kind)
		assert.Equal(t, connector.RunStatusPending, found.Status)
		assert.Equal(t, "admin", found.InitiatedBy)
		assert.Equal(t, 7, found.Filters.UpdatedSinceDays)
		assert.Nil(t, found.CompletedAt)
	})

	t.Run("returns ErrHistoryNotFound for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, connector.ErrHistoryNotFound)
	})
}

func TestGormSyncHistoryRepository_Update(t *testing.T) {
	db := setupSyncHistoryTestDB(t)
	repo := NewGormSyncHistoryRepository(db)
	ctx := context.Background()

	t.Run("persists lifecycle transitions and counters", func(t *testing.T) {
		history := connector.NewSyncHistory(connector.SyncKindPull, connector.ItemFilter{}, "admin")
		require.NoError(t, repo.Create(ctx, history))

		require.NoError(t, history.MarkRunning())
		history.TotalItems = 3
		require.NoError(t, repo.Update(ctx, history))

		require.NoError(t, history.MarkCompleted())
		require.NoError(t, repo.Update(ctx, history))

		found, err := repo.FindByID(ctx, history.ID)
		require.NoError(t, err)
		assert.Equal(t, connector.RunStatusCompleted, found.Status)
		assert.Equal(t, 3, found.TotalItems)
		assert.NotNil(t, found.CompletedAt)
	})

	t.Run("returns ErrHistoryNotFound for unknown run", func(t *testing.T) {
		history := connector.NewSyncHistory(connector.SyncKindPush, connector.ItemFilter{}, "admin")
		err := repo.Update(ctx, history)
		assert.ErrorIs(t, err, connector.ErrHistoryNotFound)
	})
}

func TestGormSyncHistoryRepository_AppendDetail(t *testing.T) {
	db := setupSyncHistoryTestDB(t)
	repo := NewGormSyncHistoryRepository(db)
	ctx := context.Background()

	t.Run("details load with the run in recording order", func(t *testing.T) {
		history := connector.NewSyncHistory(connector.SyncKindPush, connector.ItemFilter{}, "admin")
		require.NoError(t, repo.Create(ctx, history))

		first := connector.NewSyncDetail(history.ID, "SKU-1")
		first.Succeed(connector.ActionCreate)
		second := connector.NewSyncDetail(history.ID, "SKU-2")
		second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
		second.Fail("remote platform error: 500")

		require.NoError(t, repo.AppendDetail(ctx, first))
		require.NoError(t, repo.AppendDetail(ctx, second))

		found, err := repo.FindByID(ctx, history.ID)
		require.NoError(t, err)
		require.Len(t, found.Details, 2)
		assert.Equal(t, "SKU-1", found.Details[0].Identifier)
		assert.Equal(t, connector.DetailStatusSuccess, found.Details[0].Status)
		assert.Equal(t, "SKU-2", found.Details[1].Identifier)
		assert.Equal(t, connector.DetailStatusError, found.Details[1].Status)
		assert.Equal(t, "remote platform error: 500", found.Details[1].ErrorMessage)
	})

	t.Run("recording order survives identical timestamps", func(t *testing.T) {
		history := connector.NewSyncHistory(connector.SyncKindPush, connector.ItemFilter{}, "admin")
		require.NoError(t, repo.Create(ctx, history))

		// A tight loop can stamp several details in the same instant;
		// the position column keeps them ordered anyway.
		stamp := time.Now()
		for i, sku := range []string{"SKU-3", "SKU-1", "SKU-2"} {
			detail := connector.NewSyncDetail(history.ID, sku)
			detail.Succeed(connector.ActionUpdate)
			detail.CreatedAt = stamp
			history.RecordDetail(detail)
			require.Equal(t, i, detail.Position)
			require.NoError(t, repo.AppendDetail(ctx, detail))
		}

		found, err := repo.FindByID(ctx, history.ID)
		require.NoError(t, err)
		require.Len(t, found.Details, 3)
		assert.Equal(t, "SKU-3", found.Details[0].Identifier)
		assert.Equal(t, "SKU-1", found.Details[1].Identifier)
		assert.Equal(t, "SKU-2", found.Details[2].Identifier)
	})
}

func TestGormSyncHistoryRepository_FindRecent(t *testing.T) {
	db := setupSyncHistoryTestDB(t)
	repo := NewGormSyncHistoryRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		kind := connector.SyncKindPush
		if i == 1 {
			kind = connector.SyncKindPull
		}
		history := connector.NewSyncHistory(kind, connector.ItemFilter{}, "admin")
		history.StartedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, history))
	}

	t.Run("returns newest first", func(t *testing.T) {
		histories, err := repo.FindRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, histories, 3)
		assert.True(t, histories[0].StartedAt.After(histories[1].StartedAt))
		assert.True(t, histories[1].StartedAt.After(histories[2].StartedAt))
	})

	t.Run("honors the limit", func(t *testing.T) {
		histories, err := repo.FindRecent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, histories, 2)
	})

	t.Run("filters by kind", func(t *testing.T) {
		histories, err := repo.FindByKind(ctx, connector.SyncKindPull, 10)
		require.NoError(t, err)
		require.Len(t, histories, 1)
		assert.Equal(t, connector.SyncKindPull, histories[0].Kind)
	})
}
