package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ddream/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RegistryBlob{}))
	return New(db, zap.NewNop())
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	_, ok := store.Get(ctx, "SPACE")
	require.False(t, ok)

	require.NoError(t, store.Put(ctx, models.CachedGameMeta{
		Ticker:     "SPACE",
		Name:       "Space Race",
		Contract:   "xion1game",
		CreationTx: "ABC123",
	}))

	meta, ok := store.Get(ctx, "SPACE")
	require.True(t, ok)
	require.Equal(t, "Space Race", meta.Name)
	require.Equal(t, "ABC123", meta.CreationTx)
}

func TestPutReplacesWholeEntry(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	require.NoError(t, store.Put(ctx, models.CachedGameMeta{
		Ticker:     "SPACE",
		Name:       "Space Race",
		CreationTx: "ABC123",
	}))
	require.NoError(t, store.Put(ctx, models.CachedGameMeta{
		Ticker: "SPACE",
		Name:   "Space Race II",
	}))

	meta, ok := store.Get(ctx, "SPACE")
	require.True(t, ok)
	require.Equal(t, "Space Race II", meta.Name)
	// No sub-field merge: the old creation tx is gone with the old value.
	require.Empty(t, meta.CreationTx)
}

func TestListSorted(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	for _, ticker := range []string{"ZETA", "ALPHA", "MID"} {
		require.NoError(t, store.Put(ctx, models.CachedGameMeta{Ticker: ticker}))
	}

	require.Equal(t, []string{"ALPHA", "MID", "ZETA"}, store.List(ctx))
}

func TestCorruptPayloadReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	require.NoError(t, store.db.Save(&models.RegistryBlob{
		Key:  blobKey,
		Data: datatypes.JSON([]byte(`{definitely not json`)),
	}).Error)

	require.Empty(t, store.All(ctx))
	_, ok := store.Get(ctx, "SPACE")
	require.False(t, ok)

	// A put over the corrupt payload starts a fresh mapping.
	require.NoError(t, store.Put(ctx, models.CachedGameMeta{Ticker: "SPACE"}))
	require.Equal(t, []string{"SPACE"}, store.List(ctx))
}
