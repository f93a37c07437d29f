package extraction

import (
	"context"
	"encoding/json"
	"testing"

	"listing-vault/feature/vault"
	"listing-vault/feature/vault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupVault(t *testing.T) *vault.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store, err := vault.NewStore(db)
	require.NoError(t, err)
	return store
}

func remoteItem(id, title, amount, description string) *RemoteListing {
	return &RemoteListing{
		ID:          json.Number(id),
		Title:       title,
		Description: description,
		Price:       models.Price{Amount: amount, CurrencyCode: "EUR"},
		Photos:      models.Photos{{URL: "http://img/0.jpg"}},
		CreatedAtTS: 1700000000,
	}
}

func TestNormalizeEpochMillis(t *testing.T) {
	assert.Equal(t, int64(1700000000000), normalizeEpochMillis(1700000000))
	assert.Equal(t, int64(1700000000000), normalizeEpochMillis(1700000000000))
	assert.Equal(t, int64(0), normalizeEpochMillis(0))
}

func TestReconciler_CreatesNewRecord(t *testing.T) {
	store := setupVault(t)
	r := NewReconciler(store, zap.NewNop())
	ctx := context.Background()

	l, created, err := r.Reconcile(ctx, remoteItem("111", "Jacket", "10", "warm"))
	require.NoError(t, err)
	assert.True(t, created)

	assert.NotEmpty(t, l.LocalID)
	require.NotNil(t, l.ExternalID)
	assert.Equal(t, "111", *l.ExternalID)
	assert.Equal(t, models.StatusPublished, l.PublicationStatus)
	assert.Nil(t, l.DeletionDate)
	assert.Nil(t, l.UpdatedAt)
	assert.NotZero(t, l.AddedAt)
	assert.Equal(t, int64(1700000000000), l.CreatedAtRemote, "seconds normalized to millis")
}

func TestReconciler_DedupByExternalID(t *testing.T) {
	store := setupVault(t)
	r := NewReconciler(store, zap.NewNop())
	ctx := context.Background()

	first, created, err := r.Reconcile(ctx, remoteItem("111", "Jacket", "10", "warm"))
	require.NoError(t, err)
	require.True(t, created)

	// Same external id comes back later with an edited description.
	second, created, err := r.Reconcile(ctx, remoteItem("111", "Jacket", "10", "warm, worn once"))
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, first.LocalID, second.LocalID)
	assert.Equal(t, "warm, worn once", second.Description)
	assert.NotNil(t, second.UpdatedAt)
	assert.Equal(t, first.AddedAt, second.AddedAt)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReconciler_Idempotent(t *testing.T) {
	store := setupVault(t)
	r := NewReconciler(store, zap.NewNop())
	ctx := context.Background()

	items := []*RemoteListing{
		remoteItem("111", "Jacket", "10", "warm"),
		remoteItem("222", "Coat", "25", "long"),
	}

	for _, it := range items {
		_, _, err := r.Reconcile(ctx, it)
		require.NoError(t, err)
	}
	for _, it := range items {
		_, created, err := r.Reconcile(ctx, it)
		require.NoError(t, err)
		assert.False(t, created)
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestReconciler_SimilarityFallback(t *testing.T) {
	store := setupVault(t)
	r := NewReconciler(store, zap.NewNop())
	ctx := context.Background()

	t.Run("ExactTripleMerges", func(t *testing.T) {
		first, _, err := r.Reconcile(ctx, remoteItem("", "Jacket", "10", "warm"))
		require.NoError(t, err)

		// Item returns with an external id but identical triple.
		second, created, err := r.Reconcile(ctx, remoteItem("111", "Jacket", "10", "warm"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.LocalID, second.LocalID)
		require.NotNil(t, second.ExternalID)
		assert.Equal(t, "111", *second.ExternalID)
	})

	t.Run("DifferingFieldCreatesSecondRecord", func(t *testing.T) {
		_, created, err := r.Reconcile(ctx, remoteItem("", "Jacket", "10", "warm but different"))
		require.NoError(t, err)
		assert.True(t, created)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestReconciler_MergePreservesLocalFields(t *testing.T) {
	store := setupVault(t)
	r := NewReconciler(store, zap.NewNop())
	ctx := context.Background()

	l, _, err := r.Reconcile(ctx, remoteItem("111", "Jacket", "10", "warm"))
	require.NoError(t, err)

	// Unpublish locally, then refetch the same remote item.
	now := int64(1700000001000)
	l.PublicationStatus = models.StatusUnpublished
	l.DeletionDate = &now
	require.NoError(t, store.Update(ctx, l))

	merged, created, err := r.Reconcile(ctx, remoteItem("111", "Jacket", "12", "warm"))
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, models.StatusUnpublished, merged.PublicationStatus)
	assert.NotNil(t, merged.DeletionDate)
	assert.Equal(t, "12", merged.Price.Amount)
}

func TestReconciler_MillisTimestampKept(t *testing.T) {
	store := setupVault(t)
	r := NewReconciler(store, zap.NewNop())

	item := remoteItem("111", "Jacket", "10", "warm")
	item.CreatedAtTS = 1700000000000

	l, _, err := r.Reconcile(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), l.CreatedAtRemote)
}
