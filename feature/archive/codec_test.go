package archive

import (
	"archive/zip"
	"bytes"
	"context"
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

var (
	pngBytes  = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46}
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

func seedListing(t *testing.T, store *vault.Store, localID, externalID, title string, photos int) {
	t.Helper()
	ctx := context.Background()

	l := &models.Listing{
		LocalID:           localID,
		Title:             title,
		Description:       "seeded",
		Price:             models.Price{Amount: "10", CurrencyCode: "EUR"},
		AddedAt:           1700000000000,
		PublicationStatus: models.StatusPublished,
	}
	if externalID != "" {
		l.ExternalID = &externalID
	}
	for i := 0; i < photos; i++ {
		l.Photos = append(l.Photos, models.Photo{URL: "http://img"})
	}
	require.NoError(t, store.Insert(ctx, l))
}

func TestCodec_ExportImportRoundTrip(t *testing.T) {
	src := setupVault(t)
	ctx := context.Background()

	seedListing(t, src, "local-1", "111", "Jacket", 2)
	seedListing(t, src, "local-2", "", "Coat", 1)

	require.NoError(t, src.PutBlob(ctx, &models.ImageBlob{
		ListingID: "local-1", PhotoIndex: 0, ContentType: "image/jpeg", Data: jpegBytes,
	}))
	require.NoError(t, src.PutBlob(ctx, &models.ImageBlob{
		ListingID: "local-1", PhotoIndex: 1, ContentType: "image/png", Data: pngBytes,
	}))
	// local-2's photo was never downloaded; the export must skip it.

	var buf bytes.Buffer
	records, blobs, err := NewCodec(src, zap.NewNop()).Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, records)
	assert.Equal(t, 2, blobs)

	dst := setupVault(t)
	seedListing(t, dst, "stale-1", "999", "Old", 0)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	records, blobs, err = NewCodec(dst, zap.NewNop()).Import(ctx, zr)
	require.NoError(t, err)
	assert.Equal(t, 2, records)
	assert.Equal(t, 2, blobs)

	// The pre-existing record was replaced wholesale.
	_, err = dst.GetByLocalID(ctx, "stale-1")
	assert.ErrorIs(t, err, vault.ErrNotFound)

	restored, err := dst.GetByLocalID(ctx, "local-1")
	require.NoError(t, err)
	assert.Equal(t, "Jacket", restored.Title)
	require.NotNil(t, restored.ExternalID)
	assert.Equal(t, "111", *restored.ExternalID)
	assert.Equal(t, int64(1700000000000), restored.AddedAt)

	blob, err := dst.GetBlob(ctx, "local-1", 1)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, blob.Data)
	assert.Equal(t, "image/png", blob.ContentType, "content type rehydrated by sniffing")

	_, err = dst.GetBlob(ctx, "local-2", 0)
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestCodec_ExportNamesEntriesByContentType(t *testing.T) {
	store := setupVault(t)
	ctx := context.Background()

	seedListing(t, store, "local-1", "111", "Jacket", 2)
	require.NoError(t, store.PutBlob(ctx, &models.ImageBlob{
		ListingID: "local-1", PhotoIndex: 0, ContentType: "image/png", Data: pngBytes,
	}))
	// Unknown stored type falls back to sniffing the bytes.
	require.NoError(t, store.PutBlob(ctx, &models.ImageBlob{
		ListingID: "local-1", PhotoIndex: 1, ContentType: "application/octet-stream", Data: jpegBytes,
	}))

	var buf bytes.Buffer
	_, _, err := NewCodec(store, zap.NewNop()).Export(ctx, &buf)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["images/local-1_0.png"], "entries: %v", names)
	assert.True(t, names["images/local-1_1.jpg"], "entries: %v", names)
}

func TestCodec_ImportMissingManifestLeavesStoreUntouched(t *testing.T) {
	store := setupVault(t)
	ctx := context.Background()
	seedListing(t, store, "local-1", "111", "Jacket", 0)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("images/orphan_0.jpg")
	require.NoError(t, err)
	_, err = w.Write(jpegBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	_, _, err = NewCodec(store, zap.NewNop()).Import(ctx, zr)
	assert.ErrorIs(t, err, ErrMissingManifest)

	// Nothing was cleared.
	_, err = store.GetByLocalID(ctx, "local-1")
	assert.NoError(t, err)
}

func TestCodec_ImportMalformedManifestLeavesStoreUntouched(t *testing.T) {
	store := setupVault(t)
	ctx := context.Background()
	seedListing(t, store, "local-1", "111", "Jacket", 0)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(ManifestName)
	require.NoError(t, err)
	_, err = w.Write([]byte("not json at all"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	_, _, err = NewCodec(store, zap.NewNop()).Import(ctx, zr)
	assert.ErrorIs(t, err, ErrMissingManifest)

	_, err = store.GetByLocalID(ctx, "local-1")
	assert.NoError(t, err)
}

func TestCodec_ImportSkipsAbsentBlobEntries(t *testing.T) {
	src := setupVault(t)
	ctx := context.Background()
	seedListing(t, src, "local-1", "111", "Jacket", 3)
	require.NoError(t, src.PutBlob(ctx, &models.ImageBlob{
		ListingID: "local-1", PhotoIndex: 1, ContentType: "image/jpeg", Data: jpegBytes,
	}))

	var buf bytes.Buffer
	_, _, err := NewCodec(src, zap.NewNop()).Export(ctx, &buf)
	require.NoError(t, err)

	dst := setupVault(t)
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	records, blobs, err := NewCodec(dst, zap.NewNop()).Import(ctx, zr)
	require.NoError(t, err)
	assert.Equal(t, 1, records)
	assert.Equal(t, 1, blobs)

	n, err := dst.CountBlobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
