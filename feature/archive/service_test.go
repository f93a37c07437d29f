package archive

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"listing-vault/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_ExportToLocalFile(t *testing.T) {
	store := setupVault(t)
	seedListing(t, store, "local-1", "111", "Jacket", 0)

	cfg := Config{Dir: t.TempDir()}
	svc := NewService(store, cfg, nil, "", zap.NewNop())

	handle, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(handle, cfg.Dir), "handle %q not under %q", handle, cfg.Dir)
	assert.True(t, strings.HasSuffix(handle, ".zip"))

	info, err := os.Stat(handle)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestService_ExportUploadsWhenConfigured(t *testing.T) {
	store := setupVault(t)
	seedListing(t, store, "local-1", "111", "Jacket", 0)

	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "listing-archives").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "listing-archives", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "listing-archives", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	cfg := Config{Dir: t.TempDir(), Upload: true}
	svc := NewService(store, cfg, client, "listing-archives", zap.NewNop())

	handle, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(handle, "s3://listing-archives/"), "handle %q", handle)
	client.AssertExpectations(t)
}

func TestService_RoundTripThroughLocalFile(t *testing.T) {
	src := setupVault(t)
	seedListing(t, src, "local-1", "111", "Jacket", 0)
	seedListing(t, src, "local-2", "222", "Coat", 0)

	cfg := Config{Dir: t.TempDir()}
	handle, err := NewService(src, cfg, nil, "", zap.NewNop()).Export(context.Background())
	require.NoError(t, err)

	dst := setupVault(t)
	err = NewService(dst, cfg, nil, "", zap.NewNop()).Import(context.Background(), handle)
	require.NoError(t, err)

	n, err := dst.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestService_ImportFromObjectStorage(t *testing.T) {
	src := setupVault(t)
	seedListing(t, src, "local-1", "111", "Jacket", 0)

	cfg := Config{Dir: t.TempDir()}
	path, err := NewService(src, cfg, nil, "", zap.NewNop()).Export(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	client := &mocks.Client{}
	client.On("GetObject", mock.Anything, "listing-archives", "backup.zip", mock.Anything).
		Return(io.NopCloser(strings.NewReader(string(data))), nil)

	dst := setupVault(t)
	svc := NewService(dst, cfg, client, "listing-archives", zap.NewNop())
	err = svc.Import(context.Background(), "s3://listing-archives/backup.zip")
	require.NoError(t, err)

	n, err := dst.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	client.AssertExpectations(t)
}

func TestService_ImportRejectsBadHandle(t *testing.T) {
	store := setupVault(t)
	client := &mocks.Client{}
	svc := NewService(store, Config{Dir: t.TempDir()}, client, "listing-archives", zap.NewNop())

	err := svc.Import(context.Background(), "s3://only-a-bucket")
	assert.Error(t, err)
}

func TestService_ImportWithoutStorageClient(t *testing.T) {
	store := setupVault(t)
	svc := NewService(store, Config{Dir: t.TempDir()}, nil, "", zap.NewNop())

	err := svc.Import(context.Background(), "s3://listing-archives/backup.zip")
	assert.Error(t, err)
}
