package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"listing-vault/core/storage"
	"listing-vault/feature/vault"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Service exposes archive export and import over local files and, when
// configured, an object storage bucket. Artifact handles are either plain
// file paths or s3://bucket/object URLs.
type Service struct {
	codec  *Codec
	cfg    Config
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new archive service. client may be nil when object
// storage is not configured; uploads are then disabled.
func NewService(store *vault.Store, cfg Config, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		codec:  NewCodec(store, logger),
		cfg:    cfg,
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Export writes the whole vault to a timestamped zip archive and returns its
// artifact handle. The store is not mutated.
func (s *Service) Export(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("listing_vault_export_%s.zip", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.cfg.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	records, blobs, err := s.codec.Export(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("export archive: %w", err)
	}

	s.logger.Info("Archive exported",
		zap.String("path", path),
		zap.Int("records", records),
		zap.Int("blobs", blobs),
	)

	if s.cfg.Upload && s.client != nil {
		handle, err := s.upload(ctx, path, name)
		if err != nil {
			return "", err
		}
		return handle, nil
	}

	return path, nil
}

// Import replaces the vault contents with the archive at the given handle,
// which is either a local file path or an s3://bucket/object URL.
func (s *Service) Import(ctx context.Context, handle string) error {
	path := handle
	if strings.HasPrefix(handle, "s3://") {
		local, cleanup, err := s.download(ctx, handle)
		if err != nil {
			return err
		}
		defer cleanup()
		path = local
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	records, blobs, err := s.codec.Import(ctx, &zr.Reader)
	if err != nil {
		return fmt.Errorf("import archive %s: %w", handle, err)
	}

	s.logger.Info("Archive imported",
		zap.String("handle", handle),
		zap.Int("records", records),
		zap.Int("blobs", blobs),
	)
	return nil
}

func (s *Service) upload(ctx context.Context, path, objectName string) (string, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("check archive bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("create archive bucket: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, f, info.Size(), minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", fmt.Errorf("upload archive: %w", err)
	}

	handle := fmt.Sprintf("s3://%s/%s", s.bucket, objectName)
	s.logger.Info("Archive uploaded", zap.String("handle", handle))
	return handle, nil
}

func (s *Service) download(ctx context.Context, handle string) (string, func(), error) {
	if s.client == nil {
		return "", nil, fmt.Errorf("object storage not configured, cannot read %s", handle)
	}

	trimmed := strings.TrimPrefix(handle, "s3://")
	bucket, objectName, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || objectName == "" {
		return "", nil, fmt.Errorf("invalid artifact handle %s", handle)
	}

	obj, err := s.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("fetch archive %s: %w", handle, err)
	}
	defer obj.Close()

	tmp, err := os.CreateTemp("", "listing-vault-import-*.zip")
	if err != nil {
		return "", nil, fmt.Errorf("create temp archive: %w", err)
	}

	if _, err := io.Copy(tmp, obj); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("download archive %s: %w", handle, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("close temp archive: %w", err)
	}

	cleanup := func() { _ = os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}
