package extraction

import (
	"context"

	"listing-vault/feature/vault"
	"listing-vault/feature/vault/models"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// imageClient is the part of the marketplace client image acquisition needs.
type imageClient interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// ImageFetcher downloads a listing's photos and persists them as blobs under
// the listing's local id. Image persistence is best-effort: per-photo
// failures are logged and skipped, and never fail the listing.
type ImageFetcher struct {
	client imageClient
	store  *vault.Store
	logger *zap.Logger
}

// NewImageFetcher creates a new image fetcher.
func NewImageFetcher(client imageClient, store *vault.Store, logger *zap.Logger) *ImageFetcher {
	return &ImageFetcher{
		client: client,
		store:  store,
		logger: logger,
	}
}

// SaveListingImages fetches every photo of the listing, preferring the
// full-size URL and falling back to the thumbnail URL. It returns how many
// blobs were saved and how many photos failed.
func (f *ImageFetcher) SaveListingImages(ctx context.Context, l *models.Listing) (saved, failed int) {
	if len(l.Photos) == 0 {
		// All photos were removed remotely; drop any leftover blobs.
		if err := f.store.DeleteBlobs(ctx, l.LocalID); err != nil {
			f.logger.Warn("Stale blob cleanup failed",
				zap.String("local_id", l.LocalID),
				zap.Error(err),
			)
		}
		return 0, 0
	}

	for i, photo := range l.Photos {
		url := photo.FullSizeURL
		if url == "" {
			url = photo.URL
		}
		if url == "" {
			f.logger.Warn("Photo has no URL, skipping",
				zap.String("local_id", l.LocalID),
				zap.Int("photo_index", i),
			)
			failed++
			continue
		}

		data, contentType, err := f.client.FetchImage(ctx, url)
		if err != nil {
			f.logger.Warn("Image download failed, skipping",
				zap.String("local_id", l.LocalID),
				zap.Int("photo_index", i),
				zap.Error(err),
			)
			failed++
			continue
		}

		if contentType == "" || contentType == "application/octet-stream" {
			contentType = mimetype.Detect(data).String()
		}

		blob := &models.ImageBlob{
			ListingID:   l.LocalID,
			PhotoIndex:  i,
			ContentType: contentType,
			Data:        data,
		}
		if err := f.store.PutBlob(ctx, blob); err != nil {
			f.logger.Warn("Image persist failed, skipping",
				zap.String("local_id", l.LocalID),
				zap.Int("photo_index", i),
				zap.Error(err),
			)
			failed++
			continue
		}
		saved++
	}

	return saved, failed
}
