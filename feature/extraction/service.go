package extraction

import (
	"context"
	"time"

	"listing-vault/feature/vault"

	"go.uber.org/zap"
)

// Stats summarizes one extraction run.
type Stats struct {
	// Fetched is the number of raw items retrieved across all pages.
	Fetched int `json:"fetched"`
	// Created counts items that produced a new vault record.
	Created int `json:"created"`
	// Merged counts items that updated an existing record.
	Merged int `json:"merged"`
	// Skipped counts items dropped by per-item failures.
	Skipped int `json:"skipped"`
	// PagesFailed counts pages skipped by the fetch loop.
	PagesFailed int `json:"pages_failed"`
	// ImagesSaved and ImagesFailed count photo blob outcomes.
	ImagesSaved  int `json:"images_saved"`
	ImagesFailed int `json:"images_failed"`

	Duration time.Duration `json:"duration"`
}

// Service orchestrates one extraction run: paginated fetch, per-item
// reconciliation, and best-effort image acquisition.
type Service struct {
	client     *Client
	reconciler *Reconciler
	images     *ImageFetcher
	logger     *zap.Logger
}

// NewService creates a new extraction service.
func NewService(client *Client, store *vault.Store, logger *zap.Logger) *Service {
	return &Service{
		client:     client,
		reconciler: NewReconciler(store, logger),
		images:     NewImageFetcher(client, store, logger),
		logger:     logger,
	}
}

// Run performs a full extraction. Missing credentials abort the run with an
// *AuthError before anything is fetched. Page, item, and image failures are
// recoverable: they are logged, counted, and the run continues.
func (s *Service) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()

	if err := s.client.CheckCredentials(); err != nil {
		return nil, err
	}

	s.logger.Info("Starting extraction")

	items, pagesFailed := s.fetchAllPages(ctx)

	stats := &Stats{
		Fetched:     len(items),
		PagesFailed: pagesFailed,
	}

	for i := range items {
		item := &items[i]

		listing, created, err := s.reconciler.Reconcile(ctx, item)
		if err != nil {
			s.logger.Warn("Item reconciliation failed, skipping",
				zap.String("external_id", item.ExternalID()),
				zap.String("title", item.Title),
				zap.Error(err),
			)
			stats.Skipped++
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Merged++
		}

		saved, failed := s.images.SaveListingImages(ctx, listing)
		stats.ImagesSaved += saved
		stats.ImagesFailed += failed
	}

	stats.Duration = time.Since(start)

	s.logger.Info("Extraction completed",
		zap.Int("fetched", stats.Fetched),
		zap.Int("created", stats.Created),
		zap.Int("merged", stats.Merged),
		zap.Int("skipped", stats.Skipped),
		zap.Int("pages_failed", stats.PagesFailed),
		zap.Int("images_saved", stats.ImagesSaved),
		zap.Int("images_failed", stats.ImagesFailed),
		zap.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// fetchAllPages drives the pagination loop. Pages are fetched one at a time;
// a failed page is logged and skipped, never retried, and the loop always
// advances. The page count is refreshed only from successful responses, so
// when the very first page fails the loop stops after that single attempt.
func (s *Service) fetchAllPages(ctx context.Context) ([]RemoteListing, int) {
	var all []RemoteListing
	failed := 0

	page, totalPages := 1, 1
	for page <= totalPages {
		items, pg, err := s.client.FetchPage(ctx, page)
		if err != nil {
			s.logger.Warn("Page fetch failed, advancing to next page",
				zap.Int("page", page),
				zap.Error(err),
			)
			failed++
			page++
			continue
		}

		all = append(all, items...)
		if pg.TotalPages > 0 {
			totalPages = pg.TotalPages
		}

		s.logger.Info("Fetched page",
			zap.Int("page", page),
			zap.Int("items", len(items)),
			zap.Int("total_pages", totalPages),
			zap.Int("total_entries", pg.TotalEntries),
		)
		page++
	}

	return all, failed
}
