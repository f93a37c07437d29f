package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"listing-vault/feature/vault"
	"listing-vault/feature/vault/models"

	"go.uber.org/zap"
)

// Timestamps below this value are taken to be seconds and scaled to millis.
const epochMillisFloor = 10_000_000_000

// normalizeEpochMillis converts a remote timestamp to epoch milliseconds.
// The remote API sends seconds on some endpoints and millis on others.
func normalizeEpochMillis(ts int64) int64 {
	if ts > 0 && ts < epochMillisFloor {
		return ts * 1000
	}
	return ts
}

// Reconciler applies the create-or-merge decision to each incoming remote
// item, consulting the vault for an existing record.
type Reconciler struct {
	store  *vault.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewReconciler creates a new reconciler.
func NewReconciler(store *vault.Store, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Reconcile matches one remote item against the vault and creates or merges
// a record accordingly. The returned bool is true when a new record was
// created, false when an existing one was merged.
//
// Matching is two-tier: first by external id, then by exact equality of the
// (title, price amount, description) triple. The fallback is intentionally
// exact, not fuzzy; two unrelated listings sharing the full triple merge.
func (r *Reconciler) Reconcile(ctx context.Context, item *RemoteListing) (*models.Listing, bool, error) {
	existing, err := r.match(ctx, item)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		r.merge(existing, item)
		if err := r.store.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("merge listing: %w", err)
		}
		return existing, false, nil
	}

	created := r.create(item)
	if err := r.store.Insert(ctx, created); err != nil {
		return nil, false, fmt.Errorf("create listing: %w", err)
	}
	return created, true, nil
}

func (r *Reconciler) match(ctx context.Context, item *RemoteListing) (*models.Listing, error) {
	if extID := item.ExternalID(); extID != "" {
		l, err := r.store.GetByExternalID(ctx, extID)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, vault.ErrNotFound) {
			return nil, fmt.Errorf("lookup by external id: %w", err)
		}
	}

	l, err := r.store.FindSimilar(ctx, item.Title, item.Price.Amount, item.Description)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, vault.ErrNotFound) {
		return nil, fmt.Errorf("similarity lookup: %w", err)
	}
	return nil, nil
}

// merge overwrites the matched record's fields with the incoming values.
// Local-only fields (local id, added-at, publication status, deletion date)
// are preserved; only the merge timestamp advances.
func (r *Reconciler) merge(l *models.Listing, item *RemoteListing) {
	if extID := item.ExternalID(); extID != "" {
		l.ExternalID = &extID
	}
	l.Title = item.Title
	l.Description = item.Description
	l.Price = item.Price
	l.Photos = item.Photos
	l.URL = item.URL
	l.Size = item.Size
	l.Brand = item.Brand
	l.ViewCount = item.ViewCount
	l.FavouriteCount = item.FavouriteCount
	l.CreatedAtRemote = normalizeEpochMillis(item.CreatedAtTS)

	now := r.now().UnixMilli()
	l.UpdatedAt = &now
}

func (r *Reconciler) create(item *RemoteListing) *models.Listing {
	l := &models.Listing{
		LocalID:           vault.NewLocalID(),
		Title:             item.Title,
		Description:       item.Description,
		Price:             item.Price,
		Photos:            item.Photos,
		URL:               item.URL,
		Size:              item.Size,
		Brand:             item.Brand,
		ViewCount:         item.ViewCount,
		FavouriteCount:    item.FavouriteCount,
		CreatedAtRemote:   normalizeEpochMillis(item.CreatedAtTS),
		AddedAt:           r.now().UnixMilli(),
		PublicationStatus: models.StatusPublished,
	}
	if extID := item.ExternalID(); extID != "" {
		l.ExternalID = &extID
	}
	return l
}
