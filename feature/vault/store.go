package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"listing-vault/feature/vault/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a listing or blob does not exist. It is
// distinct from a transaction failure, which surfaces as a wrapped error.
var ErrNotFound = errors.New("not found")

// ListFilter selects which listings a List call returns.
type ListFilter string

const (
	FilterAll         ListFilter = "all"
	FilterPublished   ListFilter = "published"
	FilterUnpublished ListFilter = "unpublished"
)

// Store is the durable keyed store for listing records and image blobs.
// Every write runs inside a transaction scoped to one logical unit, so a
// failure mid-operation never leaves a partial commit observable.
type Store struct {
	db *gorm.DB
}

// NewStore creates the store and migrates its schema. The *gorm.DB handle is
// opened once at process start and shared; the store never re-opens it.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.Listing{}, &models.ImageBlob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate vault schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewLocalID returns a fresh unique local identifier.
func NewLocalID() string {
	return uuid.NewString()
}

// GetByLocalID fetches a listing by primary key.
func (s *Store) GetByLocalID(ctx context.Context, localID string) (*models.Listing, error) {
	var l models.Listing
	err := s.db.WithContext(ctx).First(&l, "local_id = ?", localID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing %s: %w", localID, err)
	}
	return &l, nil
}

// GetByExternalID fetches a listing by its remote identifier.
func (s *Store) GetByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	var l models.Listing
	err := s.db.WithContext(ctx).First(&l, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing by external id %s: %w", externalID, err)
	}
	return &l, nil
}

// FindSimilar scans for a listing whose (title, price amount, description)
// triple exactly equals the given one. This is an equality heuristic, not
// fuzzy matching: two unrelated listings sharing all three values will match.
// Price lives in a JSON column, so the comparison happens in memory.
func (s *Store) FindSimilar(ctx context.Context, title, priceAmount, description string) (*models.Listing, error) {
	var listings []models.Listing
	if err := s.db.WithContext(ctx).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to scan listings: %w", err)
	}

	for i := range listings {
		l := &listings[i]
		if l.Title == title && l.Price.Amount == priceAmount && l.Description == description {
			return l, nil
		}
	}
	return nil, ErrNotFound
}

// List returns listings matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.Listing, error) {
	q := s.db.WithContext(ctx).Order("added_at DESC")

	switch filter {
	case FilterPublished:
		q = q.Where("publication_status = ?", models.StatusPublished)
	case FilterUnpublished:
		q = q.Where("publication_status = ?", models.StatusUnpublished)
	case FilterAll, "":
	default:
		return nil, fmt.Errorf("unknown list filter: %s", filter)
	}

	var listings []models.Listing
	if err := q.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// Count returns the number of stored listings.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Listing{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

// Insert creates a new listing record.
func (s *Store) Insert(ctx context.Context, l *models.Listing) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(l).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert listing %s: %w", l.LocalID, err)
	}
	return nil
}

// Update replaces an existing listing record.
func (s *Store) Update(ctx context.Context, l *models.Listing) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(l).Error
	})
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", l.LocalID, err)
	}
	return nil
}

// SaveBatch upserts many listings in one transaction. Records missing a
// LocalID or AddedAt get them assigned inside the same transaction as the
// writes, so an archive import is all-or-nothing.
func (s *Store) SaveBatch(ctx context.Context, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range listings {
			l := &listings[i]
			if l.LocalID == "" {
				l.LocalID = NewLocalID()
			}
			if l.AddedAt == 0 {
				l.AddedAt = now
			}
			if l.PublicationStatus == "" {
				l.PublicationStatus = models.StatusPublished
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(l).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save listing batch: %w", err)
	}
	return nil
}

// DeleteListing removes a listing and every blob stored under it. Record and
// blobs go in one transaction so a failure cannot orphan either side.
func (s *Store) DeleteListing(ctx context.Context, localID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Listing{}, "local_id = ?", localID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.ImageBlob{}, "listing_id = ?", localID).Error
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", localID, err)
	}
	return nil
}

// PutBlob stores the image bytes for one photo of a listing, replacing any
// previous bytes under the same (listing, index) key.
func (s *Store) PutBlob(ctx context.Context, blob *models.ImageBlob) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(blob).Error
	})
	if err != nil {
		return fmt.Errorf("failed to put blob (%s, %d): %w", blob.ListingID, blob.PhotoIndex, err)
	}
	return nil
}

// DeleteBlobs removes every blob stored under a listing, leaving the record
// itself in place.
func (s *Store) DeleteBlobs(ctx context.Context, listingID string) error {
	err := s.db.WithContext(ctx).Delete(&models.ImageBlob{}, "listing_id = ?", listingID).Error
	if err != nil {
		return fmt.Errorf("failed to delete blobs for %s: %w", listingID, err)
	}
	return nil
}

// GetBlob fetches the image bytes stored under (listing, index).
func (s *Store) GetBlob(ctx context.Context, listingID string, photoIndex int) (*models.ImageBlob, error) {
	var b models.ImageBlob
	err := s.db.WithContext(ctx).
		First(&b, "listing_id = ? AND photo_index = ?", listingID, photoIndex).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob (%s, %d): %w", listingID, photoIndex, err)
	}
	return &b, nil
}

// ListBlobs returns every blob of a listing ordered by photo index.
func (s *Store) ListBlobs(ctx context.Context, listingID string) ([]models.ImageBlob, error) {
	var blobs []models.ImageBlob
	err := s.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("photo_index ASC").
		Find(&blobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs for %s: %w", listingID, err)
	}
	return blobs, nil
}

// CountBlobs returns the number of stored blobs.
func (s *Store) CountBlobs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ImageBlob{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count blobs: %w", err)
	}
	return n, nil
}

// Reset clears all listings and blobs in one transaction.
func (s *Store) Reset(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Listing{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.ImageBlob{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to reset vault: %w", err)
	}
	return nil
}
