package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"listing-vault/feature/vault/models"

	"go.uber.org/zap"
)

// ErrNotImplemented marks declared but unimplemented operations.
var ErrNotImplemented = errors.New("not implemented")

// RemoteDeleter deletes a listing on the remote marketplace. Implemented by
// the extraction client; nil disables remote deletion on unpublish.
type RemoteDeleter interface {
	DeleteRemoteListing(ctx context.Context, externalID string) error
}

// Service exposes the vault operations called by UI adapters (HTTP handlers,
// CLI commands). Adapters must not touch the store directly.
type Service struct {
	store  *Store
	remote RemoteDeleter
	logger *zap.Logger
}

// NewService creates a new vault service.
func NewService(store *Store, remote RemoteDeleter, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		remote: remote,
		logger: logger,
	}
}

// List returns listings matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Listing, error) {
	return s.store.List(ctx, filter)
}

// Get returns one listing by local id.
func (s *Service) Get(ctx context.Context, localID string) (*models.Listing, error) {
	return s.store.GetByLocalID(ctx, localID)
}

// Delete removes a listing and its blobs from the vault.
func (s *Service) Delete(ctx context.Context, localID string) error {
	if err := s.store.DeleteListing(ctx, localID); err != nil {
		return err
	}
	s.logger.Info("Listing deleted", zap.String("local_id", localID))
	return nil
}

// Unpublish marks a listing unpublished and attempts a best-effort delete on
// the remote marketplace. A failed remote delete is logged, not fatal: the
// local state change always proceeds. The external id is cleared only when
// the remote delete succeeded, so a retry stays possible.
func (s *Service) Unpublish(ctx context.Context, localID string) (*models.Listing, error) {
	l, err := s.store.GetByLocalID(ctx, localID)
	if err != nil {
		return nil, err
	}

	if l.PublicationStatus == models.StatusUnpublished {
		return l, nil
	}

	remoteDeleted := false
	if s.remote != nil && l.ExternalID != nil {
		if err := s.remote.DeleteRemoteListing(ctx, *l.ExternalID); err != nil {
			s.logger.Warn("Remote delete failed, unpublishing locally only",
				zap.String("local_id", localID),
				zap.String("external_id", *l.ExternalID),
				zap.Error(err),
			)
		} else {
			remoteDeleted = true
		}
	}

	now := time.Now().UnixMilli()
	l.PublicationStatus = models.StatusUnpublished
	l.DeletionDate = &now
	l.UpdatedAt = &now
	if remoteDeleted {
		l.ExternalID = nil
	}

	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Listing unpublished",
		zap.String("local_id", localID),
		zap.Bool("remote_deleted", remoteDeleted),
	)
	return l, nil
}

// Republish is a declared future capability.
func (s *Service) Republish(ctx context.Context, localID string) error {
	return fmt.Errorf("republish listing %s: %w", localID, ErrNotImplemented)
}

// UpdateField sets one editable field of a listing. Supported fields are
// title, description, price (amount only), size and brand.
func (s *Service) UpdateField(ctx context.Context, localID, field, value string) (*models.Listing, error) {
	l, err := s.store.GetByLocalID(ctx, localID)
	if err != nil {
		return nil, err
	}

	switch field {
	case "title":
		l.Title = value
	case "description":
		l.Description = value
	case "price":
		l.Price.Amount = value
	case "size":
		l.Size = value
	case "brand":
		l.Brand = value
	default:
		return nil, fmt.Errorf("field %s is not editable", field)
	}

	now := time.Now().UnixMilli()
	l.UpdatedAt = &now

	if err := s.store.Update(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Listing field updated",
		zap.String("local_id", localID),
		zap.String("field", field),
	)
	return l, nil
}

// Reset clears the whole vault, listings and blobs both.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.logger.Info("Vault reset")
	return nil
}

// Store exposes the underlying store to sibling features (extraction,
// archive) that operate on records and blobs directly.
func (s *Service) Store() *Store {
	return s.store
}
