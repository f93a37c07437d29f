package cmd

import (
	"fmt"

	"listing-vault/core/config"
	"listing-vault/core/database"
	"listing-vault/core/logger"
	"listing-vault/core/storage"
	"listing-vault/feature/archive"
	"listing-vault/feature/extraction"
	"listing-vault/feature/vault"

	"go.uber.org/zap"
)

// app bundles the wired application components shared by all commands.
// The database handle is opened exactly once and passed into every service.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *vault.Store
	client     *extraction.Client
	vault      *vault.Service
	extraction *extraction.Service
	archive    *archive.Service
}

// newApp loads configuration and wires the services.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := vault.NewStore(db)
	if err != nil {
		return nil, err
	}

	client := extraction.NewClient(cfg.Marketplace, l)

	// Object storage is optional; archive uploads are skipped without it.
	var storageClient storage.Client
	if cfg.Archive.Upload {
		storageClient, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	return &app{
		cfg:        cfg,
		logger:     l,
		store:      store,
		client:     client,
		vault:      vault.NewService(store, client, l),
		extraction: extraction.NewService(client, store, l),
		archive:    archive.NewService(store, cfg.Archive, storageClient, cfg.Storage.Bucket, l),
	}, nil
}

// close flushes the logger.
func (a *app) close() {
	_ = a.logger.Sync()
}
