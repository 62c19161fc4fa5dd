package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/algowatch/internal/infra/storage"
	"github.com/vietddude/algowatch/internal/infra/storage/memory"
	"github.com/vietddude/algowatch/internal/infra/storage/postgres"
)

// Storage bundles the repositories of the selected backend.
type Storage struct {
	Accounts storage.AccountRepository
	Contacts storage.ContactRepository
	Nodes    storage.NodeRepository

	db *postgres.DB
}

// OpenStorage connects to PostgreSQL and applies migrations when a database
// URL is configured, and falls back to in-memory repositories otherwise.
func OpenStorage(ctx context.Context, cfg postgres.Config) (*Storage, error) {
	if cfg.URL == "" {
		store := memory.NewMemoryStorage()
		slog.Info("Using Memory storage")
		return &Storage{
			Accounts: memory.NewAccountRepo(store),
			Contacts: memory.NewContactRepo(store),
			Nodes:    memory.NewNodeRepo(store),
		}, nil
	}

	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("Using PostgreSQL storage")
	return &Storage{
		Accounts: postgres.NewAccountRepo(db),
		Contacts: postgres.NewContactRepo(db),
		Nodes:    postgres.NewNodeRepo(db),
		db:       db,
	}, nil
}

// Persistent reports whether data survives a restart.
func (s *Storage) Persistent() bool {
	return s.db != nil
}

// DB returns the database handle, nil in memory mode.
func (s *Storage) DB() *postgres.DB {
	return s.db
}

// Close releases the database connection.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
