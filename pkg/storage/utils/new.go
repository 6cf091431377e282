// Package storageutils selects and opens the configured storage backend.
package storageutils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/novostroy/pkg/storage"
	"github.com/papercomputeco/novostroy/pkg/storage/inmemory"
	"github.com/papercomputeco/novostroy/pkg/storage/libsql"
	"github.com/papercomputeco/novostroy/pkg/storage/postgres"
	"github.com/papercomputeco/novostroy/pkg/storage/sqlite"
)

// Backend names reported by Backend.
const (
	BackendInMemory = "inmemory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendLibSQL   = "libsql"
)

type NewDriverOpts struct {
	SQLitePath  string
	PostgresDSN string

	LibSQLURL       string
	LibSQLAuthToken string
	LibSQLReplica   string

	Logger *slog.Logger
}

// Backend returns the backend the options select. libSQL wins over
// PostgreSQL, which wins over SQLite; with nothing set the store is in-memory.
func (o *NewDriverOpts) Backend() string {
	switch {
	case o.LibSQLURL != "":
		return BackendLibSQL
	case o.PostgresDSN != "":
		return BackendPostgres
	case o.SQLitePath != "":
		return BackendSQLite
	default:
		return BackendInMemory
	}
}

// NewDriver opens the storage driver selected by o.
func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch o.Backend() {
	case BackendLibSQL:
		driver, err := libsql.NewDriver(ctx, libsql.Config{
			URL:          o.LibSQLURL,
			AuthToken:    o.LibSQLAuthToken,
			ReplicaPath:  o.LibSQLReplica,
			SyncInterval: time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create libSQL driver: %w", err)
		}
		logger.Info("using libSQL storage", "url", o.LibSQLURL, "replica", o.LibSQLReplica)
		return driver, nil

	case BackendPostgres:
		driver, err := postgres.NewDriver(ctx, o.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return driver, nil

	case BackendSQLite:
		driver, err := sqlite.NewDriver(ctx, o.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		logger.Info("using SQLite storage", "path", o.SQLitePath)
		return driver, nil

	default:
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}
