//go:build libsql

package libsql

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	golibsql "github.com/tursodatabase/go-libsql"

	"github.com/papercomputeco/novostroy/pkg/storage/sqldriver"
)

// Driver implements storage.Driver on a libSQL embedded replica via the
// shared SQL driver.
type Driver struct {
	*sqldriver.Driver

	connector *golibsql.Connector
}

// NewDriver opens an embedded replica of the primary database and creates
// the schema if it is missing. Writes are forwarded to the primary.
func NewDriver(ctx context.Context, cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []golibsql.Option{}
	if cfg.AuthToken != "" {
		opts = append(opts, golibsql.WithAuthToken(cfg.AuthToken))
	}
	if cfg.SyncInterval > 0 {
		opts = append(opts, golibsql.WithSyncInterval(cfg.SyncInterval))
	}

	connector, err := golibsql.NewEmbeddedReplicaConnector(cfg.ReplicaPath, cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql replica: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		connector.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	drv, err := sqldriver.New(ctx, dialect.SQLite, db)
	if err != nil {
		db.Close()
		connector.Close()
		return nil, err
	}

	return &Driver{Driver: drv, connector: connector}, nil
}

// Close closes the database and the replica connector.
func (d *Driver) Close() error {
	dbErr := d.Driver.Close()
	if err := d.connector.Close(); err != nil {
		return err
	}
	return dbErr
}
