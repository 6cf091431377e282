// Package libsql provides a storage driver for hosted libSQL (Turso)
// databases through a local embedded replica.
//
// The driver links its own SQLite build, which conflicts with
// github.com/mattn/go-sqlite3 in the same binary. It is therefore only
// compiled with the "libsql" build tag; without it NewDriver returns
// ErrNotCompiled.
package libsql

import (
	"errors"
	"time"
)

// ErrNotCompiled is returned by NewDriver in binaries built without the
// "libsql" tag.
var ErrNotCompiled = errors.New("libsql support not compiled in, rebuild with -tags libsql")

// Config configures the embedded replica.
type Config struct {
	// URL is the primary database, e.g. "libsql://novostroy-org.turso.io".
	URL string

	// AuthToken authenticates against the primary.
	AuthToken string

	// ReplicaPath is the local file the replica is kept in.
	ReplicaPath string

	// SyncInterval is how often the replica pulls from the primary.
	// Zero disables periodic sync.
	SyncInterval time.Duration
}

func (c Config) validate() error {
	if c.URL == "" {
		return errors.New("libsql: primary URL is required")
	}
	if c.ReplicaPath == "" {
		return errors.New("libsql: replica path is required")
	}
	return nil
}
