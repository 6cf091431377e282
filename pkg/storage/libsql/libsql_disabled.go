//go:build !libsql

package libsql

import (
	"context"

	"github.com/papercomputeco/novostroy/pkg/storage/sqldriver"
)

// Driver is unavailable without the "libsql" build tag.
type Driver struct {
	*sqldriver.Driver
}

// NewDriver validates cfg and returns ErrNotCompiled.
func NewDriver(_ context.Context, cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return nil, ErrNotCompiled
}
