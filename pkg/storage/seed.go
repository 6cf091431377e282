package storage

import (
	"context"
	"fmt"

	"github.com/papercomputeco/novostroy/pkg/catalog"
)

// SeedCounts reports how many rows Seed wrote per kind.
type SeedCounts struct {
	Cities     int
	Developers int
	Complexes  int
	Apartments int
	Reviews    int
}

// Seed writes fixtures into a driver, parents before children.
func Seed(ctx context.Context, d Driver, f *catalog.Fixtures) (SeedCounts, error) {
	var counts SeedCounts

	for _, c := range f.Cities {
		if err := d.PutCity(ctx, c); err != nil {
			return counts, fmt.Errorf("seeding city %s: %w", c.ID, err)
		}
		counts.Cities++
	}
	for _, dev := range f.Developers {
		if err := d.PutDeveloper(ctx, dev); err != nil {
			return counts, fmt.Errorf("seeding developer %s: %w", dev.ID, err)
		}
		counts.Developers++
	}
	for _, c := range f.Complexes {
		if err := d.PutComplex(ctx, c); err != nil {
			return counts, fmt.Errorf("seeding complex %s: %w", c.ID, err)
		}
		counts.Complexes++
	}
	for _, a := range f.Apartments {
		if err := d.PutApartment(ctx, a); err != nil {
			return counts, fmt.Errorf("seeding apartment %s: %w", a.ID, err)
		}
		counts.Apartments++
	}
	for _, r := range f.Reviews {
		if err := d.PutReview(ctx, r); err != nil {
			return counts, fmt.Errorf("seeding review %s: %w", r.ID, err)
		}
		counts.Reviews++
	}

	return counts, nil
}
