// Package inmemory provides a map-backed storage driver for tests and
// ephemeral runs.
package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu is a read write sync mutex guarding every map below
	mu sync.RWMutex

	cities     map[string]catalog.City
	developers map[string]catalog.Developer
	complexes  map[string]catalog.Complex
	apartments map[string]catalog.Apartment
	reviews    map[string]catalog.Review

	// searches is append-only, oldest first
	searches []storage.SearchRecord
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		cities:     make(map[string]catalog.City),
		developers: make(map[string]catalog.Developer),
		complexes:  make(map[string]catalog.Complex),
		apartments: make(map[string]catalog.Apartment),
		reviews:    make(map[string]catalog.Review),
	}
}

func (d *Driver) PutCity(_ context.Context, city catalog.City) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cities[city.ID] = city
	return nil
}

func (d *Driver) PutDeveloper(_ context.Context, developer catalog.Developer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.developers[developer.ID] = developer
	return nil
}

func (d *Driver) PutComplex(_ context.Context, c catalog.Complex) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	c.Developer = nil
	c.Features = slices.Clone(c.Features)
	d.complexes[c.ID] = c
	return nil
}

func (d *Driver) PutApartment(_ context.Context, apartment catalog.Apartment) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.apartments[apartment.ID] = apartment
	return nil
}

func (d *Driver) PutReview(_ context.Context, review catalog.Review) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reviews[review.ID] = review
	return nil
}

// ListComplexes returns complexes matching filter, highest rating first. Ties
// are broken by name.
func (d *Driver) ListComplexes(_ context.Context, filter storage.ComplexFilter) ([]catalog.Complex, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := []catalog.Complex{}
	for _, c := range d.complexes {
		if filter.CityID != "" && c.CityID != filter.CityID {
			continue
		}
		result = append(result, d.withDeveloper(c))
	}

	slices.SortFunc(result, func(a, b catalog.Complex) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return result, nil
}

func (d *Driver) GetComplex(_ context.Context, id string) (*catalog.Complex, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.complexes[id]
	if !ok {
		return nil, storage.NotFoundError{Kind: "complex", ID: id}
	}

	c = d.withDeveloper(c)
	return &c, nil
}

func (d *Driver) GetComplexes(_ context.Context, ids []string) ([]catalog.Complex, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := []catalog.Complex{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, ok := d.complexes[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, d.withDeveloper(c))
	}
	return result, nil
}

func (d *Driver) ListApartments(_ context.Context, complexID string) ([]catalog.Apartment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := []catalog.Apartment{}
	for _, a := range d.apartments {
		if a.ComplexID == complexID {
			result = append(result, a)
		}
	}

	slices.SortFunc(result, func(a, b catalog.Apartment) int {
		if c := cmp.Compare(a.Price, b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (d *Driver) ListReviews(_ context.Context, complexID string) ([]catalog.Review, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := []catalog.Review{}
	for _, r := range d.reviews {
		if r.ComplexID == complexID {
			result = append(result, r)
		}
	}

	slices.SortFunc(result, func(a, b catalog.Review) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (d *Driver) RecordSearch(_ context.Context, record storage.SearchRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.ComplexIDs = slices.Clone(record.ComplexIDs)
	d.searches = append(d.searches, record)
	return nil
}

func (d *Driver) ListSearches(_ context.Context, limit int) ([]storage.SearchRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 {
		limit = storage.DefaultSearchLimit
	}

	result := []storage.SearchRecord{}
	for i := len(d.searches) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, d.searches[i])
	}
	return result, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// withDeveloper returns c with its developer row attached. Callers hold mu.
func (d *Driver) withDeveloper(c catalog.Complex) catalog.Complex {
	if dev, ok := d.developers[c.DeveloperID]; ok {
		c.Developer = &dev
	}
	return c
}
