// Package storage persists the residential-complex catalog and the search
// history.
package storage

import (
	"context"
	"time"

	"github.com/papercomputeco/novostroy/pkg/catalog"
)

// Driver defines the interface for persisting and retrieving catalog rows and
// search records in a storage backend.
type Driver interface {
	// PutCity inserts or replaces a city.
	PutCity(ctx context.Context, city catalog.City) error

	// PutDeveloper inserts or replaces a developer.
	PutDeveloper(ctx context.Context, developer catalog.Developer) error

	// PutComplex inserts or replaces a complex.
	PutComplex(ctx context.Context, complex catalog.Complex) error

	// PutApartment inserts or replaces an apartment.
	PutApartment(ctx context.Context, apartment catalog.Apartment) error

	// PutReview inserts or replaces a review.
	PutReview(ctx context.Context, review catalog.Review) error

	// ListComplexes returns complexes matching filter, highest rating first,
	// with their developer populated.
	ListComplexes(ctx context.Context, filter ComplexFilter) ([]catalog.Complex, error)

	// GetComplex returns one complex with its developer populated.
	GetComplex(ctx context.Context, id string) (*catalog.Complex, error)

	// GetComplexes returns the complexes for ids in the order given.
	// Unknown ids are skipped; duplicates are returned once.
	GetComplexes(ctx context.Context, ids []string) ([]catalog.Complex, error)

	// ListApartments returns the apartments of a complex, cheapest first.
	ListApartments(ctx context.Context, complexID string) ([]catalog.Apartment, error)

	// ListReviews returns the reviews of a complex, newest first.
	ListReviews(ctx context.Context, complexID string) ([]catalog.Review, error)

	// RecordSearch stores a completed search turn.
	RecordSearch(ctx context.Context, record SearchRecord) error

	// ListSearches returns up to limit search records, newest first.
	// A limit <= 0 returns DefaultSearchLimit records.
	ListSearches(ctx context.Context, limit int) ([]SearchRecord, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ComplexFilter narrows ListComplexes. The zero value matches everything.
type ComplexFilter struct {
	CityID string
}

// DefaultSearchLimit bounds ListSearches when no limit is given.
const DefaultSearchLimit = 50

// SearchRecord is one completed ai-search turn.
type SearchRecord struct {
	ID         string        `json:"id"`
	Query      string        `json:"query"`
	CityID     string        `json:"city_id,omitempty"`
	Content    string        `json:"content"`
	Display    string        `json:"display"`
	ComplexIDs []string      `json:"complex_ids"`
	Fragments  int           `json:"fragments"`
	Recovered  int           `json:"recovered"`
	Dropped    int           `json:"dropped"`
	Duration   time.Duration `json:"duration_ns"`
	CreatedAt  time.Time     `json:"created_at"`
}
