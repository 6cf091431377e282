// Package sqldriver implements storage.Driver on top of ent's dialect-aware
// SQL builders. It is database-agnostic and is embedded by the sqlite,
// postgres and libsql drivers.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/novostroy/pkg/catalog"
	"github.com/papercomputeco/novostroy/pkg/storage"
)

var (
	cityColumns      = []string{"id", "name", "slug", "created_at"}
	developerColumns = []string{"id", "name", "slug", "description", "projects_count", "years_on_market", "rating", "city_id", "created_at"}
	complexColumns   = []string{
		"id", "name", "slug", "description", "address", "district", "price_from", "price_to",
		"completion_date", "features", "developer_id", "city_id", "rating", "reviews_count",
		"is_featured", "created_at",
	}
	apartmentColumns = []string{"id", "complex_id", "rooms", "area", "floor", "total_floors", "price", "is_available"}
	reviewColumns    = []string{"id", "complex_id", "author_name", "rating", "text", "is_verified", "created_at"}
	searchColumns    = []string{
		"id", "query", "city_id", "content", "display", "complex_ids", "fragments", "recovered",
		"dropped", "duration_ns", "created_at",
	}
)

// Driver provides storage operations over an ent SQL driver.
type Driver struct {
	drv     *entsql.Driver
	builder *entsql.DialectBuilder
}

var _ storage.Driver = (*Driver)(nil)

// New wraps an opened database and creates the schema if it is missing.
// dialectName is one of entgo.io/ent/dialect's names.
func New(ctx context.Context, dialectName string, db *sql.DB) (*Driver, error) {
	d := &Driver{
		drv:     entsql.OpenDB(dialectName, db),
		builder: entsql.Dialect(dialectName),
	}

	if err := d.Migrate(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Migrate creates missing tables and indexes. It only ever adds.
func (d *Driver) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := d.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DB returns the underlying database handle.
func (d *Driver) DB() *sql.DB {
	return d.drv.DB()
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.drv.Close()
}

func (d *Driver) PutCity(ctx context.Context, city catalog.City) error {
	return d.upsert(ctx, tableCities, cityColumns,
		city.ID, city.Name, city.Slug, unixNano(city.CreatedAt))
}

func (d *Driver) PutDeveloper(ctx context.Context, dev catalog.Developer) error {
	return d.upsert(ctx, tableDevelopers, developerColumns,
		dev.ID, dev.Name, dev.Slug, dev.Description, dev.ProjectsCount, dev.YearsOnMarket,
		dev.Rating, dev.CityID, unixNano(dev.CreatedAt))
}

func (d *Driver) PutComplex(ctx context.Context, c catalog.Complex) error {
	features, err := marshalList(c.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	return d.upsert(ctx, tableComplexes, complexColumns,
		c.ID, c.Name, c.Slug, c.Description, c.Address, c.District, c.PriceFrom, c.PriceTo,
		c.CompletionDate, features, c.DeveloperID, c.CityID, c.Rating, c.ReviewsCount,
		c.IsFeatured, unixNano(c.CreatedAt))
}

func (d *Driver) PutApartment(ctx context.Context, a catalog.Apartment) error {
	return d.upsert(ctx, tableApartments, apartmentColumns,
		a.ID, a.ComplexID, a.Rooms, a.Area, a.Floor, a.TotalFloors, a.Price, a.IsAvailable)
}

func (d *Driver) PutReview(ctx context.Context, r catalog.Review) error {
	return d.upsert(ctx, tableReviews, reviewColumns,
		r.ID, r.ComplexID, r.AuthorName, r.Rating, r.Text, r.IsVerified, unixNano(r.CreatedAt))
}

// ListComplexes returns complexes matching filter, highest rating first. Ties
// are broken by name.
func (d *Driver) ListComplexes(ctx context.Context, filter storage.ComplexFilter) ([]catalog.Complex, error) {
	sel := d.builder.Select(complexColumns...).
		From(d.builder.Table(tableComplexes)).
		OrderBy(entsql.Desc("rating"), entsql.Asc("name"))
	if filter.CityID != "" {
		sel.Where(entsql.EQ("city_id", filter.CityID))
	}

	complexes, err := d.queryComplexes(ctx, sel)
	if err != nil {
		return nil, err
	}
	if err := d.attachDevelopers(ctx, complexes); err != nil {
		return nil, err
	}
	return complexes, nil
}

func (d *Driver) GetComplex(ctx context.Context, id string) (*catalog.Complex, error) {
	sel := d.builder.Select(complexColumns...).
		From(d.builder.Table(tableComplexes)).
		Where(entsql.EQ("id", id))

	complexes, err := d.queryComplexes(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(complexes) == 0 {
		return nil, storage.NotFoundError{Kind: "complex", ID: id}
	}
	if err := d.attachDevelopers(ctx, complexes); err != nil {
		return nil, err
	}
	return &complexes[0], nil
}

// GetComplexes returns the complexes for ids in the order given.
func (d *Driver) GetComplexes(ctx context.Context, ids []string) ([]catalog.Complex, error) {
	result := []catalog.Complex{}
	if len(ids) == 0 {
		return result, nil
	}

	sel := d.builder.Select(complexColumns...).
		From(d.builder.Table(tableComplexes)).
		Where(entsql.In("id", toAny(ids)...))

	complexes, err := d.queryComplexes(ctx, sel)
	if err != nil {
		return nil, err
	}
	if err := d.attachDevelopers(ctx, complexes); err != nil {
		return nil, err
	}

	byID := make(map[string]catalog.Complex, len(complexes))
	for _, c := range complexes {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			result = append(result, c)
			delete(byID, id)
		}
	}
	return result, nil
}

func (d *Driver) ListApartments(ctx context.Context, complexID string) ([]catalog.Apartment, error) {
	query, args := d.builder.Select(apartmentColumns...).
		From(d.builder.Table(tableApartments)).
		Where(entsql.EQ("complex_id", complexID)).
		OrderBy(entsql.Asc("price"), entsql.Asc("id")).
		Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	defer rows.Close()

	result := []catalog.Apartment{}
	for rows.Next() {
		var a catalog.Apartment
		if err := rows.Scan(&a.ID, &a.ComplexID, &a.Rooms, &a.Area, &a.Floor, &a.TotalFloors, &a.Price, &a.IsAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan apartment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (d *Driver) ListReviews(ctx context.Context, complexID string) ([]catalog.Review, error) {
	query, args := d.builder.Select(reviewColumns...).
		From(d.builder.Table(tableReviews)).
		Where(entsql.EQ("complex_id", complexID)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("id")).
		Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	result := []catalog.Review{}
	for rows.Next() {
		var (
			r         catalog.Review
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.ComplexID, &r.AuthorName, &r.Rating, &r.Text, &r.IsVerified, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.CreatedAt = fromUnixNano(createdAt)
		result = append(result, r)
	}
	return result, rows.Err()
}

func (d *Driver) RecordSearch(ctx context.Context, rec storage.SearchRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	ids, err := marshalList(rec.ComplexIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal complex ids: %w", err)
	}

	query, args, err := d.builder.Insert(tableSearches).
		Columns(searchColumns...).
		Values(rec.ID, rec.Query, rec.CityID, rec.Content, rec.Display, ids, rec.Fragments,
			rec.Recovered, rec.Dropped, int64(rec.Duration), unixNano(rec.CreatedAt)).
		QueryErr()
	if err != nil {
		return fmt.Errorf("failed to build search insert: %w", err)
	}

	if err := d.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (d *Driver) ListSearches(ctx context.Context, limit int) ([]storage.SearchRecord, error) {
	if limit <= 0 {
		limit = storage.DefaultSearchLimit
	}

	query, args := d.builder.Select(searchColumns...).
		From(d.builder.Table(tableSearches)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(limit).
		Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	result := []storage.SearchRecord{}
	for rows.Next() {
		var (
			rec        storage.SearchRecord
			ids        string
			durationNs int64
			createdAt  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.CityID, &rec.Content, &rec.Display, &ids,
			&rec.Fragments, &rec.Recovered, &rec.Dropped, &durationNs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &rec.ComplexIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal complex ids: %w", err)
		}
		rec.Duration = time.Duration(durationNs)
		rec.CreatedAt = fromUnixNano(createdAt)
		result = append(result, rec)
	}
	return result, rows.Err()
}

// upsert inserts one row, replacing every column of an existing row with
// the same id.
func (d *Driver) upsert(ctx context.Context, table string, columns []string, values ...any) error {
	query, args, err := d.builder.Insert(table).
		Columns(columns...).
		Values(values...).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		QueryErr()
	if err != nil {
		return fmt.Errorf("failed to build %s upsert: %w", table, err)
	}

	if err := d.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}
	return nil
}

func (d *Driver) queryComplexes(ctx context.Context, sel *entsql.Selector) ([]catalog.Complex, error) {
	query, args := sel.Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to query complexes: %w", err)
	}
	defer rows.Close()

	result := []catalog.Complex{}
	for rows.Next() {
		var (
			c         catalog.Complex
			priceFrom sql.NullInt64
			priceTo   sql.NullInt64
			features  string
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Address, &c.District,
			&priceFrom, &priceTo, &c.CompletionDate, &features, &c.DeveloperID, &c.CityID,
			&c.Rating, &c.ReviewsCount, &c.IsFeatured, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan complex: %w", err)
		}
		if priceFrom.Valid {
			c.PriceFrom = &priceFrom.Int64
		}
		if priceTo.Valid {
			c.PriceTo = &priceTo.Int64
		}
		if err := json.Unmarshal([]byte(features), &c.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features of %s: %w", c.ID, err)
		}
		c.CreatedAt = fromUnixNano(createdAt)
		result = append(result, c)
	}
	return result, rows.Err()
}

// attachDevelopers loads the developers referenced by complexes and sets
// their Developer field.
func (d *Driver) attachDevelopers(ctx context.Context, complexes []catalog.Complex) error {
	var ids []any
	seen := map[string]bool{}
	for _, c := range complexes {
		if c.DeveloperID != "" && !seen[c.DeveloperID] {
			seen[c.DeveloperID] = true
			ids = append(ids, c.DeveloperID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query, args := d.builder.Select(developerColumns...).
		From(d.builder.Table(tableDevelopers)).
		Where(entsql.In("id", ids...)).
		Query()

	var rows entsql.Rows
	if err := d.drv.Query(ctx, query, args, &rows); err != nil {
		return fmt.Errorf("failed to query developers: %w", err)
	}
	defer rows.Close()

	developers := map[string]*catalog.Developer{}
	for rows.Next() {
		var (
			dev       catalog.Developer
			createdAt int64
		)
		if err := rows.Scan(&dev.ID, &dev.Name, &dev.Slug, &dev.Description, &dev.ProjectsCount,
			&dev.YearsOnMarket, &dev.Rating, &dev.CityID, &createdAt); err != nil {
			return fmt.Errorf("failed to scan developer: %w", err)
		}
		dev.CreatedAt = fromUnixNano(createdAt)
		developers[dev.ID] = &dev
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range complexes {
		complexes[i].Developer = developers[complexes[i].DeveloperID]
	}
	return nil
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
