package sqldriver

// Table names.
const (
	tableCities     = "cities"
	tableDevelopers = "developers"
	tableComplexes  = "complexes"
	tableApartments = "apartments"
	tableReviews    = "reviews"
	tableSearches   = "searches"
)

// schema is the DDL shared by every SQL dialect in use. Column types are
// chosen to be valid for both SQLite and PostgreSQL. Timestamps are stored as
// Unix nanoseconds and string lists as JSON text, which keeps scanning
// identical across drivers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS developers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		projects_count INTEGER NOT NULL DEFAULT 0,
		years_on_market INTEGER NOT NULL DEFAULT 0,
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		city_id TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS complexes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		price_from BIGINT,
		price_to BIGINT,
		completion_date TEXT NOT NULL DEFAULT '',
		features TEXT NOT NULL DEFAULT '[]',
		developer_id TEXT NOT NULL DEFAULT '',
		city_id TEXT NOT NULL DEFAULT '',
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		reviews_count INTEGER NOT NULL DEFAULT 0,
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS complexes_city_rating ON complexes (city_id, rating)`,
	`CREATE TABLE IF NOT EXISTS apartments (
		id TEXT PRIMARY KEY,
		complex_id TEXT NOT NULL,
		rooms INTEGER NOT NULL DEFAULT 0,
		area DOUBLE PRECISION NOT NULL DEFAULT 0,
		floor INTEGER NOT NULL DEFAULT 0,
		total_floors INTEGER NOT NULL DEFAULT 0,
		price BIGINT NOT NULL DEFAULT 0,
		is_available BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS apartments_complex ON apartments (complex_id)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		complex_id TEXT NOT NULL,
		author_name TEXT NOT NULL DEFAULT '',
		rating INTEGER NOT NULL DEFAULT 0,
		text TEXT NOT NULL DEFAULT '',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS reviews_complex ON reviews (complex_id)`,
	`CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		city_id TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		display TEXT NOT NULL DEFAULT '',
		complex_ids TEXT NOT NULL DEFAULT '[]',
		fragments INTEGER NOT NULL DEFAULT 0,
		recovered INTEGER NOT NULL DEFAULT 0,
		dropped INTEGER NOT NULL DEFAULT 0,
		duration_ns BIGINT NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS searches_created ON searches (created_at)`,
}
