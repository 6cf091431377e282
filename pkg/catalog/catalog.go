// Package catalog defines the listing rows of the residential-complex
// catalog: cities, developers, complexes, apartments and reviews.
package catalog

import "time"

// City is a region the catalog is partitioned by.
type City struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Slug      string    `json:"slug" yaml:"slug"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Developer is a construction company.
type Developer struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Slug          string    `json:"slug" yaml:"slug"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	ProjectsCount int       `json:"projects_count" yaml:"projects_count,omitempty"`
	YearsOnMarket int       `json:"years_on_market" yaml:"years_on_market,omitempty"`
	Rating        float64   `json:"rating" yaml:"rating,omitempty"`
	CityID        string    `json:"city_id,omitempty" yaml:"city_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Complex is a residential complex ("ЖК").
type Complex struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Slug           string   `json:"slug" yaml:"slug"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Address        string   `json:"address,omitempty" yaml:"address,omitempty"`
	District       string   `json:"district,omitempty" yaml:"district,omitempty"`
	PriceFrom      *int64   `json:"price_from" yaml:"price_from,omitempty"`
	PriceTo        *int64   `json:"price_to" yaml:"price_to,omitempty"`
	CompletionDate string   `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	Features       []string `json:"features" yaml:"features,omitempty"`
	DeveloperID    string   `json:"developer_id,omitempty" yaml:"developer_id,omitempty"`
	CityID         string   `json:"city_id,omitempty" yaml:"city_id,omitempty"`
	Rating         float64  `json:"rating" yaml:"rating,omitempty"`
	ReviewsCount   int      `json:"reviews_count" yaml:"reviews_count,omitempty"`
	IsFeatured     bool     `json:"is_featured" yaml:"is_featured,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`

	// Developer is populated by reads that join the developer row.
	Developer *Developer `json:"developer,omitempty" yaml:"-"`
}

// Apartment is a unit for sale in a complex.
type Apartment struct {
	ID          string  `json:"id" yaml:"id"`
	ComplexID   string  `json:"complex_id" yaml:"complex_id"`
	Rooms       int     `json:"rooms" yaml:"rooms"`
	Area        float64 `json:"area" yaml:"area"`
	Floor       int     `json:"floor,omitempty" yaml:"floor,omitempty"`
	TotalFloors int     `json:"total_floors,omitempty" yaml:"total_floors,omitempty"`
	Price       int64   `json:"price" yaml:"price"`
	IsAvailable bool    `json:"is_available" yaml:"is_available"`
}

// PricePerSqm returns the price per square meter, or 0 without an area.
func (a Apartment) PricePerSqm() int64 {
	if a.Area <= 0 {
		return 0
	}
	return int64(float64(a.Price) / a.Area)
}

// Review is a user review of a complex.
type Review struct {
	ID         string    `json:"id" yaml:"id"`
	ComplexID  string    `json:"complex_id" yaml:"complex_id"`
	AuthorName string    `json:"author_name" yaml:"author_name"`
	Rating     int       `json:"rating" yaml:"rating"`
	Text       string    `json:"text,omitempty" yaml:"text,omitempty"`
	IsVerified bool      `json:"is_verified" yaml:"is_verified,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at,omitempty"`
}
