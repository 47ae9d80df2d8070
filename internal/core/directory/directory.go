/*
Package directory manages the browsable hierarchy of the wage catalogue.

It handles the retrieval of the entities a wage report hangs off of, from the
broad industry taxonomy down to the physical storefront a shift was worked at.

# Core Responsibility

  - Taxonomy: Maintains the [Industry] classification tree (flat reads, two levels deep).
  - Employers: Catalogues [Organization] profiles with their industry membership.
  - Geography: Tracks [Location] storefronts with PostGIS-backed proximity search.

This package is read-only at the API surface. Rows are provisioned by the
seed loader and by operators working directly against the database.
*/
package directory

import "time"

// # Industry Domain

// Industry classifies organizations into a browsable taxonomy.
// A nil ParentID marks a top-level sector.
type Industry struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parent_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// # Organization Domain

// Organization represents an employer whose locations collect wage reports.
type Organization struct {
	ID               int64     `json:"id"`
	IndustryID       *int64    `json:"industry_id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Website          *string   `json:"website"`
	Description      *string   `json:"description"`
	IsActive         bool      `json:"is_active"`
	WageReportsCount int       `json:"wage_reports_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// # Location Domain

// Location represents a single physical site of an organization.
//
// Latitude and Longitude mirror the PostGIS geography column so callers
// never need to parse WKB. DistanceMeters is populated only by proximity
// searches and reports the distance from the search origin.
type Location struct {
	ID               int64     `json:"id"`
	OrganizationID   int64     `json:"organization_id"`
	Name             string    `json:"name"`
	AddressLine      *string   `json:"address_line"`
	City             string    `json:"city"`
	Region           string    `json:"region"`
	PostalCode       *string   `json:"postal_code"`
	CountryCode      string    `json:"country_code"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	IsActive         bool      `json:"is_active"`
	WageReportsCount int       `json:"wage_reports_count"`
	DistanceMeters   *float64  `json:"distance_meters,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// # Search Params

// OrganizationFilter holds the parameters for a paginated organization search.
type OrganizationFilter struct {
	Query      string // Substring search against name and slug
	IndustryID int64  // Zero means all industries
}

// NearFilter bounds a proximity search around a geographic origin.
type NearFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

// LocationFilter holds the parameters for a paginated location search.
type LocationFilter struct {
	City string
	Near *NearFilter
}

// # Field Identifiers

const (
	FieldQuery      = "q"
	FieldIndustryID = "industry_id"
	FieldCity       = "city"
	FieldNear       = "near"
	FieldRadiusKM   = "radius_km"
)

// # Proximity Defaults

const (
	// DefaultRadiusKM applies when a near search omits radius_km.
	DefaultRadiusKM = 10.0

	// MaxRadiusKM caps the search area a single query may scan.
	MaxRadiusKM = 100.0
)
