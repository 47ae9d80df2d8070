// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package directory

import (
	"context"
	"strconv"

	"github.com/wdtp/api/internal/platform/validate"
)

// # Service Layer

// Service orchestrates read access to the directory.
//
// It resolves the dual identifier scheme (numeric primary keys and URL slugs
// share one path segment) and bounds proximity searches before they reach
// the spatial index.
type Service struct {
	repo Repository
}

// NewService constructs a new directory [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// # Industry Methods

/*
ListIndustries returns the complete industry taxonomy as a flat list.

Parameters:
  - context: context.Context

Returns:
  - []*Industry: Every taxonomy entry ordered by name
  - error: Database retrieval failures
*/
func (service *Service) ListIndustries(context context.Context) ([]*Industry, error) {
	return service.repo.ListIndustries(context)
}

/*
GetIndustry retrieves one industry by numeric ID or slug.

Parameters:
  - context: context.Context
  - identifier: string (numeric primary key or URL slug)

Returns:
  - *Industry: Hydrated taxonomy entry
  - error: Not found or storage errors
*/
func (service *Service) GetIndustry(context context.Context, identifier string) (*Industry, error) {
	if id, numeric := parseNumericKey(identifier); numeric {
		return service.repo.GetIndustryByID(context, id)
	}
	return service.repo.GetIndustryBySlug(context, identifier)
}

// # Organization Methods

/*
ListOrganizations returns a filtered, paginated employer listing.

Parameters:
  - context: context.Context
  - f: OrganizationFilter (Search and industry scoping)
  - limit, offset: int (Pagination bounds)

Returns:
  - []*Organization: Matching active employers
  - int: Total matching count
  - error: Database retrieval failures
*/
func (service *Service) ListOrganizations(context context.Context, f OrganizationFilter, limit, offset int) ([]*Organization, int, error) {
	return service.repo.ListOrganizations(context, f, limit, offset)
}

/*
GetOrganization retrieves one active employer by numeric ID or slug.

Parameters:
  - context: context.Context
  - identifier: string (numeric primary key or URL slug)

Returns:
  - *Organization: Hydrated employer profile
  - error: Not found or storage errors
*/
func (service *Service) GetOrganization(context context.Context, identifier string) (*Organization, error) {
	if id, numeric := parseNumericKey(identifier); numeric {
		return service.repo.GetOrganizationByID(context, id)
	}
	return service.repo.GetOrganizationBySlug(context, identifier)
}

// OrganizationLocations lists the active sites of one employer.
// Unknown or inactive employers surface as not found rather than an empty page.
func (service *Service) OrganizationLocations(context context.Context, organizationID int64, limit, offset int) ([]*Location, int, error) {
	if _, err := service.repo.GetOrganizationByID(context, organizationID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListOrganizationLocations(context, organizationID, limit, offset)
}

// # Location Methods

/*
ListLocations returns a filtered, paginated site listing.

A proximity filter is validated and defaulted before it reaches the store:
omitted radii fall back to [DefaultRadiusKM] and the search area never
exceeds [MaxRadiusKM].

Parameters:
  - context: context.Context
  - f: LocationFilter
  - limit, offset: int

Returns:
  - []*Location: Matching active sites, nearest first for proximity searches
  - int: Total matching count
  - error: Validation or database failures
*/
func (service *Service) ListLocations(context context.Context, f LocationFilter, limit, offset int) ([]*Location, int, error) {
	if f.Near != nil {
		if f.Near.RadiusKM == 0 {
			f.Near.RadiusKM = DefaultRadiusKM
		}
		if err := validateNear(f.Near); err != nil {
			return nil, 0, err
		}
	}
	return service.repo.ListLocations(context, f, limit, offset)
}

// GetLocation retrieves one active site by its numeric ID.
func (service *Service) GetLocation(context context.Context, id int64) (*Location, error) {
	return service.repo.GetLocationByID(context, id)
}

// # Helpers

// parseNumericKey reports whether the identifier is a usable primary key.
func parseNumericKey(identifier string) (int64, bool) {
	id, err := strconv.ParseInt(identifier, 10, 64)
	return id, err == nil && id > 0
}

// validateNear bounds the proximity search parameters.
func validateNear(near *NearFilter) error {
	v := &validate.Validator{}
	v.Custom(FieldNear, near.Latitude < -90 || near.Latitude > 90, "latitude must be between -90 and 90")
	v.Custom(FieldNear, near.Longitude < -180 || near.Longitude > 180, "longitude must be between -180 and 180")
	v.Custom(FieldRadiusKM, near.RadiusKM < 0, "must not be negative")
	v.Custom(FieldRadiusKM, near.RadiusKM > MaxRadiusKM, "must not exceed 100 kilometers")
	return v.Err()
}
