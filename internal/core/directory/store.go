// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package directory

import "context"

// # Directory Data Access

// Repository defines the data access contract for the browsable directory.
type Repository interface {

	// ## Industry Data Access

	/*
		ListIndustries retrieves the full industry taxonomy as a flat list.

		Parameters:
		  - context: context.Context

		Returns:
		  - []*Industry: Every industry row ordered by name
		  - error: Database retrieval failures
	*/
	ListIndustries(context context.Context) ([]*Industry, error)

	/*
		GetIndustryByID fetches a single industry by its primary key.

		Parameters:
		  - context: context.Context
		  - id: int64 identifier

		Returns:
		  - *Industry: The hydrated taxonomy entry
		  - error: ErrNotFound if missing
	*/
	GetIndustryByID(context context.Context, id int64) (*Industry, error)

	// GetIndustryBySlug fetches a single industry by its URL identifier.
	GetIndustryBySlug(context context.Context, slug string) (*Industry, error)

	// ## Organization Data Access

	/*
		ListOrganizations retrieves a filtered and paginated employer list.

		Only active organizations are visible.

		Parameters:
		  - context: context.Context
		  - f: OrganizationFilter (Search parameters)
		  - limit, offset: int (Pagination bounds)

		Returns:
		  - []*Organization: Paginated matching results
		  - int: Total matching count for pagination metadata
		  - error: Database execution errors
	*/
	ListOrganizations(context context.Context, f OrganizationFilter, limit, offset int) ([]*Organization, int, error)

	/*
		GetOrganizationByID retrieves a single active employer by its primary key.

		Parameters:
		  - context: context.Context
		  - id: int64 identifier

		Returns:
		  - *Organization: Hydrated employer profile
		  - error: ErrNotFound for missing or inactive rows
	*/
	GetOrganizationByID(context context.Context, id int64) (*Organization, error)

	// GetOrganizationBySlug retrieves a single active employer by its URL identifier.
	GetOrganizationBySlug(context context.Context, slug string) (*Organization, error)

	// ListOrganizationLocations retrieves the active sites of one employer.
	ListOrganizationLocations(context context.Context, organizationID int64, limit, offset int) ([]*Location, int, error)

	// ## Location Data Access

	/*
		ListLocations retrieves a filtered and paginated site list.

		When f.Near is set the query runs against the PostGIS geography
		index, results carry DistanceMeters, and ordering switches from
		name to proximity.

		Parameters:
		  - context: context.Context
		  - f: LocationFilter
		  - limit, offset: int

		Returns:
		  - []*Location: Collection of active sites
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	ListLocations(context context.Context, f LocationFilter, limit, offset int) ([]*Location, int, error)

	/*
		GetLocationByID retrieves a single active site by its primary key.

		Parameters:
		  - context: context.Context
		  - id: int64 identifier

		Returns:
		  - *Location: Hydrated site entity
		  - error: ErrNotFound for missing or inactive rows
	*/
	GetLocationByID(context context.Context, id int64) (*Location, error)
}
