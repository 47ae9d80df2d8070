/*
Package directory provides the HTTP interface for browsing the catalogue.

It serves the industry taxonomy, employer profiles and physical sites, and
exposes the per-entity wage read models (report listings and statistics
snapshots) that hang off organizations and locations.

All directory endpoints are public reads. Listings and statistics flow
through the version-keyed response cache; wage write paths bump the
relevant surface versions so stale entries expire by key rotation.
*/
package directory

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wdtp/api/internal/core/wage"
	"github.com/wdtp/api/internal/platform/apperr"
	"github.com/wdtp/api/internal/platform/cache"
	requestutil "github.com/wdtp/api/internal/platform/request"
	"github.com/wdtp/api/internal/platform/respond"
	"github.com/wdtp/api/pkg/convert"
	"github.com/wdtp/api/pkg/pagination"
)

// Handler bundles the directory service with the wage read models that are
// addressed through directory paths.
type Handler struct {
	service   *Service
	wages     *wage.Service
	responses *cache.ResponseCache
}

// NewHandler constructs the directory [Handler].
func NewHandler(service *Service, wages *wage.Service, responses *cache.ResponseCache) *Handler {
	return &Handler{
		service:   service,
		wages:     wages,
		responses: responses,
	}
}

// Routes returns a [chi.Router] exposing the browse surface.
//
// The router spans three top-level path families and is mounted at the API
// root. Detail segments accept a numeric ID or a slug where the entity has
// one; nested segments are always numeric.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Industries Endpoints
	router.Route("/industries", func(industryRoute chi.Router) {
		industryRoute.Get("/", handler.listIndustries)
		industryRoute.Get("/{identifier}", handler.getIndustry)
	})

	// ## Organizations Endpoints
	router.Route("/organizations", func(organizationRoute chi.Router) {
		organizationRoute.Get("/", handler.listOrganizations)
		organizationRoute.Get("/{identifier}", handler.getOrganization)
		organizationRoute.Get("/{id}/locations", handler.listOrganizationLocations)
		organizationRoute.Get("/{id}/wage-stats", handler.organizationWageStats)
	})

	// ## Locations Endpoints
	router.Route("/locations", func(locationRoute chi.Router) {
		locationRoute.Get("/", handler.listLocations)
		locationRoute.Get("/{id}", handler.getLocation)
		locationRoute.Get("/{id}/wage-reports", handler.listLocationWageReports)
		locationRoute.Get("/{id}/wage-stats", handler.locationWageStats)
	})

	return router
}

// # Industry Endpoints

/*
GET /api/v1/industries.

Description: Retrieves the full industry taxonomy as a flat list. The
taxonomy changes rarely, so responses are served from the version-keyed
cache until a seed or operator write bumps the surface.

Response:
  - 200: []Industry: Every industry ordered by name
*/
func (handler *Handler) listIndustries(writer http.ResponseWriter, request *http.Request) {
	industries, err := cache.Fetch(request.Context(), handler.responses, cache.KeyIndustries,
		"industries",
		func(loadContext context.Context) ([]*Industry, error) {
			return handler.service.ListIndustries(loadContext)
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, industries)
}

/*
GET /api/v1/industries/{identifier}.

Description: Retrieves a single industry by numeric ID or slug.

Request:
  - identifier: int64 or string slug

Response:
  - 200: Industry: Success
  - 404: ErrNotFound: Unknown industry
*/
func (handler *Handler) getIndustry(writer http.ResponseWriter, request *http.Request) {
	identifier := chi.URLParam(request, "identifier")

	industry, err := handler.service.GetIndustry(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, industry)
}

// # Organization Endpoints

// organizationPage is the cacheable shape of an employer listing.
type organizationPage struct {
	Items []*Organization `json:"items"`
	Total int             `json:"total"`
}

// locationPage is the cacheable shape of a site listing.
type locationPage struct {
	Items []*Location `json:"items"`
	Total int         `json:"total"`
}

/*
GET /api/v1/organizations.

Description: Provides a paginated list of active employers. Supports
substring search against name and slug, and scoping to one industry.

Request:
  - q: string (Search query)
  - industry_id: int64 (Scope to one industry)
  - limit: int
  - page: int

Response:
  - 200: []Organization: Paginated list of active employers
*/
func (handler *Handler) listOrganizations(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	filter := parseOrganizationFilter(request)

	page, err := cache.Fetch(request.Context(), handler.responses, cache.KeyOrganizations,
		"organizations?"+request.URL.RawQuery,
		func(loadContext context.Context) (organizationPage, error) {
			items, total, err := handler.service.ListOrganizations(loadContext, filter, paginationParams.Limit, paginationParams.Offset())
			if err != nil {
				return organizationPage{}, err
			}
			return organizationPage{Items: items, Total: total}, nil
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, page.Total))
}

/*
GET /api/v1/organizations/{identifier}.

Description: Retrieves a single active employer by numeric ID or slug.

Request:
  - identifier: int64 or string slug

Response:
  - 200: Organization: Success
  - 404: ErrNotFound: Unknown or inactive employer
*/
func (handler *Handler) getOrganization(writer http.ResponseWriter, request *http.Request) {
	identifier := chi.URLParam(request, "identifier")

	organization, err := handler.service.GetOrganization(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, organization)
}

/*
GET /api/v1/organizations/{id}/locations.

Description: Lists the active sites of one employer, alphabetically.

Request:
  - id: int64
  - limit: int
  - page: int

Response:
  - 200: []Location: Paginated list of sites
  - 404: ErrNotFound: Unknown or inactive employer
*/
func (handler *Handler) listOrganizationLocations(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	page, err := cache.Fetch(request.Context(), handler.responses, cache.KeyLocations,
		fmt.Sprintf("organizations:%d:locations?%s", id, request.URL.RawQuery),
		func(loadContext context.Context) (locationPage, error) {
			items, total, err := handler.service.OrganizationLocations(loadContext, id, paginationParams.Limit, paginationParams.Offset())
			if err != nil {
				return locationPage{}, err
			}
			return locationPage{Items: items, Total: total}, nil
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, page.Total))
}

/*
GET /api/v1/organizations/{id}/wage-stats.

Description: Returns the wage statistics snapshot across every approved
report of one employer. Served from the wages cache surface; report writes
rotate the version.

Request:
  - id: int64

Response:
  - 200: StatsSnapshot: Aggregates over approved reports
  - 404: ErrNotFound: Unknown or inactive employer
*/
func (handler *Handler) organizationWageStats(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := cache.Fetch(request.Context(), handler.responses, cache.KeyWages,
		fmt.Sprintf("organizations:%d:wage-stats", id),
		func(loadContext context.Context) (*wage.StatsSnapshot, error) {
			return handler.wages.OrganizationWageStats(loadContext, id)
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

// # Location Endpoints

/*
GET /api/v1/locations.

Description: Provides a paginated list of active sites. An optional
proximity filter switches ordering from name to distance and adds
distance_meters to every row.

Request:
  - city: string (Case-insensitive exact match)
  - near: string "lat,lng" (Proximity search origin)
  - radius_km: float (Search radius, default 10, max 100)
  - limit: int
  - page: int

Response:
  - 200: []Location: Paginated list of sites
  - 400: ErrValidation: Malformed near or radius_km values
*/
func (handler *Handler) listLocations(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter, err := parseLocationFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := cache.Fetch(request.Context(), handler.responses, cache.KeyLocations,
		"locations?"+request.URL.RawQuery,
		func(loadContext context.Context) (locationPage, error) {
			items, total, err := handler.service.ListLocations(loadContext, filter, paginationParams.Limit, paginationParams.Offset())
			if err != nil {
				return locationPage{}, err
			}
			return locationPage{Items: items, Total: total}, nil
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, page.Total))
}

/*
GET /api/v1/locations/{id}.

Description: Retrieves a single active site by its numeric identifier.

Request:
  - id: int64

Response:
  - 200: Location: Success
  - 404: ErrNotFound: Unknown or inactive site
*/
func (handler *Handler) getLocation(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	location, err := handler.service.GetLocation(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, location)
}

/*
GET /api/v1/locations/{id}/wage-reports.

Description: Lists the approved wage reports submitted for one site,
newest first.

Request:
  - id: int64
  - limit: int
  - page: int

Response:
  - 200: []wage.Report: Paginated list of approved reports
*/
func (handler *Handler) listLocationWageReports(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	filter := wage.Filter{LocationID: id}

	page, err := cache.Fetch(request.Context(), handler.responses, cache.KeyWages,
		fmt.Sprintf("locations:%d:wage-reports?%s", id, request.URL.RawQuery),
		func(loadContext context.Context) (locationReportPage, error) {
			items, total, err := handler.wages.ListReports(loadContext, filter, paginationParams.Limit, paginationParams.Offset())
			if err != nil {
				return locationReportPage{}, err
			}
			return locationReportPage{Items: items, Total: total}, nil
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, page.Total))
}

// locationReportPage is the cacheable shape of a per-site report listing.
type locationReportPage struct {
	Items []*wage.Report `json:"items"`
	Total int            `json:"total"`
}

/*
GET /api/v1/locations/{id}/wage-stats.

Description: Returns the wage statistics snapshot across the approved
reports of one site.

Request:
  - id: int64

Response:
  - 200: StatsSnapshot: Aggregates over approved reports
  - 404: ErrNotFound: Unknown or inactive site
*/
func (handler *Handler) locationWageStats(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := cache.Fetch(request.Context(), handler.responses, cache.KeyWages,
		fmt.Sprintf("locations:%d:wage-stats", id),
		func(loadContext context.Context) (*wage.StatsSnapshot, error) {
			return handler.wages.LocationWageStats(loadContext, id)
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

// # Query Parsing

// parseOrganizationFilter extracts the employer search parameters.
// A malformed industry_id degrades to the unscoped listing.
func parseOrganizationFilter(request *http.Request) OrganizationFilter {
	query := request.URL.Query()

	return OrganizationFilter{
		Query:      strings.TrimSpace(query.Get(FieldQuery)),
		IndustryID: int64(convert.ToInt(query.Get(FieldIndustryID))),
	}
}

/*
parseLocationFilter extracts the site search parameters.

The near parameter arrives as a single "lat,lng" pair. Malformed
coordinates are a caller error and reject the request; range checks
happen in the service.
*/
func parseLocationFilter(request *http.Request) (LocationFilter, error) {
	query := request.URL.Query()

	filter := LocationFilter{
		City: strings.TrimSpace(query.Get(FieldCity)),
	}

	rawNear := strings.TrimSpace(query.Get(FieldNear))
	if rawNear == "" {
		return filter, nil
	}

	parts := strings.Split(rawNear, ",")
	if len(parts) != 2 {
		return filter, apperr.ValidationError("Invalid query parameters",
			apperr.FieldError{Field: FieldNear, Message: "must be formatted lat,lng"})
	}

	latitude, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	longitude, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return filter, apperr.ValidationError("Invalid query parameters",
			apperr.FieldError{Field: FieldNear, Message: "coordinates must be decimal degrees"})
	}

	near := &NearFilter{Latitude: latitude, Longitude: longitude}

	if rawRadius := strings.TrimSpace(query.Get(FieldRadiusKM)); rawRadius != "" {
		radius, err := strconv.ParseFloat(rawRadius, 64)
		if err != nil {
			return filter, apperr.ValidationError("Invalid query parameters",
				apperr.FieldError{Field: FieldRadiusKM, Message: "must be a number"})
		}
		near.RadiusKM = radius
	}

	filter.Near = near
	return filter, nil
}
