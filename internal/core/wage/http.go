// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wdtp/api/internal/platform/apperr"
	"github.com/wdtp/api/internal/platform/cache"
	"github.com/wdtp/api/internal/platform/middleware"
	requestutil "github.com/wdtp/api/internal/platform/request"
	"github.com/wdtp/api/internal/platform/respond"
	"github.com/wdtp/api/internal/platform/sec"
	"github.com/wdtp/api/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for wage report submission, browsing
// and lifecycle management.
type Handler struct {
	service        *Service
	responses      *cache.ResponseCache
	submitThrottle func(http.Handler) http.Handler
}

// NewHandler constructs a new wage [Handler].
//
// submitThrottle is the tight per-IP limiter applied to submissions only;
// the server builds it alongside the global rate limiter.
func NewHandler(service *Service, responses *cache.ResponseCache, submitThrottle func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:        service,
		responses:      responses,
		submitThrottle: submitThrottle,
	}
}

// Routes returns a [chi.Router] configured with the wage report endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Approved reports and per-report detail.
//   - Submission (Public, throttled): Anonymous or attributed reports.
//   - Lifecycle (Authenticated): Owner-or-moderator wage updates and deletion.
//   - Moderation (Restricted): Status overrides and restoration.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listReports)
	router.Get("/{id}", handler.getReport)

	// ## Submission (anonymous allowed, tightly throttled)
	router.With(handler.submitThrottle).Post("/", handler.submitReport)

	// ## Lifecycle (owner or moderator; ownership enforced by the service)
	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		authed.Patch("/{id}", handler.updateWage)
		authed.Delete("/{id}", handler.deleteReport)
	})

	// ## Moderation (moderator or admin)
	router.Group(func(moderation chi.Router) {
		moderation.Use(middleware.RequireRole(sec.RoleModerator))

		moderation.Post("/{id}/restore", handler.restoreReport)
		moderation.Patch("/{id}/status", handler.moderateReport)
	})

	return router
}

// # Discovery Endpoints

// reportPage is the cacheable shape of a wage report listing.
type reportPage struct {
	Items []*Report `json:"items"`
	Total int       `json:"total"`
}

/*
GET /api/v1/wage-reports.

Description: Retrieves a paginated list of approved wage reports. Results
are served from the version-keyed response cache when possible.

Request:
  - location_id: int (Scope to one location)
  - organization_id: int (Scope to one organization)
  - employment_type: string (full_time, part_time, seasonal, contract)
  - min_hourly_cents: int (Lower bound on the normalized rate)
  - max_hourly_cents: int (Upper bound on the normalized rate)
  - limit: int
  - page: int

Response:
  - 200: []Report: Paginated list of approved reports
*/
func (handler *Handler) listReports(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	filter := parseFilter(request)

	page, err := cache.Fetch(request.Context(), handler.responses, cache.KeyWages,
		"reports?"+request.URL.RawQuery,
		func(loadContext context.Context) (reportPage, error) {
			items, total, err := handler.service.ListReports(loadContext, filter, paginationParams.Limit, paginationParams.Offset())
			if err != nil {
				return reportPage{}, err
			}
			return reportPage{Items: items, Total: total}, nil
		})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page.Items, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, page.Total))
}

/*
GET /api/v1/wage-reports/{id}.

Description: Retrieves a single wage report by its numeric identifier.
Pending and rejected reports remain readable here so submitters can follow
their own report's moderation state; soft-deleted reports 404.

Request:
  - id: int64

Response:
  - 200: Report: Success
  - 400: ErrValidation: Invalid identifier format
  - 404: ErrNotFound: Report missing or deleted
*/
func (handler *Handler) getReport(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.GetReport(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

// # Request Payloads

// submitReportRequest defines the inbound JSON schema for a submission.
type submitReportRequest struct {
	LocationID     int64   `json:"location_id"`
	JobTitle       string  `json:"job_title"`
	EmploymentType string  `json:"employment_type"`
	WagePeriod     string  `json:"wage_period"`
	Currency       string  `json:"currency"`
	AmountCents    int64   `json:"amount_cents"`
	HoursPerWeek   *int    `json:"hours_per_week"`
	EffectiveDate  string  `json:"effective_date"`
	TipsIncluded   bool    `json:"tips_included"`
	Unionized      *bool   `json:"unionized"`
	Notes          *string `json:"notes"`
}

// updateWageRequest defines the inbound JSON schema for a partial wage
// update. Absent fields leave the stored values unchanged.
type updateWageRequest struct {
	AmountCents   int64  `json:"amount_cents"`
	WagePeriod    string `json:"wage_period"`
	Currency      string `json:"currency"`
	HoursPerWeek  *int   `json:"hours_per_week"`
	EffectiveDate string `json:"effective_date"`
	TipsIncluded  *bool  `json:"tips_included"`
	Unionized     *bool  `json:"unionized"`
}

// moderateReportRequest defines the inbound JSON schema for a status override.
type moderateReportRequest struct {
	Status string `json:"status"`
}

// # Submission Endpoint

/*
POST /api/v1/wage-reports.

Description: Submits a new wage report against a location. Submissions work
without authentication; when a verified token is present the report is
attributed to the caller, which later allows them to update or delete it.

Request (Body):
  - submitReportRequest: JSON object

Response:
  - 201: Report: Created report with its normalized rate, score and status
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 404: ErrNotFound: Location missing or inactive
  - 429: ErrRateLimited: Submission throttle tripped
*/
func (handler *Handler) submitReport(writer http.ResponseWriter, request *http.Request) {
	var input submitReportRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	effectiveDate, err := parseEffectiveDate(input.EffectiveDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	report := &Report{
		LocationID:     input.LocationID,
		JobTitle:       input.JobTitle,
		EmploymentType: EmploymentType(input.EmploymentType),
		WagePeriod:     WagePeriod(input.WagePeriod),
		Currency:       input.Currency,
		AmountCents:    input.AmountCents,
		HoursPerWeek:   input.HoursPerWeek,
		EffectiveDate:  effectiveDate,
		TipsIncluded:   input.TipsIncluded,
		Unionized:      input.Unionized,
		Notes:          input.Notes,
	}

	// Attribution is optional; anonymous submissions carry no user ID
	if claims := requestutil.Claims(request); claims != nil {
		report.UserID = &claims.UserID
	}

	if err := handler.service.Submit(request.Context(), report); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, report)
}

// # Lifecycle Endpoints

/*
PATCH /api/v1/wage-reports/{id}.

Description: Applies a partial update to the wage-bearing fields of an
existing report. The normalized rate and sanity score are recomputed, and
the implied status replaces the stored one.

Request:
  - id: int64
  - body: updateWageRequest (Partial JSON)

Response:
  - 200: Report: Updated report
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Missing or invalid token
  - 403: ErrForbidden: Caller does not own the report
  - 404: ErrNotFound: Report missing or deleted
*/
func (handler *Handler) updateWage(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateWageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	effectiveDate, err := parseEffectiveDate(input.EffectiveDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := WagePatch{
		AmountCents:   input.AmountCents,
		WagePeriod:    WagePeriod(input.WagePeriod),
		Currency:      input.Currency,
		HoursPerWeek:  input.HoursPerWeek,
		EffectiveDate: effectiveDate,
		TipsIncluded:  input.TipsIncluded,
		Unionized:     input.Unionized,
	}

	report, err := handler.service.UpdateWage(request.Context(), requestutil.Claims(request), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

/*
DELETE /api/v1/wage-reports/{id}.

Description: Soft-deletes a wage report. The report leaves all listings,
statistics and counters but remains restorable by a moderator.

Request:
  - id: int64

Response:
  - 204: No Content: Success
  - 401: ErrUnauthorized: Missing or invalid token
  - 403: ErrForbidden: Caller does not own the report
  - 404: ErrNotFound: Report missing or already deleted
*/
func (handler *Handler) deleteReport(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), requestutil.Claims(request), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Moderation Endpoints

/*
POST /api/v1/wage-reports/{id}/restore.

Description: Brings a soft-deleted report back with its stored status and
score intact.

Request:
  - id: int64

Response:
  - 200: Report: Restored report
  - 401: ErrUnauthorized: Missing or invalid token
  - 403: ErrForbidden: Insufficient permissions
  - 404: ErrNotFound: Report missing
  - 409: ErrConflict: Report is not deleted
*/
func (handler *Handler) restoreReport(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.Restore(request.Context(), requestutil.Claims(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

/*
PATCH /api/v1/wage-reports/{id}/status.

Description: Overrides the moderation status of a report. The recorded
sanity score is left untouched; moderator judgement outranks it.

Request:
  - id: int64
  - body: moderateReportRequest

Response:
  - 200: Report: Report with its new status
  - 400: ErrInvalidJSON/Validation: Unknown status value
  - 401: ErrUnauthorized: Missing or invalid token
  - 403: ErrForbidden: Insufficient permissions
  - 404: ErrNotFound: Report missing or deleted
*/
func (handler *Handler) moderateReport(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.NumericID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input moderateReportRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.Moderate(request.Context(), id, Status(input.Status))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

// # Helpers

/*
parseFilter reads the wage listing filters from the query string.

Unparseable numbers and unknown employment types are dropped rather than
rejected, matching how the discovery filters behave elsewhere.

Parameters:
  - request: *http.Request

Returns:
  - Filter: The populated filter
*/
func parseFilter(request *http.Request) Filter {
	queryParams := request.URL.Query()

	filter := Filter{}

	if id, err := strconv.ParseInt(queryParams.Get("location_id"), 10, 64); err == nil {
		filter.LocationID = id
	}
	if id, err := strconv.ParseInt(queryParams.Get("organization_id"), 10, 64); err == nil {
		filter.OrganizationID = id
	}
	if employmentType := EmploymentType(queryParams.Get("employment_type")); employmentType.Valid() {
		filter.EmploymentType = string(employmentType)
	}
	if cents, err := strconv.ParseInt(queryParams.Get("min_hourly_cents"), 10, 64); err == nil {
		filter.MinHourlyCents = cents
	}
	if cents, err := strconv.ParseInt(queryParams.Get("max_hourly_cents"), 10, 64); err == nil {
		filter.MaxHourlyCents = cents
	}

	return filter
}

/*
parseEffectiveDate accepts a calendar date in YYYY-MM-DD form.

Parameters:
  - value: The raw date string, empty meaning absent

Returns:
  - *time.Time: The parsed date, nil when absent
  - error: apperr.ValidationError on malformed input
*/
func parseEffectiveDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperr.ValidationError("Invalid effective date", apperr.FieldError{
			Field:   FieldEffectiveDate,
			Message: "must be formatted YYYY-MM-DD",
		})
	}

	return &date, nil
}
