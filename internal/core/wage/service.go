// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/wdtp/api/internal/platform/apperr"
	"github.com/wdtp/api/internal/platform/cache"
	"github.com/wdtp/api/internal/platform/sec"
	"github.com/wdtp/api/internal/platform/validate"
)

// # Service Layer

// Service orchestrates the wage-report lifecycle. Every mutation follows
// the same shape: validate, recompute the derived fields (normalized rate,
// sanity score, implied status), persist row and counters in one
// transaction, then bump the cache versions after commit.
type Service struct {
	repository Repository
	stats      StatsProvider
	bus        *cache.Bus
	sanitizer  *bluemonday.Policy
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repository Repository, stats StatsProvider, bus *cache.Bus, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		stats:      stats,
		bus:        bus,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger,
	}
}

// # Report Lookups

/*
ListReports retrieves a paginated, filtered page of approved wage reports.

Parameters:
  - context: context.Context
  - filter: Filter (Scope and wage-range criteria)
  - limit: int (Max records to return)
  - offset: int (Pagination cursor)

Returns:
  - []*Report: The matching page, newest first
  - int: Total count of records matching the filter
  - error: Repository level errors
*/
func (service *Service) ListReports(context context.Context, filter Filter, limit, offset int) ([]*Report, int, error) {
	return service.repository.ListReports(context, filter, limit, offset)
}

/*
GetReport fetches a single non-deleted wage report by ID.

Description: Pending and rejected reports stay readable by ID so that
submitters can watch their own report's moderation state. They are only
ever absent from listings and statistics, never from direct lookups.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Report: The stored report
  - error: ErrNotFound when missing or soft deleted
*/
func (service *Service) GetReport(context context.Context, id int64) (*Report, error) {
	return service.repository.GetReport(context, id)
}

// # Report Submission

/*
Submit validates, normalizes, scores and persists a new wage report.

Description: The submission pipeline runs in a fixed order. Free-text
fields are stripped of markup, the wage fields validated, the amount
normalized to hourly cents, and the rate scored against the existing
population. The implied status and the counter effects are then committed
atomically with the row; cache versions are bumped only after the commit.

A statistics backend failure does not reject the submission. The report is
persisted as pending with the sentinel unscored value, and the moderation
queue picks it up later.

Parameters:
  - context: context.Context
  - report: *Report (Submitted fields; ID and derived fields are filled in)

Returns:
  - error: Validation, scope resolution or persistence errors
*/
func (service *Service) Submit(context context.Context, report *Report) error {

	// 1. Strip markup from free text before anything inspects it
	service.sanitizeText(report)

	// 2. Field validation
	if err := service.validateWageFields(report); err != nil {
		return err
	}

	// 3. Normalize the submitted amount to hourly cents
	normalized, err := Normalize(report.AmountCents, report.WagePeriod, report.HoursPerWeek)
	if err != nil {
		return normalizationError(err)
	}
	report.NormalizedHourlyCents = normalized

	// 4. Resolve the scoring scope, rejecting unknown or inactive locations
	organizationID, err := service.repository.ResolveLocation(context, report.LocationID)
	if err != nil {
		return err
	}
	report.OrganizationID = organizationID

	// 5. Sanity scoring with the degraded fallback
	service.scoreReport(context, report, 0)

	// 6. Row and counters, atomically
	if err := service.repository.CreateReport(context, report); err != nil {
		return err
	}

	// 7. Post-commit cache invalidation
	service.bus.BumpWageSurfaces(context)

	service.logger.Info("wage_report_created",
		slog.Int64("report_id", report.ID),
		slog.Int64("location_id", report.LocationID),
		slog.Int("sanity_score", report.SanityScore),
		slog.String("status", string(report.Status)),
	)

	return nil
}

// # Report Lifecycle

/*
UpdateWage applies a partial wage-field update to an existing report.

Description: Only the owner or a moderator may update a report; anonymous
reports have no owner and are moderator-only. Any accepted patch reruns
normalization and scoring (with the report's own previous value excluded
from its reference population), and the implied status replaces the stored
one, counters following inside the same transaction.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The authenticated caller, nil if anonymous)
  - id: int64
  - patch: WagePatch (Zero and nil members leave stored values unchanged)

Returns:
  - *Report: The updated report
  - error: Authorization, validation or persistence errors
*/
func (service *Service) UpdateWage(context context.Context, actor *sec.AuthClaims, id int64, patch WagePatch) (*Report, error) {

	// 1. Load the visible report
	report, err := service.repository.GetReport(context, id)
	if err != nil {
		return nil, err
	}

	// 2. Ownership gate
	if err := service.authorizeManage(actor, report); err != nil {
		return nil, err
	}

	// 3. Overlay the patch
	previousStatus := report.Status
	applyPatch(report, patch)

	// 4. Revalidate the combined wage fields
	if err := service.validateWageFields(report); err != nil {
		return nil, err
	}

	// 5. Renormalize
	normalized, err := Normalize(report.AmountCents, report.WagePeriod, report.HoursPerWeek)
	if err != nil {
		return nil, normalizationError(err)
	}
	report.NormalizedHourlyCents = normalized

	// 6. Rescore against the population minus this report's old value
	service.scoreReport(context, report, report.ID)

	// 7. Persist fields, status transition and counter delta together
	if err := service.repository.UpdateReportWage(context, report, previousStatus); err != nil {
		return nil, err
	}

	// 8. Post-commit cache invalidation
	service.bus.BumpWageSurfaces(context)

	service.logger.Info("wage_report_updated",
		slog.Int64("report_id", report.ID),
		slog.String("previous_status", string(previousStatus)),
		slog.String("status", string(report.Status)),
		slog.Int("sanity_score", report.SanityScore),
	)

	return report, nil
}

/*
Delete soft-deletes a wage report.

Description: The row survives for restoration and audit, but leaves every
listing, statistic and counter. Deleting an already-deleted report reports
NotFound, which also guarantees the counters can never be decremented twice
for one report.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - id: int64

Returns:
  - error: Authorization or persistence errors
*/
func (service *Service) Delete(context context.Context, actor *sec.AuthClaims, id int64) error {

	// 1. Load the visible report; already-deleted rows 404 here
	report, err := service.repository.GetReport(context, id)
	if err != nil {
		return err
	}

	// 2. Ownership gate
	if err := service.authorizeManage(actor, report); err != nil {
		return err
	}

	// 3. Hide the row and reverse its counter contribution atomically
	if err := service.repository.SoftDeleteReport(context, report); err != nil {
		return err
	}

	// 4. Post-commit cache invalidation
	service.bus.BumpWageSurfaces(context)

	service.logger.Warn("wage_report_deleted",
		slog.Int64("report_id", report.ID),
		slog.String("status", string(report.Status)),
	)

	return nil
}

/*
Restore brings a soft-deleted wage report back.

Description: The report returns with its stored status and sanity score
untouched; restoration is the inverse of deletion, not a resubmission. An
approved report re-enters the counters inside the restore transaction.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims
  - id: int64

Returns:
  - *Report: The restored report
  - error: apperr.Conflict when the report is not deleted
*/
func (service *Service) Restore(context context.Context, actor *sec.AuthClaims, id int64) (*Report, error) {

	// 1. Load regardless of deletion state
	report, err := service.repository.GetReportAny(context, id)
	if err != nil {
		return nil, err
	}
	if report.DeletedAt == nil {
		return nil, apperr.Conflict("Wage report is not deleted")
	}

	// 2. Ownership gate
	if err := service.authorizeManage(actor, report); err != nil {
		return nil, err
	}

	// 3. Unhide the row and replay its counter contribution atomically
	if err := service.repository.RestoreReport(context, report); err != nil {
		return nil, err
	}
	report.DeletedAt = nil

	// 4. Post-commit cache invalidation
	service.bus.BumpWageSurfaces(context)

	service.logger.Info("wage_report_restored",
		slog.Int64("report_id", report.ID),
		slog.String("status", string(report.Status)),
	)

	return report, nil
}

// # Moderation

/*
Moderate overrides a report's status.

Description: Moderator judgement outranks the automatic score; the sanity
score is kept as recorded while the status changes. Counter effects of the
transition ride in the same transaction as the status write.

Parameters:
  - context: context.Context
  - id: int64
  - status: Status (The target moderation state)

Returns:
  - *Report: The report with its new status
  - error: Validation or persistence errors
*/
func (service *Service) Moderate(context context.Context, id int64, status Status) (*Report, error) {

	// Target state validation
	validator := &validate.Validator{}
	validator.Required(FieldStatus, string(status)).OneOf(FieldStatus, string(status),
		string(StatusApproved),
		string(StatusPending),
		string(StatusRejected),
	)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Deleted reports must be restored before they can be moderated
	report, err := service.repository.GetReport(context, id)
	if err != nil {
		return nil, err
	}

	previousStatus := report.Status
	report.Status = status

	if err := service.repository.UpdateReportStatus(context, report, previousStatus); err != nil {
		return nil, err
	}

	service.bus.BumpWageSurfaces(context)

	service.logger.Info("wage_report_moderated",
		slog.Int64("report_id", report.ID),
		slog.String("previous_status", string(previousStatus)),
		slog.String("status", string(report.Status)),
	)

	return report, nil
}

// # Wage Statistics

/*
LocationWageStats summarizes the approved wage distribution at a location.

Parameters:
  - context: context.Context
  - locationID: int64

Returns:
  - *StatsSnapshot: Sample size, min, max, average, quartiles and MAD
  - error: ErrNotFound when the location is missing or inactive
*/
func (service *Service) LocationWageStats(context context.Context, locationID int64) (*StatsSnapshot, error) {
	if _, err := service.repository.ResolveLocation(context, locationID); err != nil {
		return nil, err
	}
	return service.repository.LocationSnapshot(context, locationID)
}

/*
OrganizationWageStats summarizes the approved wage distribution across an
organization's locations.

Parameters:
  - context: context.Context
  - organizationID: int64

Returns:
  - *StatsSnapshot: Sample size, min, max, average, quartiles and MAD
  - error: ErrNotFound when the organization is missing or inactive
*/
func (service *Service) OrganizationWageStats(context context.Context, organizationID int64) (*StatsSnapshot, error) {
	if err := service.repository.ResolveOrganization(context, organizationID); err != nil {
		return nil, err
	}
	return service.repository.OrganizationSnapshot(context, organizationID)
}

// # Counter Maintenance

/*
Reconcile recomputes the denormalized report counters from ground truth.

Description: Run on a schedule. Counters only drift through operational
accidents (manual SQL, crash between migrations, restored backups); the
sweep rewrites drifted rows and bumps the cache versions so stale counts
leave the read path too.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence errors
*/
func (service *Service) Reconcile(context context.Context) error {
	locations, organizations, err := service.repository.ReconcileCounters(context)
	if err != nil {
		return err
	}

	if locations == 0 && organizations == 0 {
		service.logger.Info("wage_counters_verified")
		return nil
	}

	service.bus.BumpWageSurfaces(context)

	service.logger.Warn("wage_counters_reconciled",
		slog.Int64("locations_corrected", locations),
		slog.Int64("organizations_corrected", organizations),
	)

	return nil
}

// # Internal Helpers

// sanitizeText strips markup from the free-text fields. Notes that
// sanitize down to nothing are stored as absent.
func (service *Service) sanitizeText(report *Report) {
	report.JobTitle = strings.TrimSpace(service.sanitizer.Sanitize(report.JobTitle))

	if report.Notes != nil {
		cleaned := strings.TrimSpace(service.sanitizer.Sanitize(*report.Notes))
		if cleaned == "" {
			report.Notes = nil
		} else {
			report.Notes = &cleaned
		}
	}
}

// validateWageFields checks the full wage field set. Update paths reuse it
// after overlaying a patch, so partial input is validated in combination
// with the stored values.
func (service *Service) validateWageFields(report *Report) error {
	validator := &validate.Validator{}

	validator.Required(FieldJobTitle, report.JobTitle).MaxLen(FieldJobTitle, report.JobTitle, 200)

	validator.Required(FieldEmploymentType, string(report.EmploymentType)).
		OneOf(FieldEmploymentType, string(report.EmploymentType), EmploymentTypes()...)

	validator.Required(FieldWagePeriod, string(report.WagePeriod)).
		OneOf(FieldWagePeriod, string(report.WagePeriod), WagePeriods()...)

	validator.Required(FieldCurrency, report.Currency).Currency(FieldCurrency, report.Currency)

	validator.Positive(FieldAmountCents, report.AmountCents)

	if report.HoursPerWeek != nil {
		validator.Range(FieldHoursPerWeek, *report.HoursPerWeek, 1, 168)
	}

	if report.Notes != nil {
		validator.MaxLen(FieldNotes, *report.Notes, 2000)
	}

	validator.Custom(FieldEffectiveDate,
		report.EffectiveDate != nil && report.EffectiveDate.After(time.Now()),
		"must not be in the future")

	return validator.Err()
}

// scoreReport assigns the sanity score and implied status, falling back to
// a pending unscored persist when the statistics backend fails.
func (service *Service) scoreReport(context context.Context, report *Report, excludeReportID int64) {
	score, err := ScoreCandidate(context, service.stats, Candidate{
		HourlyCents:     report.NormalizedHourlyCents,
		LocationID:      report.LocationID,
		OrganizationID:  report.OrganizationID,
		ExcludeReportID: excludeReportID,
	})
	if err != nil {
		service.logger.Warn("wage_scoring_degraded",
			slog.Int64("location_id", report.LocationID),
			slog.Any("error", err),
		)
		report.SanityScore = ScoreUnscored
		report.Status = StatusPending
		return
	}

	report.SanityScore = score
	report.Status = ImpliedStatus(score)
}

// authorizeManage rejects callers who may not mutate the report. Owners
// manage their own reports, moderators manage all of them. Anonymous
// reports have no owner and are moderator-only.
func (service *Service) authorizeManage(actor *sec.AuthClaims, report *Report) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if sec.UserRole(actor.Role).AtLeast(sec.RoleModerator) {
		return nil
	}
	if report.UserID != nil && *report.UserID == actor.UserID {
		return nil
	}
	return apperr.Forbidden("You do not own this wage report")
}

// normalizationError maps a normalization failure onto the wage field that
// caused it.
func normalizationError(err error) error {
	field := FieldAmountCents
	switch {
	case errors.Is(err, ErrInvalidHours):
		field = FieldHoursPerWeek
	case errors.Is(err, ErrUnknownPeriod):
		field = FieldWagePeriod
	}
	return apperr.ValidationError("Wage fields could not be normalized", apperr.FieldError{
		Field:   field,
		Message: err.Error(),
	})
}

// applyPatch overlays the populated patch fields onto the stored report.
func applyPatch(report *Report, patch WagePatch) {
	if patch.AmountCents != 0 {
		report.AmountCents = patch.AmountCents
	}
	if patch.WagePeriod != "" {
		report.WagePeriod = patch.WagePeriod
	}
	if patch.Currency != "" {
		report.Currency = patch.Currency
	}
	if patch.HoursPerWeek != nil {
		report.HoursPerWeek = patch.HoursPerWeek
	}
	if patch.EffectiveDate != nil {
		report.EffectiveDate = patch.EffectiveDate
	}
	if patch.TipsIncluded != nil {
		report.TipsIncluded = *patch.TipsIncluded
	}
	if patch.Unionized != nil {
		report.Unionized = patch.Unionized
	}
}
