/*
Package wage persistence: the PostgreSQL implementation of the wage-report
repository.

It leans on Postgres features to keep the hot paths correct and cheap:
  - Single-statement counter updates: wage_reports_count changes ride inside
    the row-write transaction as atomic UPDATE ... SET count = count + 1
    statements, never read-modify-write round trips.
  - Derived organization scope: INSERT ... SELECT pins organization_id to
    the location row it references, so a report can never disagree with its
    location about the owning organization.
  - Ordered-set aggregates: median and MAD come from percentile_cont inside
    the database, rounded to whole cents before they reach Go.
*/
package wage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wdtp/api/internal/platform/apperr"
	"github.com/wdtp/api/internal/platform/ctxutil"
	"github.com/wdtp/api/internal/platform/database/schema"
	"github.com/wdtp/api/internal/platform/dberr"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// reportColumns returns the canonical SELECT list for wage report scans.
// organization_id goes NULL when an employer row is removed; it reads back
// as the zero scope.
func reportColumns() string {
	r := schema.WagesReport
	return strings.Join([]string{
		r.ID, r.LocationID, "COALESCE(" + r.OrganizationID + ", 0)", r.UserID, r.JobTitle,
		r.EmploymentType, r.WagePeriod, r.Currency, r.AmountCents,
		r.HoursPerWeek, r.EffectiveDate, r.TipsIncluded, r.Unionized, r.Notes,
		r.NormalizedHourlyCents, r.SanityScore, r.Status,
		r.DeletedAt, r.CreatedAt, r.UpdatedAt,
	}, ", ")
}

// scanReport reads one row in reportColumns order.
func scanReport(row pgx.Row) (*Report, error) {
	report := &Report{}
	err := row.Scan(
		&report.ID, &report.LocationID, &report.OrganizationID, &report.UserID, &report.JobTitle,
		&report.EmploymentType, &report.WagePeriod, &report.Currency, &report.AmountCents,
		&report.HoursPerWeek, &report.EffectiveDate, &report.TipsIncluded, &report.Unionized, &report.Notes,
		&report.NormalizedHourlyCents, &report.SanityScore, &report.Status,
		&report.DeletedAt, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

/*
CreateReport persists a new wage report atomically with its counter effects.

Description: The INSERT selects from directory.locations so the stored
organization_id is always the one the location row carries at commit time,
regardless of what the caller resolved earlier. When the report arrives
approved, both wage_reports_count columns are incremented inside the same
transaction; any failure rolls everything back.

Parameters:
  - context: context.Context
  - report: *Report with wage fields, score and status already computed

Returns:
  - error: apperr.NotFound if the location is missing or inactive, or execution errors
*/
func (repository *PostgresRepository) CreateReport(context context.Context, report *Report) error {

	// 1. Open the transaction that must cover the row and the counters
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	r := schema.WagesReport
	l := schema.DirectoryLocation

	// 2. Insert the row, deriving the owning organization from the location
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s, %s, %s, %s, %s
		)
		SELECT l.%s, l.%s, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		FROM %s l
		WHERE l.%s = $1 AND l.%s
		RETURNING %s, %s, %s, %s
	`,
		r.Table,
		r.LocationID, r.OrganizationID, r.UserID, r.JobTitle, r.EmploymentType, r.WagePeriod, r.Currency, r.AmountCents,
		r.HoursPerWeek, r.EffectiveDate, r.TipsIncluded, r.Unionized, r.Notes, r.NormalizedHourlyCents, r.SanityScore, r.Status,
		l.ID, l.OrganizationID,
		l.Table,
		l.ID, l.IsActive,
		r.ID, r.OrganizationID, r.CreatedAt, r.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		report.LocationID,
		report.UserID,
		report.JobTitle,
		report.EmploymentType,
		report.WagePeriod,
		report.Currency,
		report.AmountCents,
		report.HoursPerWeek,
		report.EffectiveDate,
		report.TipsIncluded,
		report.Unionized,
		report.Notes,
		report.NormalizedHourlyCents,
		report.SanityScore,
		report.Status,
	).Scan(&report.ID, &report.OrganizationID, &report.CreatedAt, &report.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Location")
		}
		return fmt.Errorf("postgres: failed to create wage report: %w", err)
	}

	// 3. Counter effects for a report born approved
	delta := CounterDelta(StatusNone, report.Status)
	if err := repository.applyCounterDelta(context, transaction, report.LocationID, report.OrganizationID, delta); err != nil {
		return err
	}

	// 4. Make the row and the counters visible together
	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit create transaction: %w", err)
	}

	return nil
}

/*
GetReport fetches a visible wage report by ID.
*/
func (repository *PostgresRepository) GetReport(context context.Context, id int64) (*Report, error) {
	r := schema.WagesReport

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL
	`, reportColumns(), r.Table, r.ID, r.DeletedAt)

	report, err := scanReport(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_wage_report")
	}
	return report, nil
}

/*
GetReportAny fetches a wage report by ID, deleted or not.
*/
func (repository *PostgresRepository) GetReportAny(context context.Context, id int64) (*Report, error) {
	r := schema.WagesReport

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1
	`, reportColumns(), r.Table, r.ID)

	report, err := scanReport(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_wage_report_any")
	}
	return report, nil
}

/*
ListReports returns approved, visible reports matching the filter.

Description: Builds the WHERE clause dynamically from the populated filter
fields and resolves the total match count in the same round trip via a
window function.

Parameters:
  - context: context.Context
  - filter: Filter with zero values meaning "any"
  - limit, offset: Page bounds (already clamped by the caller)

Returns:
  - []*Report: The page of reports, newest first
  - int: Total matches ignoring pagination
  - error: Execution errors
*/
func (repository *PostgresRepository) ListReports(context context.Context, filter Filter, limit, offset int) ([]*Report, int, error) {
	r := schema.WagesReport

	var query strings.Builder
	args := []any{StatusApproved}
	argID := 1

	fmt.Fprintf(&query, `
		SELECT %s, COUNT(*) OVER() AS total
		FROM %s
		WHERE %s = $1 AND %s IS NULL
	`, reportColumns(), r.Table, r.Status, r.DeletedAt)

	// Narrowing predicates, appended only when the filter sets them
	if filter.LocationID > 0 {
		argID++
		fmt.Fprintf(&query, " AND %s = $%d", r.LocationID, argID)
		args = append(args, filter.LocationID)
	}
	if filter.OrganizationID > 0 {
		argID++
		fmt.Fprintf(&query, " AND %s = $%d", r.OrganizationID, argID)
		args = append(args, filter.OrganizationID)
	}
	if filter.EmploymentType != "" {
		argID++
		fmt.Fprintf(&query, " AND %s = $%d", r.EmploymentType, argID)
		args = append(args, filter.EmploymentType)
	}
	if filter.MinHourlyCents > 0 {
		argID++
		fmt.Fprintf(&query, " AND %s >= $%d", r.NormalizedHourlyCents, argID)
		args = append(args, filter.MinHourlyCents)
	}
	if filter.MaxHourlyCents > 0 {
		argID++
		fmt.Fprintf(&query, " AND %s <= $%d", r.NormalizedHourlyCents, argID)
		args = append(args, filter.MaxHourlyCents)
	}

	fmt.Fprintf(&query, " ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d", r.CreatedAt, r.ID, argID+1, argID+2)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list wage reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*Report, 0, limit)
	total := 0

	for rows.Next() {
		report := &Report{}
		err := rows.Scan(
			&report.ID, &report.LocationID, &report.OrganizationID, &report.UserID, &report.JobTitle,
			&report.EmploymentType, &report.WagePeriod, &report.Currency, &report.AmountCents,
			&report.HoursPerWeek, &report.EffectiveDate, &report.TipsIncluded, &report.Unionized, &report.Notes,
			&report.NormalizedHourlyCents, &report.SanityScore, &report.Status,
			&report.DeletedAt, &report.CreatedAt, &report.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan wage report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: wage report rows error: %w", err)
	}

	return reports, total, nil
}

/*
UpdateReportWage persists recomputed wage fields atomically with the counter
delta of the implied status transition.

Parameters:
  - context: context.Context
  - report: *Report carrying the new wage fields, score and status
  - previousStatus: The status stored before this update

Returns:
  - error: apperr.NotFound if the report vanished, or execution errors
*/
func (repository *PostgresRepository) UpdateReportWage(context context.Context, report *Report, previousStatus Status) error {
	r := schema.WagesReport

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	// 1. Rewrite the wage-bearing fields on the visible row
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
		    %s = $9, %s = $10, %s = $11, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		r.Table,
		r.WagePeriod, r.AmountCents, r.HoursPerWeek, r.Currency, r.EffectiveDate,
		r.TipsIncluded, r.Unionized,
		r.NormalizedHourlyCents, r.SanityScore, r.Status, r.UpdatedAt,
		r.ID, r.DeletedAt,
		r.UpdatedAt,
	)

	err = transaction.QueryRow(context, query,
		report.ID,
		report.WagePeriod,
		report.AmountCents,
		report.HoursPerWeek,
		report.Currency,
		report.EffectiveDate,
		report.TipsIncluded,
		report.Unionized,
		report.NormalizedHourlyCents,
		report.SanityScore,
		report.Status,
	).Scan(&report.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.ErrNotFound
		}
		return fmt.Errorf("postgres: failed to update wage report: %w", err)
	}

	// 2. Counter effects of the status transition, if any
	delta := CounterDelta(previousStatus, report.Status)
	if err := repository.applyCounterDelta(context, transaction, report.LocationID, report.OrganizationID, delta); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit wage update transaction: %w", err)
	}

	return nil
}

/*
UpdateReportStatus persists a moderation override atomically with its
counter delta.

Parameters:
  - context: context.Context
  - report: *Report carrying the new status
  - previousStatus: The status stored before the override

Returns:
  - error: apperr.NotFound if the report vanished, or execution errors
*/
func (repository *PostgresRepository) UpdateReportStatus(context context.Context, report *Report, previousStatus Status) error {
	r := schema.WagesReport

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`, r.Table, r.Status, r.UpdatedAt, r.ID, r.DeletedAt, r.UpdatedAt)

	err = transaction.QueryRow(context, query, report.ID, report.Status).Scan(&report.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dberr.ErrNotFound
		}
		return fmt.Errorf("postgres: failed to update wage report status: %w", err)
	}

	delta := CounterDelta(previousStatus, report.Status)
	if err := repository.applyCounterDelta(context, transaction, report.LocationID, report.OrganizationID, delta); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit status transaction: %w", err)
	}

	return nil
}

/*
SoftDeleteReport hides a report and reverses its counter contribution.

Description: The WHERE clause only matches a still-visible row, so a racing
double delete affects zero rows and is reported as NotFound without ever
touching the counters twice.

Parameters:
  - context: context.Context
  - report: *Report as currently stored

Returns:
  - error: apperr.NotFound if already deleted, or execution errors
*/
func (repository *PostgresRepository) SoftDeleteReport(context context.Context, report *Report) error {
	r := schema.WagesReport

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = NOW()
		WHERE %s = $1 AND %s IS NULL
	`, r.Table, r.DeletedAt, r.UpdatedAt, r.ID, r.DeletedAt)

	tag, err := transaction.Exec(context, query, report.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to soft delete wage report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	delta := CounterDelta(report.Status, StatusNone)
	if err := repository.applyCounterDelta(context, transaction, report.LocationID, report.OrganizationID, delta); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit delete transaction: %w", err)
	}

	return nil
}

/*
RestoreReport reinstates a soft-deleted report and its counter contribution.

Parameters:
  - context: context.Context
  - report: *Report as currently stored (still marked deleted)

Returns:
  - error: apperr.Conflict if the report is not deleted, or execution errors
*/
func (repository *PostgresRepository) RestoreReport(context context.Context, report *Report) error {
	r := schema.WagesReport

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s SET %s = NULL, %s = NOW()
		WHERE %s = $1 AND %s IS NOT NULL
	`, r.Table, r.DeletedAt, r.UpdatedAt, r.ID, r.DeletedAt)

	tag, err := transaction.Exec(context, query, report.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to restore wage report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("Wage report is not deleted")
	}

	delta := CounterDelta(StatusNone, report.Status)
	if err := repository.applyCounterDelta(context, transaction, report.LocationID, report.OrganizationID, delta); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit restore transaction: %w", err)
	}

	return nil
}

/*
ResolveLocation confirms a location exists and is active.

Parameters:
  - context: context.Context
  - locationID: The location to check

Returns:
  - int64: The owning organization's ID
  - error: apperr.NotFound when missing or inactive
*/
func (repository *PostgresRepository) ResolveLocation(context context.Context, locationID int64) (int64, error) {
	l := schema.DirectoryLocation

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 AND %s
	`, l.OrganizationID, l.Table, l.ID, l.IsActive)

	var organizationID int64
	if err := repository.pool.QueryRow(context, query, locationID).Scan(&organizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("Location")
		}
		return 0, fmt.Errorf("postgres: failed to resolve location: %w", err)
	}

	return organizationID, nil
}

/*
ResolveOrganization confirms an organization exists and is active.
*/
func (repository *PostgresRepository) ResolveOrganization(context context.Context, organizationID int64) error {
	o := schema.DirectoryOrganization

	query := fmt.Sprintf(`
		SELECT 1 FROM %s WHERE %s = $1 AND %s
	`, o.Table, o.ID, o.IsActive)

	var one int
	if err := repository.pool.QueryRow(context, query, organizationID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Organization")
		}
		return fmt.Errorf("postgres: failed to resolve organization: %w", err)
	}

	return nil
}

// applyCounterDelta adjusts both wage_reports_count columns inside the
// caller's transaction.
//
// Decrements are guarded by "count > 0". A guarded decrement that matches
// no row means the counter already sat at zero; the mismatch is logged for
// the reconciliation sweep and deliberately NOT treated as an error, since
// failing the business operation would not make the counter any righter.
func (repository *PostgresRepository) applyCounterDelta(context context.Context, transaction pgx.Tx, locationID, organizationID int64, delta int) error {
	if delta == 0 {
		return nil
	}

	l := schema.DirectoryLocation
	o := schema.DirectoryOrganization

	type target struct {
		table  string
		column string
		id     int64
	}
	targets := []target{
		{l.Table, l.WageReportsCount, locationID},
		{o.Table, o.WageReportsCount, organizationID},
	}

	for _, tgt := range targets {
		var query string
		if delta > 0 {
			query = fmt.Sprintf(`UPDATE %s SET %s = %s + 1, updated_at = NOW() WHERE id = $1`,
				tgt.table, tgt.column, tgt.column)
		} else {
			query = fmt.Sprintf(`UPDATE %s SET %s = %s - 1, updated_at = NOW() WHERE id = $1 AND %s > 0`,
				tgt.table, tgt.column, tgt.column, tgt.column)
		}

		tag, err := transaction.Exec(context, query, tgt.id)
		if err != nil {
			return fmt.Errorf("postgres: failed to adjust %s counter: %w", tgt.table, err)
		}

		if delta < 0 && tag.RowsAffected() == 0 {
			ctxutil.GetLogger(context).WarnContext(context, "wage_counter_underflow_skipped",
				slog.String("table", tgt.table),
				slog.Int64("id", tgt.id),
			)
		}
	}

	return nil
}

/*
ReconcileCounters recomputes both wage_reports_count columns from ground
truth.

Description: Run by the scheduled sweep. Each UPDATE joins its table against
the actual approved, non-deleted report counts and rewrites only rows that
drifted, so a healthy database is a near-free no-op.

Parameters:
  - context: context.Context

Returns:
  - int64: Location rows corrected
  - int64: Organization rows corrected
  - error: Execution errors
*/
func (repository *PostgresRepository) ReconcileCounters(context context.Context) (int64, int64, error) {
	r := schema.WagesReport
	l := schema.DirectoryLocation
	o := schema.DirectoryOrganization

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: failed to begin reconcile transaction: %w", err)
	}
	defer transaction.Rollback(context)

	locationQuery := fmt.Sprintf(`
		UPDATE %s l
		SET %s = sub.actual, updated_at = NOW()
		FROM (
			SELECT l2.%s AS id, COALESCE(COUNT(w.%s), 0)::int AS actual
			FROM %s l2
			LEFT JOIN %s w
				ON w.%s = l2.%s AND w.%s = $1 AND w.%s IS NULL
			GROUP BY l2.%s
		) sub
		WHERE l.%s = sub.id AND l.%s <> sub.actual
	`,
		l.Table,
		l.WageReportsCount,
		l.ID, r.ID,
		l.Table,
		r.Table,
		r.LocationID, l.ID, r.Status, r.DeletedAt,
		l.ID,
		l.ID, l.WageReportsCount,
	)

	locationTag, err := transaction.Exec(context, locationQuery, StatusApproved)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: failed to reconcile location counters: %w", err)
	}

	organizationQuery := fmt.Sprintf(`
		UPDATE %s o
		SET %s = sub.actual, updated_at = NOW()
		FROM (
			SELECT o2.%s AS id, COALESCE(COUNT(w.%s), 0)::int AS actual
			FROM %s o2
			LEFT JOIN %s w
				ON w.%s = o2.%s AND w.%s = $1 AND w.%s IS NULL
			GROUP BY o2.%s
		) sub
		WHERE o.%s = sub.id AND o.%s <> sub.actual
	`,
		o.Table,
		o.WageReportsCount,
		o.ID, r.ID,
		o.Table,
		r.Table,
		r.OrganizationID, o.ID, r.Status, r.DeletedAt,
		o.ID,
		o.ID, o.WageReportsCount,
	)

	organizationTag, err := transaction.Exec(context, organizationQuery, StatusApproved)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres: failed to reconcile organization counters: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return 0, 0, fmt.Errorf("postgres: failed to commit reconcile transaction: %w", err)
	}

	return locationTag.RowsAffected(), organizationTag.RowsAffected(), nil
}
