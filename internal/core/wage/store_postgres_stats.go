package wage

import (
	"context"
	"fmt"

	"github.com/wdtp/api/internal/platform/database/schema"
)

/*
Statistics read model.

All aggregates run over the scoring sample: approved, non-deleted reports in
the requested scope. Medians and MADs are computed with percentile_cont and
rounded to whole cents inside the database (numeric ROUND, half away from
zero), so Go only ever sees integers.
*/

// statsQuery builds the sample-size / median / MAD query scoped by the
// given report column. $1 is the scope ID, $2 an optional report ID to
// exclude (0 for none), $3 the counted status.
func statsQuery(scopeColumn string) string {
	r := schema.WagesReport
	return fmt.Sprintf(`
		WITH sample AS (
			SELECT %s AS cents
			FROM %s
			WHERE %s = $1
			  AND %s = $3
			  AND %s IS NULL
			  AND ($2 = 0 OR %s <> $2)
		),
		med AS (
			SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY cents) AS median
			FROM sample
		)
		SELECT
			(SELECT COUNT(*) FROM sample)::int,
			COALESCE(ROUND(med.median::numeric), 0)::bigint,
			COALESCE(ROUND((
				SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY ABS(s.cents - med.median))
				FROM sample s
			)::numeric), 0)::bigint
		FROM med
	`,
		r.NormalizedHourlyCents,
		r.Table,
		scopeColumn,
		r.Status,
		r.DeletedAt,
		r.ID,
	)
}

func (repository *PostgresRepository) fetchStats(context context.Context, scopeColumn string, scopeID, excludeReportID int64) (Stats, error) {
	var stats Stats
	err := repository.pool.QueryRow(context, statsQuery(scopeColumn), scopeID, excludeReportID, StatusApproved).
		Scan(&stats.SampleSize, &stats.MedianCents, &stats.MADCents)
	if err != nil {
		return Stats{}, fmt.Errorf("postgres: failed to fetch wage stats: %w", err)
	}
	return stats, nil
}

// LocationStats returns the scoring sample for one location.
func (repository *PostgresRepository) LocationStats(context context.Context, locationID, excludeReportID int64) (Stats, error) {
	return repository.fetchStats(context, schema.WagesReport.LocationID, locationID, excludeReportID)
}

// OrganizationStats returns the scoring sample across one organization.
func (repository *PostgresRepository) OrganizationStats(context context.Context, organizationID, excludeReportID int64) (Stats, error) {
	return repository.fetchStats(context, schema.WagesReport.OrganizationID, organizationID, excludeReportID)
}

// snapshotQuery builds the full distribution summary scoped by the given
// report column. $1 is the scope ID, $2 the counted status.
func snapshotQuery(scopeColumn string) string {
	r := schema.WagesReport
	return fmt.Sprintf(`
		WITH sample AS (
			SELECT %s AS cents
			FROM %s
			WHERE %s = $1
			  AND %s = $2
			  AND %s IS NULL
		),
		med AS (
			SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY cents) AS median
			FROM sample
		)
		SELECT
			(SELECT COUNT(*) FROM sample)::int,
			COALESCE((SELECT MIN(cents) FROM sample), 0),
			COALESCE((SELECT MAX(cents) FROM sample), 0),
			COALESCE((SELECT ROUND(AVG(cents)) FROM sample), 0)::bigint,
			COALESCE(ROUND((SELECT percentile_cont(0.25) WITHIN GROUP (ORDER BY cents) FROM sample)::numeric), 0)::bigint,
			COALESCE(ROUND(med.median::numeric), 0)::bigint,
			COALESCE(ROUND((SELECT percentile_cont(0.75) WITHIN GROUP (ORDER BY cents) FROM sample)::numeric), 0)::bigint,
			COALESCE(ROUND((
				SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY ABS(s.cents - med.median))
				FROM sample s
			)::numeric), 0)::bigint
		FROM med
	`,
		r.NormalizedHourlyCents,
		r.Table,
		scopeColumn,
		r.Status,
		r.DeletedAt,
	)
}

func (repository *PostgresRepository) fetchSnapshot(context context.Context, scopeColumn string, scopeID int64) (*StatsSnapshot, error) {
	snapshot := &StatsSnapshot{}
	err := repository.pool.QueryRow(context, snapshotQuery(scopeColumn), scopeID, StatusApproved).Scan(
		&snapshot.SampleSize,
		&snapshot.MinCents,
		&snapshot.MaxCents,
		&snapshot.AvgCents,
		&snapshot.P25Cents,
		&snapshot.MedianCents,
		&snapshot.P75Cents,
		&snapshot.MADCents,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to fetch wage snapshot: %w", err)
	}
	return snapshot, nil
}

/*
LocationSnapshot summarizes the approved wage distribution at one location.
*/
func (repository *PostgresRepository) LocationSnapshot(context context.Context, locationID int64) (*StatsSnapshot, error) {
	return repository.fetchSnapshot(context, schema.WagesReport.LocationID, locationID)
}

/*
OrganizationSnapshot summarizes the approved wage distribution across all of
an organization's locations.
*/
func (repository *PostgresRepository) OrganizationSnapshot(context context.Context, organizationID int64) (*StatsSnapshot, error) {
	return repository.fetchSnapshot(context, schema.WagesReport.OrganizationID, organizationID)
}
