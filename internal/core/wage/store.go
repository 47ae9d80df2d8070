// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage

import "context"

// Repository defines the persistence contract for wage reports.
//
// # Transactional Guarantees
//
// Every write method that can change a report's membership in the counted
// set (approved AND not deleted) adjusts the denormalized
// wage_reports_count columns on the report's location and organization
// inside the same database transaction as the row write. A failed counter
// adjustment rolls the whole operation back; the row and the counters are
// never visible in disagreement.
type Repository interface {

	/*
		CreateReport persists a new wage report.

		Description: Derives the authoritative organization_id from the
		location row inside the INSERT, and increments both counters when
		the report arrives approved. Fills ID, OrganizationID, CreatedAt
		and UpdatedAt on the passed report.
	*/
	CreateReport(context context.Context, report *Report) error

	/*
		GetReport fetches a visible (non-deleted) report by ID.
	*/
	GetReport(context context.Context, id int64) (*Report, error)

	/*
		GetReportAny fetches a report by ID regardless of deletion state.
		Moderation and restoration start here.
	*/
	GetReportAny(context context.Context, id int64) (*Report, error)

	/*
		ListReports returns approved, non-deleted reports matching the
		filter, newest first, with the total match count.
	*/
	ListReports(context context.Context, filter Filter, limit, offset int) ([]*Report, int, error)

	/*
		UpdateReportWage persists recomputed wage fields (amount, period,
		hours, currency, normalized rate, sanity score, status) and applies
		the counter delta for previousStatus -> report.Status.
	*/
	UpdateReportWage(context context.Context, report *Report, previousStatus Status) error

	/*
		UpdateReportStatus persists a moderation status override and applies
		the counter delta for previousStatus -> report.Status.
	*/
	UpdateReportStatus(context context.Context, report *Report, previousStatus Status) error

	/*
		SoftDeleteReport marks the report deleted and decrements the
		counters when it was approved.
	*/
	SoftDeleteReport(context context.Context, report *Report) error

	/*
		RestoreReport clears the deletion mark and increments the counters
		when the report is approved.
	*/
	RestoreReport(context context.Context, report *Report) error

	/*
		ResolveLocation confirms a location exists and is active, returning
		its organization ID for scoring scope.
	*/
	ResolveLocation(context context.Context, locationID int64) (int64, error)

	/*
		ResolveOrganization confirms an organization exists and is active.
	*/
	ResolveOrganization(context context.Context, organizationID int64) error

	/*
		LocationSnapshot computes the public wage-statistics payload for
		one location's approved population.
	*/
	LocationSnapshot(context context.Context, locationID int64) (*StatsSnapshot, error)

	/*
		OrganizationSnapshot computes the public wage-statistics payload
		across one organization's approved population.
	*/
	OrganizationSnapshot(context context.Context, organizationID int64) (*StatsSnapshot, error)

	/*
		ReconcileCounters recomputes every wage_reports_count from ground
		truth, returning how many location and organization rows drifted.
	*/
	ReconcileCounters(context context.Context) (int64, int64, error)
}
