// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdtp/api/internal/core/wage"
	"github.com/wdtp/api/internal/platform/apperr"
	"github.com/wdtp/api/internal/platform/cache"
	"github.com/wdtp/api/internal/platform/dberr"
	"github.com/wdtp/api/internal/platform/sec"
)

// # Test Doubles

// fakeRepository is an in-memory Repository and StatsProvider that mirrors
// the transactional counter semantics of the real store, including the
// median and MAD arithmetic used for scoring.
type fakeRepository struct {
	reports            map[int64]*wage.Report
	nextID             int64
	locationOrg        map[int64]int64
	organizations      map[int64]bool
	locationCounts     map[int64]int
	organizationCounts map[int64]int

	statsErr  error
	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		reports:            make(map[int64]*wage.Report),
		locationOrg:        make(map[int64]int64),
		organizations:      make(map[int64]bool),
		locationCounts:     make(map[int64]int),
		organizationCounts: make(map[int64]int),
	}
}

func cloneReport(report *wage.Report) *wage.Report {
	clone := *report
	return &clone
}

func (repo *fakeRepository) applyDelta(report *wage.Report, delta int) {
	if delta == 0 {
		return
	}
	repo.locationCounts[report.LocationID] += delta
	repo.organizationCounts[report.OrganizationID] += delta
}

func (repo *fakeRepository) CreateReport(_ context.Context, report *wage.Report) error {
	if repo.createErr != nil {
		return repo.createErr
	}

	organizationID, found := repo.locationOrg[report.LocationID]
	if !found {
		return apperr.NotFound("Location")
	}

	repo.nextID++
	report.ID = repo.nextID
	report.OrganizationID = organizationID
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt

	repo.reports[report.ID] = cloneReport(report)
	repo.applyDelta(report, wage.CounterDelta(wage.StatusNone, report.Status))
	return nil
}

func (repo *fakeRepository) GetReport(_ context.Context, id int64) (*wage.Report, error) {
	report, found := repo.reports[id]
	if !found || report.DeletedAt != nil {
		return nil, dberr.ErrNotFound
	}
	return cloneReport(report), nil
}

func (repo *fakeRepository) GetReportAny(_ context.Context, id int64) (*wage.Report, error) {
	report, found := repo.reports[id]
	if !found {
		return nil, dberr.ErrNotFound
	}
	return cloneReport(report), nil
}

func (repo *fakeRepository) ListReports(_ context.Context, filter wage.Filter, limit, offset int) ([]*wage.Report, int, error) {
	var matches []*wage.Report
	for _, report := range repo.reports {
		if report.Status != wage.StatusApproved || report.DeletedAt != nil {
			continue
		}
		if filter.LocationID > 0 && report.LocationID != filter.LocationID {
			continue
		}
		if filter.OrganizationID > 0 && report.OrganizationID != filter.OrganizationID {
			continue
		}
		matches = append(matches, cloneReport(report))
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })

	total := len(matches)
	if offset >= total {
		return []*wage.Report{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

func (repo *fakeRepository) UpdateReportWage(_ context.Context, report *wage.Report, previousStatus wage.Status) error {
	stored, found := repo.reports[report.ID]
	if !found || stored.DeletedAt != nil {
		return dberr.ErrNotFound
	}
	report.UpdatedAt = time.Now()
	repo.reports[report.ID] = cloneReport(report)
	repo.applyDelta(report, wage.CounterDelta(previousStatus, report.Status))
	return nil
}

func (repo *fakeRepository) UpdateReportStatus(_ context.Context, report *wage.Report, previousStatus wage.Status) error {
	stored, found := repo.reports[report.ID]
	if !found || stored.DeletedAt != nil {
		return dberr.ErrNotFound
	}
	report.UpdatedAt = time.Now()
	repo.reports[report.ID] = cloneReport(report)
	repo.applyDelta(report, wage.CounterDelta(previousStatus, report.Status))
	return nil
}

func (repo *fakeRepository) SoftDeleteReport(_ context.Context, report *wage.Report) error {
	stored, found := repo.reports[report.ID]
	if !found || stored.DeletedAt != nil {
		return dberr.ErrNotFound
	}
	now := time.Now()
	stored.DeletedAt = &now
	repo.applyDelta(stored, wage.CounterDelta(stored.Status, wage.StatusNone))
	return nil
}

func (repo *fakeRepository) RestoreReport(_ context.Context, report *wage.Report) error {
	stored, found := repo.reports[report.ID]
	if !found {
		return dberr.ErrNotFound
	}
	if stored.DeletedAt == nil {
		return apperr.Conflict("Wage report is not deleted")
	}
	stored.DeletedAt = nil
	repo.applyDelta(stored, wage.CounterDelta(wage.StatusNone, stored.Status))
	return nil
}

func (repo *fakeRepository) ResolveLocation(_ context.Context, locationID int64) (int64, error) {
	organizationID, found := repo.locationOrg[locationID]
	if !found {
		return 0, apperr.NotFound("Location")
	}
	return organizationID, nil
}

func (repo *fakeRepository) ResolveOrganization(_ context.Context, organizationID int64) error {
	if !repo.organizations[organizationID] {
		return apperr.NotFound("Organization")
	}
	return nil
}

func (repo *fakeRepository) LocationSnapshot(_ context.Context, locationID int64) (*wage.StatsSnapshot, error) {
	sample := repo.sample(func(report *wage.Report) bool { return report.LocationID == locationID }, 0)
	return snapshotOf(sample), nil
}

func (repo *fakeRepository) OrganizationSnapshot(_ context.Context, organizationID int64) (*wage.StatsSnapshot, error) {
	sample := repo.sample(func(report *wage.Report) bool { return report.OrganizationID == organizationID }, 0)
	return snapshotOf(sample), nil
}

func (repo *fakeRepository) ReconcileCounters(_ context.Context) (int64, int64, error) {
	actualByLocation := make(map[int64]int)
	actualByOrganization := make(map[int64]int)
	for _, report := range repo.reports {
		if report.Status == wage.StatusApproved && report.DeletedAt == nil {
			actualByLocation[report.LocationID]++
			actualByOrganization[report.OrganizationID]++
		}
	}

	var locationsFixed, organizationsFixed int64
	for locationID := range repo.locationOrg {
		if repo.locationCounts[locationID] != actualByLocation[locationID] {
			repo.locationCounts[locationID] = actualByLocation[locationID]
			locationsFixed++
		}
	}
	for organizationID := range repo.organizations {
		if repo.organizationCounts[organizationID] != actualByOrganization[organizationID] {
			repo.organizationCounts[organizationID] = actualByOrganization[organizationID]
			organizationsFixed++
		}
	}
	return locationsFixed, organizationsFixed, nil
}

// # Statistics Double

func (repo *fakeRepository) sample(match func(*wage.Report) bool, excludeReportID int64) []int64 {
	var values []int64
	for _, report := range repo.reports {
		if report.Status != wage.StatusApproved || report.DeletedAt != nil {
			continue
		}
		if report.ID == excludeReportID {
			continue
		}
		if match(report) {
			values = append(values, report.NormalizedHourlyCents)
		}
	}
	return values
}

func (repo *fakeRepository) LocationStats(_ context.Context, locationID, excludeReportID int64) (wage.Stats, error) {
	if repo.statsErr != nil {
		return wage.Stats{}, repo.statsErr
	}
	sample := repo.sample(func(report *wage.Report) bool { return report.LocationID == locationID }, excludeReportID)
	return statsOf(sample), nil
}

func (repo *fakeRepository) OrganizationStats(_ context.Context, organizationID, excludeReportID int64) (wage.Stats, error) {
	if repo.statsErr != nil {
		return wage.Stats{}, repo.statsErr
	}
	sample := repo.sample(func(report *wage.Report) bool { return report.OrganizationID == organizationID }, excludeReportID)
	return statsOf(sample), nil
}

// medianOf interpolates the middle pair for even sizes and rounds half away
// from zero, matching the database's percentile_cont plus numeric ROUND.
func medianOf(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2] + 1) / 2
}

func statsOf(values []int64) wage.Stats {
	median := medianOf(values)
	deviations := make([]int64, 0, len(values))
	for _, value := range values {
		deviation := value - median
		if deviation < 0 {
			deviation = -deviation
		}
		deviations = append(deviations, deviation)
	}
	return wage.Stats{
		SampleSize:  len(values),
		MedianCents: median,
		MADCents:    medianOf(deviations),
	}
}

func snapshotOf(values []int64) *wage.StatsSnapshot {
	stats := statsOf(values)
	snapshot := &wage.StatsSnapshot{
		SampleSize:  stats.SampleSize,
		MedianCents: stats.MedianCents,
		MADCents:    stats.MADCents,
	}
	for _, value := range values {
		if snapshot.MinCents == 0 || value < snapshot.MinCents {
			snapshot.MinCents = value
		}
		if value > snapshot.MaxCents {
			snapshot.MaxCents = value
		}
	}
	return snapshot
}

// # Harness

func newTestService(t *testing.T) (*wage.Service, *fakeRepository, *cache.MemoryVersionStore) {
	t.Helper()

	repo := newFakeRepository()
	repo.locationOrg[10] = 20
	repo.organizations[20] = true

	versions := cache.NewMemoryVersionStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := wage.NewService(repo, repo, cache.NewBus(versions, logger), logger)
	return service, repo, versions
}

func strPtr(value string) *string {
	return &value
}

func submitHourly(t *testing.T, service *wage.Service, cents int64, userID *string) *wage.Report {
	t.Helper()

	report := &wage.Report{
		LocationID:     10,
		UserID:         userID,
		JobTitle:       "Line Cook",
		EmploymentType: wage.EmploymentFullTime,
		WagePeriod:     wage.PeriodHourly,
		Currency:       "USD",
		AmountCents:    cents,
	}
	require.NoError(t, service.Submit(context.Background(), report))
	return report
}

func memberClaims(userID string) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: userID, Role: string(sec.RoleMember)}
}

func moderatorClaims() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "mod-1", Role: string(sec.RoleModerator)}
}

// # Submission

/*
TestService_SubmissionScenario drives a location from an empty population
to one large enough for MAD scoring, then submits an implausible rate.
The counters track only the approved reports throughout.
*/
func TestService_SubmissionScenario(t *testing.T) {
	service, repo, versions := newTestService(t)

	// First three: population below the sample floor, global bounds approve
	for _, cents := range []int64{1500, 1600, 1400} {
		report := submitHourly(t, service, cents, nil)
		assert.Equal(t, wage.ScoreClose, report.SanityScore)
		assert.Equal(t, wage.StatusApproved, report.Status)
	}

	// Fourth: location population of 3, scored against its own median
	fourth := submitHourly(t, service, 1500, nil)
	assert.Equal(t, wage.ScoreClose, fourth.SanityScore)
	assert.Equal(t, wage.StatusApproved, fourth.Status)
	assert.Equal(t, 4, repo.locationCounts[10])
	assert.Equal(t, 4, repo.organizationCounts[20])

	// Fifth: $90/hr against a median around $15: extreme, held for review
	fifth := submitHourly(t, service, 9000, nil)
	assert.Equal(t, wage.ScoreExtreme, fifth.SanityScore)
	assert.Equal(t, wage.StatusPending, fifth.Status)

	// Pending reports never touch the counters
	assert.Equal(t, 4, repo.locationCounts[10])
	assert.Equal(t, 4, repo.organizationCounts[20])

	// Every submission bumps the wage surfaces exactly once
	assert.Equal(t, 5, versions.BumpCount(cache.KeyWages))
	assert.Equal(t, 5, versions.BumpCount(cache.KeyLocations))
	assert.Equal(t, 5, versions.BumpCount(cache.KeyOrganizations))

	// Listings expose only the approved population
	listed, total, err := service.ListReports(context.Background(), wage.Filter{LocationID: 10}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, listed, 4)
}

/*
TestService_Submit_DegradedScoring verifies a statistics backend failure
persists the report as pending with the sentinel score instead of failing
the submission.
*/
func TestService_Submit_DegradedScoring(t *testing.T) {
	service, repo, versions := newTestService(t)
	repo.statsErr = errors.New("stats backend down")

	report := submitHourly(t, service, 1500, nil)

	assert.Equal(t, wage.ScoreUnscored, report.SanityScore)
	assert.Equal(t, wage.StatusPending, report.Status)
	assert.Equal(t, 0, repo.locationCounts[10])
	assert.Equal(t, 1, versions.BumpCount(cache.KeyWages))
}

/*
TestService_Submit_ValidationFailure checks that invalid submissions never
reach storage and never invalidate caches.
*/
func TestService_Submit_ValidationFailure(t *testing.T) {
	service, repo, versions := newTestService(t)

	report := &wage.Report{
		LocationID:     10,
		JobTitle:       "",
		EmploymentType: wage.EmploymentFullTime,
		WagePeriod:     wage.PeriodHourly,
		Currency:       "USD",
		AmountCents:    1500,
	}
	err := service.Submit(context.Background(), report)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Empty(t, repo.reports)
	assert.Zero(t, versions.BumpCount(cache.KeyWages))
}

/*
TestService_Submit_UnknownLocation rejects submissions against locations
that do not exist.
*/
func TestService_Submit_UnknownLocation(t *testing.T) {
	service, repo, versions := newTestService(t)

	report := &wage.Report{
		LocationID:     999,
		JobTitle:       "Line Cook",
		EmploymentType: wage.EmploymentFullTime,
		WagePeriod:     wage.PeriodHourly,
		Currency:       "USD",
		AmountCents:    1500,
	}
	err := service.Submit(context.Background(), report)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
	assert.Empty(t, repo.reports)
	assert.Zero(t, versions.BumpCount(cache.KeyWages))
}

/*
TestService_Submit_SanitizesMarkup strips HTML from the free-text fields
before validation and storage.
*/
func TestService_Submit_SanitizesMarkup(t *testing.T) {
	service, _, _ := newTestService(t)

	report := &wage.Report{
		LocationID:     10,
		JobTitle:       "<b>Line Cook</b>",
		EmploymentType: wage.EmploymentFullTime,
		WagePeriod:     wage.PeriodHourly,
		Currency:       "USD",
		AmountCents:    1500,
		Notes:          strPtr("<script>alert(1)</script>"),
	}
	require.NoError(t, service.Submit(context.Background(), report))

	assert.Equal(t, "Line Cook", report.JobTitle)
	assert.Nil(t, report.Notes, "notes that sanitize to nothing are dropped")
}

// # Wage Updates

/*
TestService_UpdateWage_Permissions covers the ownership matrix: owners and
moderators may update, other members and anonymous callers may not.
*/
func TestService_UpdateWage_Permissions(t *testing.T) {
	tests := []struct {
		name       string
		reportUser *string
		actor      *sec.AuthClaims
		wantStatus int
	}{
		{"nil_actor_unauthorized", strPtr("u-1"), nil, 401},
		{"owner_allowed", strPtr("u-1"), memberClaims("u-1"), 0},
		{"moderator_allowed", strPtr("u-1"), moderatorClaims(), 0},
		{"other_member_forbidden", strPtr("u-1"), memberClaims("u-2"), 403},
		{"anonymous_report_member_forbidden", nil, memberClaims("u-1"), 403},
		{"anonymous_report_moderator_allowed", nil, moderatorClaims(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestService(t)
			report := submitHourly(t, service, 1500, tt.reportUser)

			_, err := service.UpdateWage(context.Background(), tt.actor, report.ID, wage.WagePatch{AmountCents: 1600})

			if tt.wantStatus == 0 {
				require.NoError(t, err)
				return
			}
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, tt.wantStatus, appError.HTTPStatus)
		})
	}
}

/*
TestService_UpdateWage_RescoresExcludingSelf rebuilds the scoring scenario
through an update: the report's own previous value leaves its reference
population, and a newly extreme rate demotes the report to pending with the
counters following.
*/
func TestService_UpdateWage_RescoresExcludingSelf(t *testing.T) {
	service, repo, _ := newTestService(t)

	for _, cents := range []int64{1500, 1600, 1400} {
		submitHourly(t, service, cents, nil)
	}
	fourth := submitHourly(t, service, 1500, strPtr("u-4"))
	require.Equal(t, 4, repo.locationCounts[10])

	updated, err := service.UpdateWage(context.Background(), memberClaims("u-4"), fourth.ID, wage.WagePatch{AmountCents: 9000})
	require.NoError(t, err)

	assert.Equal(t, int64(9000), updated.NormalizedHourlyCents)
	assert.Equal(t, wage.ScoreExtreme, updated.SanityScore)
	assert.Equal(t, wage.StatusPending, updated.Status)
	assert.Equal(t, 3, repo.locationCounts[10])
	assert.Equal(t, 3, repo.organizationCounts[20])
}

/*
TestService_UpdateWage_PartialPatch leaves unset fields untouched.
*/
func TestService_UpdateWage_PartialPatch(t *testing.T) {
	service, _, _ := newTestService(t)

	report := &wage.Report{
		LocationID:     10,
		UserID:         strPtr("u-1"),
		JobTitle:       "Barista",
		EmploymentType: wage.EmploymentPartTime,
		WagePeriod:     wage.PeriodWeekly,
		Currency:       "USD",
		AmountCents:    60000,
		HoursPerWeek:   intPtr(20),
	}
	require.NoError(t, service.Submit(context.Background(), report))
	require.Equal(t, int64(3000), report.NormalizedHourlyCents)

	updated, err := service.UpdateWage(context.Background(), memberClaims("u-1"), report.ID, wage.WagePatch{
		HoursPerWeek: intPtr(25),
	})
	require.NoError(t, err)

	assert.Equal(t, wage.PeriodWeekly, updated.WagePeriod)
	assert.Equal(t, int64(60000), updated.AmountCents)
	assert.Equal(t, "USD", updated.Currency)
	assert.Equal(t, int64(2400), updated.NormalizedHourlyCents)
}

// # Deletion and Restoration

/*
TestService_DeleteRestoreFlow covers the soft-delete round trip: counters
leave with the deletion, return with the restoration, and neither step can
run twice.
*/
func TestService_DeleteRestoreFlow(t *testing.T) {
	service, repo, versions := newTestService(t)

	report := submitHourly(t, service, 1500, strPtr("u-1"))
	require.Equal(t, 1, repo.locationCounts[10])

	// Owner deletes
	require.NoError(t, service.Delete(context.Background(), memberClaims("u-1"), report.ID))
	assert.Equal(t, 0, repo.locationCounts[10])

	// Deleted reports 404 on reads and on repeat deletion
	_, err := service.GetReport(context.Background(), report.ID)
	require.Error(t, err)

	err = service.Delete(context.Background(), memberClaims("u-1"), report.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
	assert.Equal(t, 0, repo.locationCounts[10], "double delete must not touch counters")

	// Restoration brings the counter contribution back
	restored, err := service.Restore(context.Background(), moderatorClaims(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, wage.StatusApproved, restored.Status)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, 1, repo.locationCounts[10])

	// Restoring a live report conflicts
	_, err = service.Restore(context.Background(), moderatorClaims(), report.ID)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)

	// Submit, delete and restore each bump once; the failed repeats do not
	assert.Equal(t, 3, versions.BumpCount(cache.KeyWages))
}

// # Moderation

/*
TestService_Moderate flips a pending report through approval and rejection;
the counters follow each transition and the recorded score never changes.
*/
func TestService_Moderate(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.statsErr = errors.New("stats backend down")

	report := submitHourly(t, service, 1500, nil)
	require.Equal(t, wage.StatusPending, report.Status)
	require.Equal(t, 0, repo.locationCounts[10])
	repo.statsErr = nil

	approved, err := service.Moderate(context.Background(), report.ID, wage.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, wage.StatusApproved, approved.Status)
	assert.Equal(t, wage.ScoreUnscored, approved.SanityScore, "moderation never rewrites the score")
	assert.Equal(t, 1, repo.locationCounts[10])

	rejected, err := service.Moderate(context.Background(), report.ID, wage.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, wage.StatusRejected, rejected.Status)
	assert.Equal(t, 0, repo.locationCounts[10])

	_, err = service.Moderate(context.Background(), report.ID, wage.Status("published"))
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
}

// # Statistics

/*
TestService_WageStats resolves the scope before computing, so unknown
scopes 404 instead of returning an empty snapshot.
*/
func TestService_WageStats(t *testing.T) {
	service, _, _ := newTestService(t)

	for _, cents := range []int64{1400, 1500, 1600} {
		submitHourly(t, service, cents, nil)
	}

	snapshot, err := service.LocationWageStats(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.SampleSize)
	assert.Equal(t, int64(1500), snapshot.MedianCents)

	_, err = service.LocationWageStats(context.Background(), 999)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	_, err = service.OrganizationWageStats(context.Background(), 999)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)
}

// # Reconciliation

/*
TestService_Reconcile heals manufactured counter drift and invalidates the
cached surfaces; a clean pass afterwards changes nothing.
*/
func TestService_Reconcile(t *testing.T) {
	service, repo, versions := newTestService(t)

	submitHourly(t, service, 1500, nil)
	submitHourly(t, service, 1600, nil)
	bumpsBefore := versions.BumpCount(cache.KeyWages)

	// Manufactured drift
	repo.locationCounts[10] = 99
	repo.organizationCounts[20] = 0

	require.NoError(t, service.Reconcile(context.Background()))
	assert.Equal(t, 2, repo.locationCounts[10])
	assert.Equal(t, 2, repo.organizationCounts[20])
	assert.Equal(t, bumpsBefore+1, versions.BumpCount(cache.KeyWages))

	// A drift-free sweep does not invalidate caches
	require.NoError(t, service.Reconcile(context.Background()))
	assert.Equal(t, bumpsBefore+1, versions.BumpCount(cache.KeyWages))
}
