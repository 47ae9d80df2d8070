// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage

import "context"

// # Scoring Constants

const (
	// MinSampleSize is the smallest population a statistical tier needs
	// before its median/MAD are trusted over the next tier down.
	MinSampleSize = 3

	// GlobalMinHourlyCents and GlobalMaxHourlyCents bound the plausible
	// hourly range ($2.00 to $200.00) when no population exists to
	// compare against.
	GlobalMinHourlyCents = 200
	GlobalMaxHourlyCents = 20000
)

// Sanity scores assigned by the tiers. The sign carries the decision:
// non-negative scores auto-approve, negative scores hold for review.
const (
	// ScoreClose marks a rate within 1.5 MAD of the median (or inside the
	// global bounds when no population exists).
	ScoreClose = 5

	// ScoreNormal marks a rate within 3 MAD of the median.
	ScoreNormal = 0

	// ScoreOutlier marks a rate within 6 MAD of the median.
	ScoreOutlier = -2

	// ScoreExtreme marks a rate beyond 6 MAD, or outside the global bounds.
	ScoreExtreme = -5

	// ScoreUnscored marks a report persisted while the statistics backend
	// was unavailable. It is negative so such reports hold for review.
	ScoreUnscored = -1
)

// # Statistics Contracts

// Stats summarizes an approved wage population for scoring.
//
// MedianCents and MADCents are pre-rounded to whole cents by the provider,
// keeping this package free of floating point.
type Stats struct {
	SampleSize  int   `json:"sample_size"`
	MedianCents int64 `json:"median_cents"`
	MADCents    int64 `json:"mad_cents"`
}

// StatsProvider supplies wage statistics per scope.
//
// # Architecture
//
// The scorer never touches storage; it sees populations only through this
// interface. The production implementation computes median and MAD in SQL,
// and tests substitute fixed values.
type StatsProvider interface {
	// LocationStats summarizes the approved, non-deleted reports at one
	// location, excluding the report with excludeReportID (0 = none).
	LocationStats(context context.Context, locationID int64, excludeReportID int64) (Stats, error)

	// OrganizationStats summarizes the approved, non-deleted reports
	// across all of one organization's locations, excluding excludeReportID.
	OrganizationStats(context context.Context, organizationID int64, excludeReportID int64) (Stats, error)
}

// Candidate is a normalized rate awaiting a sanity score.
//
// ExcludeReportID removes the report's own previous value from its
// reference population when rescoring an update; it is 0 for submissions.
type Candidate struct {
	HourlyCents     int64
	LocationID      int64
	OrganizationID  int64
	ExcludeReportID int64
}

/*
ScoreCandidate assigns a sanity score to a normalized hourly rate.

Description: Walks the tier ladder. The location population is consulted
first; if it is too small, the organization-wide population; and when both
are too small, fixed global bounds decide. Within a statistical tier the
score depends on how many MADs the candidate sits from the median:

	ratio <= 1.5  ->  ScoreClose
	ratio <= 3    ->  ScoreNormal
	ratio <= 6    ->  ScoreOutlier
	ratio >  6    ->  ScoreExtreme

A zero MAD (every report identical) scores ScoreClose on an exact match
and ScoreNormal otherwise. Ratios are evaluated by integer
cross-multiplication, never by floating-point division.

Parameters:
  - context: context.Context
  - provider: The statistics source
  - candidate: The rate and scope to score

Returns:
  - int: The sanity score
  - error: Provider failures, which the caller maps to a degraded persist
*/
func ScoreCandidate(context context.Context, provider StatsProvider, candidate Candidate) (int, error) {

	// 1. Location tier
	locationStats, err := provider.LocationStats(context, candidate.LocationID, candidate.ExcludeReportID)
	if err != nil {
		return 0, err
	}
	if locationStats.SampleSize >= MinSampleSize {
		return scoreAgainst(locationStats, candidate.HourlyCents), nil
	}

	// 2. Organization tier
	organizationStats, err := provider.OrganizationStats(context, candidate.OrganizationID, candidate.ExcludeReportID)
	if err != nil {
		return 0, err
	}
	if organizationStats.SampleSize >= MinSampleSize {
		return scoreAgainst(organizationStats, candidate.HourlyCents), nil
	}

	// 3. Global bounds tier
	if candidate.HourlyCents >= GlobalMinHourlyCents && candidate.HourlyCents <= GlobalMaxHourlyCents {
		return ScoreClose, nil
	}
	return ScoreExtreme, nil
}

// scoreAgainst scores a candidate against one population's median and MAD.
func scoreAgainst(stats Stats, hourlyCents int64) int {
	deviation := hourlyCents - stats.MedianCents
	if deviation < 0 {
		deviation = -deviation
	}

	// Degenerate population: every report is the same value.
	if stats.MADCents == 0 {
		if deviation == 0 {
			return ScoreClose
		}
		return ScoreNormal
	}

	// deviation/mad <= k evaluated as deviation <= k*mad (exact in integers).
	switch {
	case 2*deviation <= 3*stats.MADCents:
		return ScoreClose
	case deviation <= 3*stats.MADCents:
		return ScoreNormal
	case deviation <= 6*stats.MADCents:
		return ScoreOutlier
	default:
		return ScoreExtreme
	}
}

// ImpliedStatus maps a sanity score to the moderation status it implies.
func ImpliedStatus(score int) Status {
	if score >= 0 {
		return StatusApproved
	}
	return StatusPending
}

// # Public Statistics Read Model

// StatsSnapshot is the wage-statistics payload served per location and per
// organization. All rates are normalized hourly cents.
type StatsSnapshot struct {
	SampleSize  int   `json:"sample_size"`
	MinCents    int64 `json:"min_cents"`
	MaxCents    int64 `json:"max_cents"`
	AvgCents    int64 `json:"avg_cents"`
	P25Cents    int64 `json:"p25_cents"`
	MedianCents int64 `json:"median_cents"`
	P75Cents    int64 `json:"p75_cents"`
	MADCents    int64 `json:"mad_cents"`
}
