// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdtp/api/internal/core/wage"
)

// fakeStatsProvider serves canned statistics and records how it was called.
type fakeStatsProvider struct {
	locationStats     wage.Stats
	locationErr       error
	organizationStats wage.Stats
	organizationErr   error

	locationCalls     int
	organizationCalls int
	lastExclude       int64
}

func (provider *fakeStatsProvider) LocationStats(_ context.Context, _ int64, excludeReportID int64) (wage.Stats, error) {
	provider.locationCalls++
	provider.lastExclude = excludeReportID
	return provider.locationStats, provider.locationErr
}

func (provider *fakeStatsProvider) OrganizationStats(_ context.Context, _ int64, excludeReportID int64) (wage.Stats, error) {
	provider.organizationCalls++
	provider.lastExclude = excludeReportID
	return provider.organizationStats, provider.organizationErr
}

/*
TestScoreCandidate_TierLadder verifies tier selection: the location
population wins when large enough, then the organization population, then
the fixed global bounds.
*/
func TestScoreCandidate_TierLadder(t *testing.T) {
	tests := []struct {
		name              string
		locationStats     wage.Stats
		organizationStats wage.Stats
		hourlyCents       int64
		wantScore         int
		wantLocationCalls int
		wantOrgCalls      int
	}{
		{
			name:              "location_tier_wins",
			locationStats:     wage.Stats{SampleSize: 3, MedianCents: 1500, MADCents: 100},
			organizationStats: wage.Stats{SampleSize: 90, MedianCents: 9000, MADCents: 100},
			hourlyCents:       1500,
			wantScore:         wage.ScoreClose,
			wantLocationCalls: 1,
			wantOrgCalls:      0,
		},
		{
			name:              "organization_tier_when_location_thin",
			locationStats:     wage.Stats{SampleSize: 2, MedianCents: 1500, MADCents: 100},
			organizationStats: wage.Stats{SampleSize: 5, MedianCents: 2000, MADCents: 100},
			hourlyCents:       2000,
			wantScore:         wage.ScoreClose,
			wantLocationCalls: 1,
			wantOrgCalls:      1,
		},
		{
			name:              "global_bounds_inside",
			locationStats:     wage.Stats{SampleSize: 0},
			organizationStats: wage.Stats{SampleSize: 2},
			hourlyCents:       2500,
			wantScore:         wage.ScoreClose,
			wantLocationCalls: 1,
			wantOrgCalls:      1,
		},
		{
			name:              "global_bounds_below",
			locationStats:     wage.Stats{SampleSize: 0},
			organizationStats: wage.Stats{SampleSize: 0},
			hourlyCents:       199,
			wantScore:         wage.ScoreExtreme,
			wantLocationCalls: 1,
			wantOrgCalls:      1,
		},
		{
			name:              "global_bounds_above",
			locationStats:     wage.Stats{SampleSize: 1},
			organizationStats: wage.Stats{SampleSize: 2},
			hourlyCents:       20001,
			wantScore:         wage.ScoreExtreme,
			wantLocationCalls: 1,
			wantOrgCalls:      1,
		},
		{
			name:              "global_bounds_edges_are_inclusive",
			locationStats:     wage.Stats{SampleSize: 0},
			organizationStats: wage.Stats{SampleSize: 0},
			hourlyCents:       200,
			wantScore:         wage.ScoreClose,
			wantLocationCalls: 1,
			wantOrgCalls:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeStatsProvider{
				locationStats:     tt.locationStats,
				organizationStats: tt.organizationStats,
			}

			score, err := wage.ScoreCandidate(context.Background(), provider, wage.Candidate{
				HourlyCents:    tt.hourlyCents,
				LocationID:     10,
				OrganizationID: 20,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLocationCalls, provider.locationCalls)
			assert.Equal(t, tt.wantOrgCalls, provider.organizationCalls)
		})
	}
}

/*
TestScoreCandidate_Thresholds exercises the MAD-ratio boundaries exactly.
With median 1500 and MAD 200 the cut points sit at deviations 300, 600 and
1200, all inclusive.
*/
func TestScoreCandidate_Thresholds(t *testing.T) {
	tests := []struct {
		name        string
		hourlyCents int64
		want        int
	}{
		{"at_median", 1500, wage.ScoreClose},
		{"deviation_300_is_close", 1800, wage.ScoreClose},
		{"deviation_301_is_normal", 1801, wage.ScoreNormal},
		{"deviation_600_is_normal", 2100, wage.ScoreNormal},
		{"deviation_601_is_outlier", 2101, wage.ScoreOutlier},
		{"deviation_1200_is_outlier", 2700, wage.ScoreOutlier},
		{"deviation_1201_is_extreme", 2701, wage.ScoreExtreme},
		{"below_median_mirrors_close", 1200, wage.ScoreClose},
		{"below_median_mirrors_extreme", 299, wage.ScoreExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeStatsProvider{
				locationStats: wage.Stats{SampleSize: 10, MedianCents: 1500, MADCents: 200},
			}

			score, err := wage.ScoreCandidate(context.Background(), provider, wage.Candidate{
				HourlyCents:    tt.hourlyCents,
				LocationID:     10,
				OrganizationID: 20,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}
}

/*
TestScoreCandidate_OddMAD confirms the half-MAD boundary is exact even when
1.5 times the MAD is not a whole number of cents.
*/
func TestScoreCandidate_OddMAD(t *testing.T) {
	provider := &fakeStatsProvider{
		locationStats: wage.Stats{SampleSize: 10, MedianCents: 1500, MADCents: 333},
	}

	// 1.5 * 333 = 499.5, so deviation 499 is close and 500 is not.
	score, err := wage.ScoreCandidate(context.Background(), provider, wage.Candidate{HourlyCents: 1999, LocationID: 1, OrganizationID: 1})
	require.NoError(t, err)
	assert.Equal(t, wage.ScoreClose, score)

	score, err = wage.ScoreCandidate(context.Background(), provider, wage.Candidate{HourlyCents: 2000, LocationID: 1, OrganizationID: 1})
	require.NoError(t, err)
	assert.Equal(t, wage.ScoreNormal, score)
}

/*
TestScoreCandidate_ZeroMAD covers the degenerate population where every
report carries the same value.
*/
func TestScoreCandidate_ZeroMAD(t *testing.T) {
	provider := &fakeStatsProvider{
		locationStats: wage.Stats{SampleSize: 4, MedianCents: 1500, MADCents: 0},
	}

	score, err := wage.ScoreCandidate(context.Background(), provider, wage.Candidate{HourlyCents: 1500, LocationID: 1, OrganizationID: 1})
	require.NoError(t, err)
	assert.Equal(t, wage.ScoreClose, score)

	score, err = wage.ScoreCandidate(context.Background(), provider, wage.Candidate{HourlyCents: 1501, LocationID: 1, OrganizationID: 1})
	require.NoError(t, err)
	assert.Equal(t, wage.ScoreNormal, score)
}

/*
TestScoreCandidate_ProviderFailure checks that statistics backend errors
surface to the caller from either tier.
*/
func TestScoreCandidate_ProviderFailure(t *testing.T) {
	backendDown := errors.New("stats backend down")

	provider := &fakeStatsProvider{locationErr: backendDown}
	_, err := wage.ScoreCandidate(context.Background(), provider, wage.Candidate{HourlyCents: 1500, LocationID: 1, OrganizationID: 1})
	require.ErrorIs(t, err, backendDown)

	provider = &fakeStatsProvider{
		locationStats:   wage.Stats{SampleSize: 1},
		organizationErr: backendDown,
	}
	_, err = wage.ScoreCandidate(context.Background(), provider, wage.Candidate{HourlyCents: 1500, LocationID: 1, OrganizationID: 1})
	require.ErrorIs(t, err, backendDown)
}

/*
TestScoreCandidate_PassesExclusion verifies the rescoring exclusion reaches
the statistics provider.
*/
func TestScoreCandidate_PassesExclusion(t *testing.T) {
	provider := &fakeStatsProvider{
		locationStats: wage.Stats{SampleSize: 5, MedianCents: 1500, MADCents: 100},
	}

	_, err := wage.ScoreCandidate(context.Background(), provider, wage.Candidate{
		HourlyCents:     1500,
		LocationID:      1,
		OrganizationID:  1,
		ExcludeReportID: 42,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), provider.lastExclude)
}

/*
TestImpliedStatus maps scores onto moderation states: non-negative scores
approve, negative scores hold for review.
*/
func TestImpliedStatus(t *testing.T) {
	assert.Equal(t, wage.StatusApproved, wage.ImpliedStatus(wage.ScoreClose))
	assert.Equal(t, wage.StatusApproved, wage.ImpliedStatus(wage.ScoreNormal))
	assert.Equal(t, wage.StatusPending, wage.ImpliedStatus(wage.ScoreUnscored))
	assert.Equal(t, wage.StatusPending, wage.ImpliedStatus(wage.ScoreOutlier))
	assert.Equal(t, wage.StatusPending, wage.ImpliedStatus(wage.ScoreExtreme))
}
