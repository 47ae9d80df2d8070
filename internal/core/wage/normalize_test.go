// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdtp/api/internal/core/wage"
)

func intPtr(value int) *int {
	return &value
}

/*
TestNormalize_Conversions checks every pay period against hand-computed
hourly rates, including the truncation behavior of integer division.
*/
func TestNormalize_Conversions(t *testing.T) {
	tests := []struct {
		name         string
		amountCents  int64
		period       wage.WagePeriod
		hoursPerWeek *int
		want         int64
	}{
		{"hourly_identity", 2500, wage.PeriodHourly, nil, 2500},
		{"hourly_ignores_hours", 2500, wage.PeriodHourly, intPtr(25), 2500},
		{"weekly_default_hours", 100000, wage.PeriodWeekly, nil, 2500},
		{"weekly_explicit_hours", 120000, wage.PeriodWeekly, intPtr(30), 4000},
		{"biweekly_default_hours", 200000, wage.PeriodBiweekly, nil, 2500},
		{"biweekly_explicit_hours", 240000, wage.PeriodBiweekly, intPtr(30), 4000},
		{"monthly_default_hours_truncates", 400000, wage.PeriodMonthly, nil, 2307},
		{"yearly_default_hours_truncates", 6000000, wage.PeriodYearly, nil, 2884},
		{"yearly_explicit_hours", 6000000, wage.PeriodYearly, intPtr(20), 5769},
		{"per_shift_eight_hours", 12000, wage.PeriodPerShift, nil, 1500},
		{"per_shift_ignores_hours", 12000, wage.PeriodPerShift, intPtr(60), 1500},
		{"tiny_weekly_truncates_to_zero", 30, wage.PeriodWeekly, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wage.Normalize(tt.amountCents, tt.period, tt.hoursPerWeek)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestNormalize_Rejections checks the error paths: non-positive amounts,
explicit non-positive hours, and unknown periods.
*/
func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		amountCents  int64
		period       wage.WagePeriod
		hoursPerWeek *int
		wantErr      error
	}{
		{"zero_amount", 0, wage.PeriodHourly, nil, wage.ErrNonPositiveAmount},
		{"negative_amount", -500, wage.PeriodYearly, nil, wage.ErrNonPositiveAmount},
		{"zero_hours", 100000, wage.PeriodWeekly, intPtr(0), wage.ErrInvalidHours},
		{"negative_hours", 100000, wage.PeriodWeekly, intPtr(-10), wage.ErrInvalidHours},
		{"unknown_period", 100000, wage.WagePeriod("fortnightly"), nil, wage.ErrUnknownPeriod},
		{"empty_period", 100000, wage.WagePeriod(""), nil, wage.ErrUnknownPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wage.Normalize(tt.amountCents, tt.period, tt.hoursPerWeek)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, got)
		})
	}
}

/*
TestNormalize_HoursValidatedStructurally confirms explicit non-positive
hours are rejected even for periods whose conversion never divides by them.
*/
func TestNormalize_HoursValidatedStructurally(t *testing.T) {
	_, err := wage.Normalize(2500, wage.PeriodHourly, intPtr(-5))
	require.ErrorIs(t, err, wage.ErrInvalidHours)

	_, err = wage.Normalize(12000, wage.PeriodPerShift, intPtr(0))
	require.ErrorIs(t, err, wage.ErrInvalidHours)
}

/*
TestNormalize_Deterministic runs the same conversion repeatedly and expects
identical output every time.
*/
func TestNormalize_Deterministic(t *testing.T) {
	first, err := wage.Normalize(6000000, wage.PeriodYearly, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := wage.Normalize(6000000, wage.PeriodYearly, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
