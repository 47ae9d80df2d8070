// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package wage

import "errors"

// # Normalization Constants

const (
	// DefaultHoursPerWeek is assumed when the submitter does not state
	// their weekly hours.
	DefaultHoursPerWeek = 40

	// DefaultShiftHours is the assumed length of one shift. Shift length
	// is not collected from submitters, so every per-shift amount divides
	// by this fixed value.
	DefaultShiftHours = 8

	weeksPerYear  = 52
	monthsPerYear = 12
)

var (
	// ErrNonPositiveAmount rejects zero and negative wage amounts.
	ErrNonPositiveAmount = errors.New("wage: amount_cents must be positive")

	// ErrInvalidHours rejects an explicit zero or negative hours_per_week.
	// Absent hours are fine (the default applies); stated nonsense is not.
	ErrInvalidHours = errors.New("wage: hours_per_week must be positive when provided")

	// ErrUnknownPeriod rejects wage periods outside the accepted set.
	ErrUnknownPeriod = errors.New("wage: unknown wage period")
)

/*
Normalize converts a wage amount in any supported pay period to hourly cents.

Description: Pure integer arithmetic with truncating division. The same
inputs always produce the same output, and the result does not depend on
any population data. Plausibility is NOT checked here; a normalized rate of
3 cents/hour is structurally valid and left for the scorer to flag.

Conversion table (H = hours_per_week, defaulting to 40):

	hourly     amount
	weekly     amount / H
	biweekly   amount / (2*H)
	monthly    amount * 12 / (52*H)
	yearly     amount / (52*H)
	per_shift  amount / 8

Parameters:
  - amountCents: The submitted amount in integer cents
  - period: The pay interval the amount refers to
  - hoursPerWeek: Stated weekly hours, or nil for the default

Returns:
  - int64: Hourly rate in cents, truncated toward zero
  - error: ErrNonPositiveAmount, ErrInvalidHours or ErrUnknownPeriod
*/
func Normalize(amountCents int64, period WagePeriod, hoursPerWeek *int) (int64, error) {

	// 1. Structural validation
	if amountCents <= 0 {
		return 0, ErrNonPositiveAmount
	}

	hours := int64(DefaultHoursPerWeek)
	if hoursPerWeek != nil {
		if *hoursPerWeek <= 0 {
			return 0, ErrInvalidHours
		}
		hours = int64(*hoursPerWeek)
	}

	// 2. Period conversion
	switch period {
	case PeriodHourly:
		return amountCents, nil
	case PeriodWeekly:
		return amountCents / hours, nil
	case PeriodBiweekly:
		return amountCents / (2 * hours), nil
	case PeriodMonthly:
		// Annualize first so truncation happens once, at the end.
		return amountCents * monthsPerYear / (weeksPerYear * hours), nil
	case PeriodYearly:
		return amountCents / (weeksPerYear * hours), nil
	case PeriodPerShift:
		return amountCents / DefaultShiftHours, nil
	default:
		return 0, ErrUnknownPeriod
	}
}
