// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

/*
Package wage defines the core domain of WDTP: anonymous hourly-wage reports.

It owns the full lifecycle of a report (submission, wage updates, soft
deletion, restoration, moderation) together with the arithmetic that makes
reports comparable: normalization of any pay period to hourly cents, and
robust outlier scoring against the existing wage population.

Money is integer cents end to end. No floating point touches an amount on
the write path.
*/
package wage

import (
	"time"

	"github.com/wdtp/api/pkg/slice"
)

// # Enumerations

// Status is the moderation state of a wage report.
//
// Approved reports are publicly visible and counted in the denormalized
// wage_reports_count columns. Pending and rejected reports are neither.
type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"

	// StatusNone marks the absence of a countable report. It never hits
	// storage; lifecycle code uses it as the from-state of a creation or
	// restoration and the to-state of a deletion.
	StatusNone Status = ""
)

// Valid reports whether the status is one of the persistable states.
func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusPending, StatusRejected:
		return true
	}
	return false
}

// WagePeriod is the pay interval a submitted amount refers to.
type WagePeriod string

const (
	PeriodHourly   WagePeriod = "hourly"
	PeriodWeekly   WagePeriod = "weekly"
	PeriodBiweekly WagePeriod = "biweekly"
	PeriodMonthly  WagePeriod = "monthly"
	PeriodYearly   WagePeriod = "yearly"
	PeriodPerShift WagePeriod = "per_shift"
)

// Valid reports whether the period is a known pay interval.
func (p WagePeriod) Valid() bool {
	switch p {
	case PeriodHourly, PeriodWeekly, PeriodBiweekly, PeriodMonthly, PeriodYearly, PeriodPerShift:
		return true
	}
	return false
}

// WagePeriods lists every accepted pay interval, for validation messages.
func WagePeriods() []string {
	periods := []WagePeriod{
		PeriodHourly, PeriodWeekly, PeriodBiweekly,
		PeriodMonthly, PeriodYearly, PeriodPerShift,
	}
	return slice.Map(periods, func(p WagePeriod) string { return string(p) })
}

// EmploymentType categorizes the reported position.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentSeasonal EmploymentType = "seasonal"
	EmploymentContract EmploymentType = "contract"
)

// Valid reports whether the employment type is known.
func (e EmploymentType) Valid() bool {
	switch e {
	case EmploymentFullTime, EmploymentPartTime, EmploymentSeasonal, EmploymentContract:
		return true
	}
	return false
}

// EmploymentTypes lists every accepted employment type, for validation messages.
func EmploymentTypes() []string {
	types := []EmploymentType{
		EmploymentFullTime, EmploymentPartTime,
		EmploymentSeasonal, EmploymentContract,
	}
	return slice.Map(types, func(e EmploymentType) string { return string(e) })
}

// # Entity

// Report is a single wage observation at a location.
//
// UserID is an opaque submitter identifier taken from a verified token; it
// is nil for anonymous submissions and never exposed through the API.
type Report struct {
	ID             int64          `json:"id"`
	LocationID     int64          `json:"location_id"`
	OrganizationID int64          `json:"organization_id"`
	UserID         *string        `json:"-"`
	JobTitle       string         `json:"job_title"`
	EmploymentType EmploymentType `json:"employment_type"`
	WagePeriod     WagePeriod     `json:"wage_period"`
	Currency       string         `json:"currency"`
	AmountCents    int64          `json:"amount_cents"`
	HoursPerWeek   *int           `json:"hours_per_week"`
	EffectiveDate  *time.Time     `json:"effective_date,omitempty"`
	TipsIncluded   bool           `json:"tips_included"`
	Unionized      *bool          `json:"unionized"`
	Notes          *string        `json:"notes"`

	// NormalizedHourlyCents is the comparable hourly rate derived from
	// AmountCents, WagePeriod and HoursPerWeek at write time.
	NormalizedHourlyCents int64 `json:"normalized_hourly_cents"`

	// SanityScore is the outlier score assigned at the last wage write.
	// Negative scores imply a pending report.
	SanityScore int `json:"sanity_score"`

	Status    Status     `json:"status"`
	DeletedAt *time.Time `json:"-"` // soft-delete tracker
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Filter holds the parameters for a paginated wage-report search.
//
// Public listings are always scoped to approved, non-deleted reports; the
// filter only narrows further.
type Filter struct {
	LocationID     int64 // 0 = any
	OrganizationID int64 // 0 = any
	EmploymentType string
	MinHourlyCents int64 // 0 = no lower bound, applied to the normalized rate
	MaxHourlyCents int64 // 0 = no upper bound, applied to the normalized rate
}

// WagePatch carries a partial update of the wage-bearing fields. Zero and
// nil members leave the stored value unchanged. Any accepted patch triggers
// renormalization and rescoring of the report.
type WagePatch struct {
	AmountCents   int64
	WagePeriod    WagePeriod
	Currency      string
	HoursPerWeek  *int
	EffectiveDate *time.Time
	TipsIncluded  *bool
	Unionized     *bool
}

// # Field Identifiers

const (
	FieldLocationID     = "location_id"
	FieldJobTitle       = "job_title"
	FieldEmploymentType = "employment_type"
	FieldWagePeriod     = "wage_period"
	FieldCurrency       = "currency"
	FieldAmountCents    = "amount_cents"
	FieldHoursPerWeek   = "hours_per_week"
	FieldEffectiveDate  = "effective_date"
	FieldNotes          = "notes"
	FieldStatus         = "status"
)
