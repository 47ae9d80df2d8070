package schema

// WagesReportTable represents the 'wages.wage_reports' table
type WagesReportTable struct {
	Table                 string
	ID                    string
	LocationID            string
	OrganizationID        string
	UserID                string
	JobTitle              string
	EmploymentType        string
	WagePeriod            string
	Currency              string
	AmountCents           string
	HoursPerWeek          string
	EffectiveDate         string
	TipsIncluded          string
	Unionized             string
	Notes                 string
	NormalizedHourlyCents string
	SanityScore           string
	Status                string
	DeletedAt             string
	CreatedAt             string
	UpdatedAt             string
}

// WagesReport is the schema definition for wages.wage_reports
var WagesReport = WagesReportTable{
	Table:                 "wages.wage_reports",
	ID:                    "id",
	LocationID:            "location_id",
	OrganizationID:        "organization_id",
	UserID:                "user_id",
	JobTitle:              "job_title",
	EmploymentType:        "employment_type",
	WagePeriod:            "wage_period",
	Currency:              "currency",
	AmountCents:           "amount_cents",
	HoursPerWeek:          "hours_per_week",
	EffectiveDate:         "effective_date",
	TipsIncluded:          "tips_included",
	Unionized:             "unionized",
	Notes:                 "notes",
	NormalizedHourlyCents: "normalized_hourly_cents",
	SanityScore:           "sanity_score",
	Status:                "status",
	DeletedAt:             "deleted_at",
	CreatedAt:             "created_at",
	UpdatedAt:             "updated_at",
}

func (t WagesReportTable) Columns() []string {
	return []string{
		t.ID, t.LocationID, t.OrganizationID, t.UserID, t.JobTitle,
		t.EmploymentType, t.WagePeriod, t.Currency, t.AmountCents,
		t.HoursPerWeek, t.EffectiveDate, t.TipsIncluded, t.Unionized, t.Notes,
		t.NormalizedHourlyCents, t.SanityScore, t.Status,
		t.DeletedAt, t.CreatedAt, t.UpdatedAt,
	}
}
