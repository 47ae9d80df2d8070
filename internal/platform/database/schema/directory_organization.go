package schema

// DirectoryOrganizationTable represents the 'directory.organizations' table
type DirectoryOrganizationTable struct {
	Table            string
	ID               string
	IndustryID       string
	Name             string
	Slug             string
	Website          string
	Description      string
	IsActive         string
	WageReportsCount string
	CreatedAt        string
	UpdatedAt        string
}

// DirectoryOrganization is the schema definition for directory.organizations
var DirectoryOrganization = DirectoryOrganizationTable{
	Table:            "directory.organizations",
	ID:               "id",
	IndustryID:       "industry_id",
	Name:             "name",
	Slug:             "slug",
	Website:          "website",
	Description:      "description",
	IsActive:         "is_active",
	WageReportsCount: "wage_reports_count",
	CreatedAt:        "created_at",
	UpdatedAt:        "updated_at",
}

func (t DirectoryOrganizationTable) Columns() []string {
	return []string{
		t.ID, t.IndustryID, t.Name, t.Slug, t.Website, t.Description,
		t.IsActive, t.WageReportsCount, t.CreatedAt, t.UpdatedAt,
	}
}
