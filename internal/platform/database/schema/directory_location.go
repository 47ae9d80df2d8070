package schema

// DirectoryLocationTable represents the 'directory.locations' table
type DirectoryLocationTable struct {
	Table            string
	ID               string
	OrganizationID   string
	Name             string
	AddressLine      string
	City             string
	Region           string
	PostalCode       string
	CountryCode      string
	Latitude         string
	Longitude        string
	Geog             string
	IsActive         string
	WageReportsCount string
	CreatedAt        string
	UpdatedAt        string
}

// DirectoryLocation is the schema definition for directory.locations
var DirectoryLocation = DirectoryLocationTable{
	Table:            "directory.locations",
	ID:               "id",
	OrganizationID:   "organization_id",
	Name:             "name",
	AddressLine:      "address_line",
	City:             "city",
	Region:           "region",
	PostalCode:       "postal_code",
	CountryCode:      "country_code",
	Latitude:         "latitude",
	Longitude:        "longitude",
	Geog:             "geog",
	IsActive:         "is_active",
	WageReportsCount: "wage_reports_count",
	CreatedAt:        "created_at",
	UpdatedAt:        "updated_at",
}

func (t DirectoryLocationTable) Columns() []string {
	return []string{
		t.ID, t.OrganizationID, t.Name, t.AddressLine, t.City, t.Region,
		t.PostalCode, t.CountryCode, t.Latitude, t.Longitude, t.Geog,
		t.IsActive, t.WageReportsCount, t.CreatedAt, t.UpdatedAt,
	}
}
