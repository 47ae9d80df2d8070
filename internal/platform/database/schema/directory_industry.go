package schema

// DirectoryIndustryTable represents the 'directory.industries' table
type DirectoryIndustryTable struct {
	Table     string
	ID        string
	ParentID  string
	Name      string
	Slug      string
	CreatedAt string
	UpdatedAt string
}

// DirectoryIndustry is the schema definition for directory.industries
var DirectoryIndustry = DirectoryIndustryTable{
	Table:     "directory.industries",
	ID:        "id",
	ParentID:  "parent_id",
	Name:      "name",
	Slug:      "slug",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

func (t DirectoryIndustryTable) Columns() []string {
	return []string{t.ID, t.ParentID, t.Name, t.Slug, t.CreatedAt, t.UpdatedAt}
}
