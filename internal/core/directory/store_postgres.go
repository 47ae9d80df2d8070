// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wdtp/api/internal/platform/database/schema"
	"github.com/wdtp/api/internal/platform/dberr"
)

// PostgresRepository implements [Repository] backed by PostgreSQL + PostGIS.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the PostGIS-backed directory store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Column Lists

// industryColumns returns the canonical SELECT list for industry scans.
func industryColumns() string {
	i := schema.DirectoryIndustry
	return strings.Join([]string{
		i.ID, i.ParentID, i.Name, i.Slug, i.CreatedAt, i.UpdatedAt,
	}, ", ")
}

// organizationColumns returns the canonical SELECT list for organization scans.
func organizationColumns() string {
	o := schema.DirectoryOrganization
	return strings.Join([]string{
		o.ID, o.IndustryID, o.Name, o.Slug, o.Website, o.Description,
		o.IsActive, o.WageReportsCount, o.CreatedAt, o.UpdatedAt,
	}, ", ")
}

// locationColumns returns the canonical SELECT list for location scans.
// The geography column stays out; callers read latitude/longitude instead.
func locationColumns() string {
	l := schema.DirectoryLocation
	return strings.Join([]string{
		l.ID, l.OrganizationID, l.Name, l.AddressLine, l.City, l.Region,
		l.PostalCode, l.CountryCode, l.Latitude, l.Longitude,
		l.IsActive, l.WageReportsCount, l.CreatedAt, l.UpdatedAt,
	}, ", ")
}

// # Industry Queries

func (repository *PostgresRepository) ListIndustries(context context.Context) ([]*Industry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s ASC`,
		industryColumns(), schema.DirectoryIndustry.Table, schema.DirectoryIndustry.Name)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_industries")
	}
	defer rows.Close()

	var industries []*Industry
	for rows.Next() {
		industry := &Industry{}
		if err := rows.Scan(
			&industry.ID, &industry.ParentID, &industry.Name, &industry.Slug,
			&industry.CreatedAt, &industry.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_industry")
		}
		industries = append(industries, industry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_industries")
	}
	return industries, nil
}

func (repository *PostgresRepository) GetIndustryByID(context context.Context, id int64) (*Industry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		industryColumns(), schema.DirectoryIndustry.Table, schema.DirectoryIndustry.ID)
	return repository.getIndustry(context, query, id)
}

func (repository *PostgresRepository) GetIndustryBySlug(context context.Context, slug string) (*Industry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		industryColumns(), schema.DirectoryIndustry.Table, schema.DirectoryIndustry.Slug)
	return repository.getIndustry(context, query, slug)
}

func (repository *PostgresRepository) getIndustry(context context.Context, query string, key any) (*Industry, error) {
	industry := &Industry{}
	err := repository.pool.QueryRow(context, query, key).Scan(
		&industry.ID, &industry.ParentID, &industry.Name, &industry.Slug,
		&industry.CreatedAt, &industry.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_industry")
	}
	return industry, nil
}

// # Organization Queries

func (repository *PostgresRepository) ListOrganizations(context context.Context, f OrganizationFilter, limit, offset int) ([]*Organization, int, error) {
	o := schema.DirectoryOrganization
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, organizationColumns(), o.Table, o.IsActive)
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s`, o.Table, o.IsActive)

	args := []any{}
	countArgs := []any{}

	if f.IndustryID > 0 {
		clause := fmt.Sprintf(" AND %s = $%s", o.IndustryID, itos(len(args)+1))
		query += clause
		countQuery += clause
		args = append(args, f.IndustryID)
		countArgs = append(countArgs, f.IndustryID)
	}

	if f.Query != "" {
		searchTerm := "%" + f.Query + "%"
		position := "$" + itos(len(args)+1)
		clause := fmt.Sprintf(" AND (%s ILIKE %s OR %s ILIKE %s)", o.Name, position, o.Slug, position)
		query += clause
		countQuery += clause
		args = append(args, searchTerm)
		countArgs = append(countArgs, searchTerm)
	}

	query += fmt.Sprintf(" ORDER BY %s ASC LIMIT $", o.Name) + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_organizations")
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_organizations")
	}
	defer rows.Close()

	var organizations []*Organization
	for rows.Next() {
		organization := &Organization{}
		if err := rows.Scan(
			&organization.ID, &organization.IndustryID, &organization.Name, &organization.Slug,
			&organization.Website, &organization.Description, &organization.IsActive,
			&organization.WageReportsCount, &organization.CreatedAt, &organization.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_organization")
		}
		organizations = append(organizations, organization)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_organizations")
	}
	return organizations, total, nil
}

func (repository *PostgresRepository) GetOrganizationByID(context context.Context, id int64) (*Organization, error) {
	o := schema.DirectoryOrganization
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		organizationColumns(), o.Table, o.ID, o.IsActive)
	return repository.getOrganization(context, query, id)
}

func (repository *PostgresRepository) GetOrganizationBySlug(context context.Context, slug string) (*Organization, error) {
	o := schema.DirectoryOrganization
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		organizationColumns(), o.Table, o.Slug, o.IsActive)
	return repository.getOrganization(context, query, slug)
}

func (repository *PostgresRepository) getOrganization(context context.Context, query string, key any) (*Organization, error) {
	organization := &Organization{}
	err := repository.pool.QueryRow(context, query, key).Scan(
		&organization.ID, &organization.IndustryID, &organization.Name, &organization.Slug,
		&organization.Website, &organization.Description, &organization.IsActive,
		&organization.WageReportsCount, &organization.CreatedAt, &organization.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_organization")
	}
	return organization, nil
}

func (repository *PostgresRepository) ListOrganizationLocations(context context.Context, organizationID int64, limit, offset int) ([]*Location, int, error) {
	l := schema.DirectoryLocation
	query := fmt.Sprintf(
		`SELECT %s, count(*) OVER() AS total FROM %s WHERE %s = $1 AND %s ORDER BY %s ASC LIMIT $2 OFFSET $3`,
		locationColumns(), l.Table, l.OrganizationID, l.IsActive, l.Name,
	)

	rows, err := repository.pool.Query(context, query, organizationID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_organization_locations")
	}
	defer rows.Close()

	var total int
	var locations []*Location
	for rows.Next() {
		location := &Location{}
		if err := rows.Scan(
			&location.ID, &location.OrganizationID, &location.Name, &location.AddressLine,
			&location.City, &location.Region, &location.PostalCode, &location.CountryCode,
			&location.Latitude, &location.Longitude, &location.IsActive,
			&location.WageReportsCount, &location.CreatedAt, &location.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_location")
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_organization_locations")
	}
	return locations, total, nil
}

// # Location Queries

func (repository *PostgresRepository) ListLocations(context context.Context, f LocationFilter, limit, offset int) ([]*Location, int, error) {
	if f.Near != nil {
		return repository.listLocationsNear(context, f, limit, offset)
	}

	l := schema.DirectoryLocation
	query := fmt.Sprintf(`SELECT %s, count(*) OVER() AS total FROM %s WHERE %s`,
		locationColumns(), l.Table, l.IsActive)

	args := []any{}
	if f.City != "" {
		query += fmt.Sprintf(" AND lower(%s) = lower($%s)", l.City, itos(len(args)+1))
		args = append(args, f.City)
	}

	query += fmt.Sprintf(" ORDER BY %s ASC LIMIT $", l.Name) + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_locations")
	}
	defer rows.Close()

	var total int
	var locations []*Location
	for rows.Next() {
		location := &Location{}
		if err := rows.Scan(
			&location.ID, &location.OrganizationID, &location.Name, &location.AddressLine,
			&location.City, &location.Region, &location.PostalCode, &location.CountryCode,
			&location.Latitude, &location.Longitude, &location.IsActive,
			&location.WageReportsCount, &location.CreatedAt, &location.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_location")
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_locations")
	}
	return locations, total, nil
}

/*
listLocationsNear runs the proximity search against the geography index.

ST_MakePoint takes longitude first. ST_DWithin against geography operates in
meters, so the radius converts from kilometers before it hits the planner,
and ST_Distance reports meters back for the same origin point.
*/
func (repository *PostgresRepository) listLocationsNear(context context.Context, f LocationFilter, limit, offset int) ([]*Location, int, error) {
	l := schema.DirectoryLocation
	origin := `ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography`
	query := fmt.Sprintf(
		`SELECT %s, count(*) OVER() AS total, ST_Distance(%s, %s) AS distance_meters
		   FROM %s
		  WHERE %s AND ST_DWithin(%s, %s, $3)`,
		locationColumns(), l.Geog, origin, l.Table, l.IsActive, l.Geog, origin,
	)

	args := []any{f.Near.Longitude, f.Near.Latitude, f.Near.RadiusKM * 1000}
	if f.City != "" {
		query += fmt.Sprintf(" AND lower(%s) = lower($%s)", l.City, itos(len(args)+1))
		args = append(args, f.City)
	}

	query += fmt.Sprintf(" ORDER BY distance_meters ASC, %s ASC LIMIT $", l.ID) + itos(len(args)+1) + ` OFFSET $` + itos(len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_locations_near")
	}
	defer rows.Close()

	var total int
	var locations []*Location
	for rows.Next() {
		location := &Location{}
		var distance float64
		if err := rows.Scan(
			&location.ID, &location.OrganizationID, &location.Name, &location.AddressLine,
			&location.City, &location.Region, &location.PostalCode, &location.CountryCode,
			&location.Latitude, &location.Longitude, &location.IsActive,
			&location.WageReportsCount, &location.CreatedAt, &location.UpdatedAt,
			&total, &distance,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_location")
		}
		location.DistanceMeters = &distance
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_locations_near")
	}
	return locations, total, nil
}

func (repository *PostgresRepository) GetLocationByID(context context.Context, id int64) (*Location, error) {
	l := schema.DirectoryLocation
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		locationColumns(), l.Table, l.ID, l.IsActive)

	location := &Location{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&location.ID, &location.OrganizationID, &location.Name, &location.AddressLine,
		&location.City, &location.Region, &location.PostalCode, &location.CountryCode,
		&location.Latitude, &location.Longitude, &location.IsActive,
		&location.WageReportsCount, &location.CreatedAt, &location.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_location")
	}
	return location, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
