// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdtp/api/internal/core/directory"
	"github.com/wdtp/api/internal/platform/apperr"
	"github.com/wdtp/api/internal/platform/dberr"
)

// # Test Doubles

// fakeRepository records which lookup path the service chose and echoes
// back the filters it was handed.
type fakeRepository struct {
	industries    map[int64]*directory.Industry
	industrySlugs map[string]*directory.Industry
	organizations map[int64]*directory.Organization

	idLookups        int
	slugLookups      int
	lastLocationNear *directory.NearFilter
	locationListings int
	orgSiteListings  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		industries:    map[int64]*directory.Industry{},
		industrySlugs: map[string]*directory.Industry{},
		organizations: map[int64]*directory.Organization{},
	}
}

func (f *fakeRepository) ListIndustries(_ context.Context) ([]*directory.Industry, error) {
	industries := make([]*directory.Industry, 0, len(f.industries))
	for _, industry := range f.industries {
		industries = append(industries, industry)
	}
	return industries, nil
}

func (f *fakeRepository) GetIndustryByID(_ context.Context, id int64) (*directory.Industry, error) {
	f.idLookups++
	if industry, ok := f.industries[id]; ok {
		return industry, nil
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) GetIndustryBySlug(_ context.Context, slug string) (*directory.Industry, error) {
	f.slugLookups++
	if industry, ok := f.industrySlugs[slug]; ok {
		return industry, nil
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) ListOrganizations(_ context.Context, _ directory.OrganizationFilter, _, _ int) ([]*directory.Organization, int, error) {
	return nil, 0, nil
}

func (f *fakeRepository) GetOrganizationByID(_ context.Context, id int64) (*directory.Organization, error) {
	f.idLookups++
	if organization, ok := f.organizations[id]; ok {
		return organization, nil
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) GetOrganizationBySlug(_ context.Context, slug string) (*directory.Organization, error) {
	f.slugLookups++
	for _, organization := range f.organizations {
		if organization.Slug == slug {
			return organization, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) ListOrganizationLocations(_ context.Context, _ int64, _, _ int) ([]*directory.Location, int, error) {
	f.orgSiteListings++
	return nil, 0, nil
}

func (f *fakeRepository) ListLocations(_ context.Context, filter directory.LocationFilter, _, _ int) ([]*directory.Location, int, error) {
	f.locationListings++
	f.lastLocationNear = filter.Near
	return nil, 0, nil
}

func (f *fakeRepository) GetLocationByID(_ context.Context, _ int64) (*directory.Location, error) {
	return nil, dberr.ErrNotFound
}

// # Identifier Resolution

/*
TestService_GetIndustry_IdentifierResolution verifies that one path segment
serves both numeric primary keys and slugs, and that strings a primary key
could never be (zero, negative, mixed) take the slug path.
*/
func TestService_GetIndustry_IdentifierResolution(t *testing.T) {
	repo := newFakeRepository()
	repo.industries[7] = &directory.Industry{ID: 7, Name: "Food Service", Slug: "food-service"}
	repo.industrySlugs["food-service"] = repo.industries[7]
	service := directory.NewService(repo)

	tests := []struct {
		name       string
		identifier string
		wantSlug   bool
	}{
		{name: "numeric_takes_id_path", identifier: "7", wantSlug: false},
		{name: "slug_takes_slug_path", identifier: "food-service", wantSlug: true},
		{name: "zero_is_not_a_key", identifier: "0", wantSlug: true},
		{name: "negative_is_not_a_key", identifier: "-7", wantSlug: true},
		{name: "mixed_is_not_a_key", identifier: "7-eleven", wantSlug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idBefore, slugBefore := repo.idLookups, repo.slugLookups

			industry, err := service.GetIndustry(context.Background(), tt.identifier)

			if tt.wantSlug {
				assert.Equal(t, slugBefore+1, repo.slugLookups)
				assert.Equal(t, idBefore, repo.idLookups)
			} else {
				assert.Equal(t, idBefore+1, repo.idLookups)
				assert.Equal(t, slugBefore, repo.slugLookups)
			}

			if tt.identifier == "7" || tt.identifier == "food-service" {
				require.NoError(t, err)
				assert.Equal(t, int64(7), industry.ID)
			} else {
				require.Error(t, err)
			}
		})
	}
}

/*
TestService_GetOrganization_BySlug verifies employers resolve through the
same dual identifier scheme.
*/
func TestService_GetOrganization_BySlug(t *testing.T) {
	repo := newFakeRepository()
	repo.organizations[3] = &directory.Organization{ID: 3, Name: "Burrito Barn", Slug: "burrito-barn", IsActive: true}
	service := directory.NewService(repo)

	bySlug, err := service.GetOrganization(context.Background(), "burrito-barn")
	require.NoError(t, err)
	assert.Equal(t, int64(3), bySlug.ID)

	byID, err := service.GetOrganization(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "burrito-barn", byID.Slug)
}

// # Nested Listings

/*
TestService_OrganizationLocations_UnknownOrganization verifies a missing
employer surfaces as not found instead of an empty page, and that the site
listing never runs.
*/
func TestService_OrganizationLocations_UnknownOrganization(t *testing.T) {
	repo := newFakeRepository()
	service := directory.NewService(repo)

	_, _, err := service.OrganizationLocations(context.Background(), 99, 20, 0)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, 0, repo.orgSiteListings)
}

// # Proximity Search

/*
TestService_ListLocations_NearDefaults verifies an omitted radius falls
back to the default before the filter reaches the store.
*/
func TestService_ListLocations_NearDefaults(t *testing.T) {
	repo := newFakeRepository()
	service := directory.NewService(repo)

	filter := directory.LocationFilter{
		Near: &directory.NearFilter{Latitude: 40.7, Longitude: -74.0},
	}
	_, _, err := service.ListLocations(context.Background(), filter, 20, 0)

	require.NoError(t, err)
	require.NotNil(t, repo.lastLocationNear)
	assert.Equal(t, directory.DefaultRadiusKM, repo.lastLocationNear.RadiusKM)
}

/*
TestService_ListLocations_NearValidation rejects coordinates and radii that
fall outside the searchable globe.
*/
func TestService_ListLocations_NearValidation(t *testing.T) {
	repo := newFakeRepository()
	service := directory.NewService(repo)

	tests := []struct {
		name string
		near directory.NearFilter
	}{
		{name: "latitude_above_range", near: directory.NearFilter{Latitude: 91, Longitude: 0, RadiusKM: 5}},
		{name: "latitude_below_range", near: directory.NearFilter{Latitude: -91, Longitude: 0, RadiusKM: 5}},
		{name: "longitude_above_range", near: directory.NearFilter{Latitude: 0, Longitude: 181, RadiusKM: 5}},
		{name: "longitude_below_range", near: directory.NearFilter{Latitude: 0, Longitude: -181, RadiusKM: 5}},
		{name: "radius_negative", near: directory.NearFilter{Latitude: 40, Longitude: -74, RadiusKM: -1}},
		{name: "radius_beyond_cap", near: directory.NearFilter{Latitude: 40, Longitude: -74, RadiusKM: 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near := tt.near
			_, _, err := service.ListLocations(context.Background(), directory.LocationFilter{Near: &near}, 20, 0)

			var appErr *apperr.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Equal(t, 0, repo.locationListings)
		})
	}
}

/*
TestService_ListLocations_WithoutNear verifies plain listings pass through
untouched.
*/
func TestService_ListLocations_WithoutNear(t *testing.T) {
	repo := newFakeRepository()
	service := directory.NewService(repo)

	_, _, err := service.ListLocations(context.Background(), directory.LocationFilter{City: "Portland"}, 20, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, repo.locationListings)
	assert.Nil(t, repo.lastLocationNear)
}
