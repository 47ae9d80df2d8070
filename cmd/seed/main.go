// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

// Command seed loads directory fixtures into the database.
//
// It reads a JSON file describing industries, organizations, and locations,
// upserts them in one transaction keyed on their slugs, and rotates the
// affected cache surfaces so running API instances pick the rows up.
//
// The loader is idempotent: re-running it with the same file converges on
// the same rows. Entities reference each other by slug, so fixture files
// stay readable and survive database resets.
//
// Usage:
//
//	DATABASE_URL=postgres://... seed -file seed/directory.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wdtp/api/internal/platform/cache"
	"github.com/wdtp/api/internal/platform/database/schema"
	pgstore "github.com/wdtp/api/internal/platform/postgres"
	redisstore "github.com/wdtp/api/internal/platform/redis"
	"github.com/wdtp/api/pkg/pointer"
	"github.com/wdtp/api/pkg/slug"
)

// # Fixture Schema

type seedIndustry struct {
	Name   string  `json:"name"`
	Slug   string  `json:"slug"`
	Parent *string `json:"parent"`
}

type seedOrganization struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Industry    *string `json:"industry"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
}

type seedLocation struct {
	Organization string  `json:"organization"`
	Name         string  `json:"name"`
	AddressLine  *string `json:"address_line"`
	City         string  `json:"city"`
	Region       string  `json:"region"`
	PostalCode   *string `json:"postal_code"`
	CountryCode  string  `json:"country_code"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type seedFile struct {
	Industries    []seedIndustry     `json:"industries"`
	Organizations []seedOrganization `json:"organizations"`
	Locations     []seedLocation     `json:"locations"`
}

func main() {
	// ── 1. Logger and Flags ───────────────────────────────────────────────
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", "wdtp-seed"))

	filePath := flag.String("file", "seed/directory.json", "path to the fixture JSON file")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	// ── 2. Fixture File ───────────────────────────────────────────────────
	payload, err := os.ReadFile(*filePath)
	must(log, err, "read fixture file")

	var fixtures seedFile
	must(log, json.Unmarshal(payload, &fixtures), "parse fixture file")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(ctx, dsn, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	// ── 4. Transactional Upsert ───────────────────────────────────────────
	counts, err := loadFixtures(ctx, pool, fixtures)
	must(log, err, "load fixtures")

	log.Info("fixtures_loaded",
		slog.Int("industries", counts.industries),
		slog.Int("organizations", counts.organizations),
		slog.Int("locations", counts.locations),
	)

	// ── 5. Cache Rotation (optional) ──────────────────────────────────────
	// Without Redis the running API converges when its response TTLs lapse.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		rdb, err := redisstore.NewClient(ctx, redisURL, log)
		must(log, err, "connect to redis")
		defer rdb.Close()

		versions := cache.NewRedisVersionStore(rdb)
		for _, surface := range []cache.VersionKey{cache.KeyIndustries, cache.KeyOrganizations, cache.KeyLocations} {
			if _, err := versions.Bump(ctx, surface); err != nil {
				log.Warn("cache_rotation_failed", slog.String("surface", string(surface)), slog.Any("error", err))
			}
		}
		log.Info("cache_surfaces_rotated")
	}
}

// seedCounts tallies the rows written per entity.
type seedCounts struct {
	industries    int
	organizations int
	locations     int
}

/*
loadFixtures upserts the fixture entities inside a single transaction.

Industries resolve their parent by slug, organizations their industry, and
locations their organization, so the file must list referenced entities
before the entities that point at them.
*/
func loadFixtures(ctx context.Context, pool *pgxpool.Pool, fixtures seedFile) (seedCounts, error) {
	var counts seedCounts

	transaction, err := pool.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("seed: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	industryIDs := map[string]int64{}
	organizationIDs := map[string]int64{}

	// 1. Industries (parents referenced by slug must appear first)
	for _, industry := range fixtures.Industries {
		industrySlug := industry.Slug
		if industrySlug == "" {
			industrySlug = slug.From(industry.Name)
		}

		var parentID *int64
		if industry.Parent != nil {
			id, ok := industryIDs[*industry.Parent]
			if !ok {
				return counts, fmt.Errorf("seed: industry %q references unknown parent %q", industry.Name, *industry.Parent)
			}
			parentID = pointer.To(id)
		}

		id, err := upsertIndustry(ctx, transaction, parentID, industry.Name, industrySlug)
		if err != nil {
			return counts, err
		}
		industryIDs[industrySlug] = id
		counts.industries++
	}

	// 2. Organizations
	for _, organization := range fixtures.Organizations {
		organizationSlug := organization.Slug
		if organizationSlug == "" {
			organizationSlug = slug.From(organization.Name)
		}

		var industryID *int64
		if organization.Industry != nil {
			id, ok := industryIDs[*organization.Industry]
			if !ok {
				return counts, fmt.Errorf("seed: organization %q references unknown industry %q", organization.Name, *organization.Industry)
			}
			industryID = pointer.To(id)
		}

		id, err := upsertOrganization(ctx, transaction, industryID, organization, organizationSlug)
		if err != nil {
			return counts, err
		}
		organizationIDs[organizationSlug] = id
		counts.organizations++
	}

	// 3. Locations
	for _, location := range fixtures.Locations {
		organizationID, ok := organizationIDs[location.Organization]
		if !ok {
			return counts, fmt.Errorf("seed: location %q references unknown organization %q", location.Name, location.Organization)
		}

		if err := upsertLocation(ctx, transaction, organizationID, location); err != nil {
			return counts, err
		}
		counts.locations++
	}

	if err := transaction.Commit(ctx); err != nil {
		return counts, fmt.Errorf("seed: failed to commit transaction: %w", err)
	}
	return counts, nil
}

func upsertIndustry(ctx context.Context, transaction pgx.Tx, parentID *int64, name, industrySlug string) (int64, error) {
	i := schema.DirectoryIndustry
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s`,
		i.Table, i.ParentID, i.Name, i.Slug,
		i.Slug, i.Name, i.Name, i.ParentID, i.ParentID, i.UpdatedAt,
		i.ID,
	)

	var id int64
	if err := transaction.QueryRow(ctx, query, parentID, name, industrySlug).Scan(&id); err != nil {
		return 0, fmt.Errorf("seed: failed to upsert industry %q: %w", name, err)
	}
	return id, nil
}

func upsertOrganization(ctx context.Context, transaction pgx.Tx, industryID *int64, organization seedOrganization, organizationSlug string) (int64, error) {
	o := schema.DirectoryOrganization
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s`,
		o.Table, o.IndustryID, o.Name, o.Slug, o.Website, o.Description,
		o.Slug,
		o.Name, o.Name, o.IndustryID, o.IndustryID, o.Website, o.Website, o.Description, o.Description, o.UpdatedAt,
		o.ID,
	)

	var id int64
	err := transaction.QueryRow(ctx, query,
		industryID, organization.Name, organizationSlug, organization.Website, organization.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("seed: failed to upsert organization %q: %w", organization.Name, err)
	}
	return id, nil
}

func upsertLocation(ctx context.Context, transaction pgx.Tx, organizationID int64, location seedLocation) error {
	l := schema.DirectoryLocation
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()`,
		l.Table, l.OrganizationID, l.Name, l.AddressLine, l.City, l.Region,
		l.PostalCode, l.CountryCode, l.Latitude, l.Longitude,
		l.OrganizationID, l.Name,
		l.AddressLine, l.AddressLine, l.City, l.City, l.Region, l.Region, l.PostalCode, l.PostalCode,
		l.CountryCode, l.CountryCode, l.Latitude, l.Latitude, l.Longitude, l.Longitude, l.UpdatedAt,
	)

	_, err := transaction.Exec(ctx, query,
		organizationID, location.Name, location.AddressLine, location.City, location.Region,
		location.PostalCode, location.CountryCode, location.Latitude, location.Longitude,
	)
	if err != nil {
		return fmt.Errorf("seed: failed to upsert location %q: %w", location.Name, err)
	}
	return nil
}

// must terminates the loader on a fatal startup error.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("seed failure", slog.String("context", context), slog.Any("error", err))
		os.Exit(1)
	}
}
