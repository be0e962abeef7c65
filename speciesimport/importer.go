// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package speciesimport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Importer bulk-loads reference data with COPY.
type Importer struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url.
func Open(ctx context.Context, url string) (*Importer, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 2
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Importer{pool: pool}, nil
}

func (im *Importer) Close() {
	im.pool.Close()
}

// ImportFile reads a FeatureCollection from path and loads it as kind.
func (im *Importer) ImportFile(ctx context.Context, path string, kind Kind) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fc, err := ReadFeatures(f)
	if err != nil {
		return Report{}, err
	}

	var report Report
	switch kind {
	case KindSpecies:
		var rows []SpeciesRow
		rows, report = SpeciesRows(fc)
		report.Imported, err = im.ImportSpecies(ctx, rows)
	case KindBioregions:
		var rows []BioregionRow
		rows, report = BioregionRows(fc)
		report.Imported, err = im.ImportBioregions(ctx, rows)
	default:
		return Report{}, fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return report, err
	}

	slog.Info("import complete",
		"kind", kind,
		"file", path,
		"read", report.Read,
		"imported", report.Imported,
		"skipped", report.SkippedTotal(),
	)
	return report, nil
}

var speciesStageColumns = []string{
	"id", "scientific_name", "common_name", "genus", "family", "order_name",
	"class", "category", "marine", "terrestrial", "freshwater",
	"habitat_description", "description", "key_fact", "wkt",
}

// ImportSpecies upserts rows into species in one transaction.
func (im *Importer) ImportSpecies(ctx context.Context, rows []SpeciesRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := make([][]any, len(rows))
	for i, r := range rows {
		src[i] = []any{
			int32(r.ID), r.ScientificName, r.CommonName, r.Genus, r.Family, r.OrderName,
			r.Class, r.Category, r.Marine, r.Terrestrial, r.Freshwater,
			r.HabitatDescription, r.Description, r.KeyFact, r.WKT,
		}
	}

	return im.load(ctx, "species_stage", `
		CREATE TEMP TABLE species_stage (
			id INTEGER,
			scientific_name TEXT,
			common_name TEXT,
			genus TEXT,
			family TEXT,
			order_name TEXT,
			class TEXT,
			category TEXT,
			marine BOOLEAN,
			terrestrial BOOLEAN,
			freshwater BOOLEAN,
			habitat_description TEXT,
			description TEXT,
			key_fact TEXT,
			wkt TEXT
		) ON COMMIT DROP
	`, speciesStageColumns, src, `
		INSERT INTO species (
			id, scientific_name, common_name, genus, family, order_name,
			class, category, marine, terrestrial, freshwater,
			habitat_description, description, key_fact, geom
		)
		SELECT DISTINCT ON (id)
			id, scientific_name, common_name, genus, family, order_name,
			class, category, marine, terrestrial, freshwater,
			habitat_description, description, key_fact,
			ST_Multi(ST_GeomFromText(wkt, 4326))
		FROM species_stage
		ORDER BY id
		ON CONFLICT (id) DO UPDATE SET
			scientific_name = EXCLUDED.scientific_name,
			common_name = EXCLUDED.common_name,
			genus = EXCLUDED.genus,
			family = EXCLUDED.family,
			order_name = EXCLUDED.order_name,
			class = EXCLUDED.class,
			category = EXCLUDED.category,
			marine = EXCLUDED.marine,
			terrestrial = EXCLUDED.terrestrial,
			freshwater = EXCLUDED.freshwater,
			habitat_description = EXCLUDED.habitat_description,
			description = EXCLUDED.description,
			key_fact = EXCLUDED.key_fact,
			geom = EXCLUDED.geom
	`)
}

// ImportBioregions upserts rows into bioregion in one transaction.
func (im *Importer) ImportBioregions(ctx context.Context, rows []BioregionRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	src := make([][]any, len(rows))
	for i, r := range rows {
		src[i] = []any{int32(r.ID), r.Name, r.Realm, r.Biome, r.WKT}
	}

	return im.load(ctx, "bioregion_stage", `
		CREATE TEMP TABLE bioregion_stage (
			id INTEGER,
			name TEXT,
			realm TEXT,
			biome TEXT,
			wkt TEXT
		) ON COMMIT DROP
	`, []string{"id", "name", "realm", "biome", "wkt"}, src, `
		INSERT INTO bioregion (id, name, realm, biome, geom)
		SELECT DISTINCT ON (id)
			id, name, realm, biome, ST_Multi(ST_GeomFromText(wkt, 4326))
		FROM bioregion_stage
		ORDER BY id
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			realm = EXCLUDED.realm,
			biome = EXCLUDED.biome,
			geom = EXCLUDED.geom
	`)
}

// load copies src into a temporary staging table and merges it into the
// target with upsertSQL, all in one transaction.
func (im *Importer) load(ctx context.Context, stage, createSQL string, columns []string, src [][]any, upsertSQL string) (int64, error) {
	tx, err := im.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, fmt.Errorf("create %s: %w", stage, err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{stage}, columns, pgx.CopyFromRows(src))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", stage, err)
	}

	tag, err := tx.Exec(ctx, upsertSQL)
	if err != nil {
		return 0, fmt.Errorf("upsert from %s: %w", stage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.Debug("staged rows merged", "stage", stage, "copied", copied, "upserted", tag.RowsAffected())
	return tag.RowsAffected(), nil
}
