// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates the PostGIS extension and all tables.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes all application tables. Reference data goes too.
func DropSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS player_stats CASCADE;
		DROP TABLE IF EXISTS player_discovery CASCADE;
		DROP TABLE IF EXISTS high_score CASCADE;
		DROP TABLE IF EXISTS bioregion CASCADE;
		DROP TABLE IF EXISTS species CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

const schema = `
CREATE EXTENSION IF NOT EXISTS postgis;

-- Species catalog (reference data, loaded by "biodex import")
CREATE TABLE IF NOT EXISTS species (
    id INTEGER PRIMARY KEY,
    scientific_name TEXT NOT NULL,
    common_name TEXT,
    genus TEXT,
    family TEXT,
    order_name TEXT,
    class TEXT,
    category TEXT,
    marine BOOLEAN NOT NULL DEFAULT FALSE,
    terrestrial BOOLEAN NOT NULL DEFAULT FALSE,
    freshwater BOOLEAN NOT NULL DEFAULT FALSE,
    habitat_description TEXT,
    description TEXT,
    key_fact TEXT,
    geom geometry(MultiPolygon, 4326)
);

CREATE INDEX IF NOT EXISTS idx_species_geom ON species USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_species_class ON species(class);

-- Bioregions (reference data)
CREATE TABLE IF NOT EXISTS bioregion (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    realm TEXT,
    biome TEXT,
    geom geometry(MultiPolygon, 4326)
);

CREATE INDEX IF NOT EXISTS idx_bioregion_geom ON bioregion USING GIST (geom);

-- Discoveries: first write wins, one row per (player, species)
CREATE TABLE IF NOT EXISTS player_discovery (
    id BIGSERIAL PRIMARY KEY,
    player_id UUID NOT NULL,
    species_id INTEGER NOT NULL REFERENCES species(id) ON DELETE CASCADE,
    session_id UUID,
    discovered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    clues_revealed INTEGER NOT NULL DEFAULT 0 CHECK (clues_revealed >= 0),
    incorrect_guesses INTEGER NOT NULL DEFAULT 0 CHECK (incorrect_guesses >= 0),
    score INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0),
    UNIQUE (player_id, species_id)
);

CREATE INDEX IF NOT EXISTS idx_player_discovery_player ON player_discovery(player_id, discovered_at DESC);

-- Aggregates derived from player_discovery
CREATE TABLE IF NOT EXISTS player_stats (
    player_id UUID PRIMARY KEY,
    total_discoveries INTEGER NOT NULL DEFAULT 0,
    total_score BIGINT NOT NULL DEFAULT 0,
    sessions_played INTEGER NOT NULL DEFAULT 0,
    class_counts JSONB NOT NULL DEFAULT '{}'::jsonb,
    last_discovery_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- High scores (append-only)
CREATE TABLE IF NOT EXISTS high_score (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL,
    score BIGINT NOT NULL CHECK (score >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_high_score_rank ON high_score(score DESC, created_at ASC);
`
