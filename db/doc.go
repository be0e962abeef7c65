// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema enables PostGIS and initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The database role needs permission to create the postgis extension the first
time.

# Tables

  - species: Species catalog with habitat range polygons (read-only)
  - bioregion: Bioregion polygons (read-only)
  - player_discovery: One row per player per discovered species
  - player_stats: Per-player aggregates derived from player_discovery
  - high_score: Append-only score table

# Relationships

	species 1──* player_discovery
	player  1──* player_discovery (player_id, no players table)
	player  1──1 player_stats

# Indexes

  - species.geom, bioregion.geom (GiST, for ST_Contains / ST_DWithin / <->)
  - species.class
  - player_discovery.(player_id, species_id) (unique)
  - player_discovery.(player_id, discovered_at)
  - high_score.(score DESC, created_at)
*/
package db
