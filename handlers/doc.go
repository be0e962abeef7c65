// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the biodex API.

# Handler Types

Each handler is a struct holding its dependencies:

  - SpeciesHandler: Spatial species and bioregion lookups (*sql.DB)
  - DiscoveryHandler: Gameplay discoveries and bulk migration (*sql.DB, *gorm.DB)
  - PlayerHandler: Per-player discovery lists and stats (*gorm.DB)
  - HighScoreHandler: High score table (*gorm.DB)
  - AdminHandler: Game settings inspection and reload

Handlers that depend on tunables take a gameconfig.Source and read it on
every request, so a settings reload applies without a restart:

	speciesHandler := handlers.NewSpeciesHandler(db, store)

# Spatial Queries

Coordinates are validated before any query runs. Each lookup is a single
parameterized PostGIS statement; geometry comes back as hex EWKB and is
decoded by the geo package into WKT (and GeoJSON for the closest lookup).

	GET /api/species/at-point?lon=&lat=          → ST_Contains
	GET /api/species/in-radius?lon=&lat=&radius= → ST_DWithin on geography
	GET /api/species/closest?lon=&lat=           → KNN (<->), LIMIT 1

# Discoveries

A player discovers each species at most once. Both write paths rely on the
UNIQUE (player_id, species_id) constraint rather than a read-then-write:

	POST /api/discoveries         → Record (gorm, ON CONFLICT DO NOTHING)
	POST /api/discoveries/migrate → Migrate (one batched INSERT ... RETURNING)

Migrate reports a status per submitted item: inserted, already_discovered,
unknown_species, duplicate or invalid. After any insert the player's row in
player_stats is recomputed by RefreshPlayerStats.

# Error Handling

Client errors return 400/401/404 with {"error": "..."}. Database failures
are logged with slog and return an opaque 500.
*/
package handlers
