// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Command biodex runs the API server and tooling for a species discovery game.

Players find species on a globe; the server answers spatial questions about
species ranges stored in PostGIS, records player discoveries and keeps a
high score table.

# Commands

	biodex serve  [-p 3318] [-d postgres://...] [--game-config game.yaml]
	biodex schema [-d postgres://...] [--drop]
	biodex import --kind species|bioregions [-d postgres://...] FILE.geojson
	biodex sync   --player UUID [--cache biodex-cache.db] [--server URL]

# Configuration

serve reads flags, falling back to environment variables and .env:

  - DATABASE_URL (-d): PostgreSQL/PostGIS connection string (required)
  - PORT (-p): Server port (default: 3318)
  - GAME_CONFIG (--game-config): Game settings YAML, watched and reloadable
  - ADMIN_KEY (--admin-key): Enables the /api/admin endpoints
  - LOG_LEVEL (--log-level): debug, info, warn or error

# Architecture

  - handlers: HTTP request handlers (species, discoveries, players, high scores, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, request ids, panic recovery, logging, JSON helpers
  - models: Request/response and table types
  - geo: Coordinate parsing and EWKB/WKT/GeoJSON geometry codec
  - gameconfig: Reloadable game settings
  - auth: Player/session id parsing and admin key checks
  - db: Schema creation and ORM setup
  - cliparse: Server configuration parsing
  - speciesimport: GeoJSON bulk import
  - localcache, discoverysync: Device-local discovery cache and its one-shot migration

See package documentation for each component.
*/
package main
