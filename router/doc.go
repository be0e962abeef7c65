// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the biodex API.

# Route Registration

NewRouter builds a ServeMux with every endpoint and wraps it in the
middleware chain (request id, panic recovery, CORS):

	handler := router.NewRouter(db, orm, cfg, store)

# Endpoints

Health:

	GET /health

Spatial species queries:

	GET      /api/species/at-point   - Species whose range contains lon/lat
	GET      /api/species/in-radius  - Species within radius metres of lon/lat
	GET      /api/species/closest    - Nearest species range
	GET|POST /api/species/bioregions - Bioregions at a point or overlapping species
	GET|POST /api/species/by-ids     - Species by id list

Discoveries and progress:

	POST /api/discoveries                - Record a discovery made in play
	POST /api/discoveries/migrate        - Import a locally held discovery list
	GET  /api/players/{id}/discoveries   - A player's discoveries, newest first
	GET  /api/players/{id}/stats         - A player's aggregate stats

High scores:

	GET  /api/highscores - Top scores
	POST /api/highscores - Submit a score

Admin (requires X-Admin-Key):

	GET  /api/admin/config        - Game settings in effect
	POST /api/admin/config/reload - Re-read the game settings file
*/
package router
