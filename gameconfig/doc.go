// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gameconfig holds the runtime-tunable game settings.

Settings are loaded once at startup and injected into handlers as a Source:

	store, err := gameconfig.Load(cfg.GameConfigPath)
	h := handlers.NewSpeciesHandler(db, store)

# File Format

	max_radius_m: 500000       # in-radius queries are clamped to this
	default_radius_m: 10000    # used when radius is omitted
	max_results: 0             # cap for at-point / in-radius, 0 = unlimited
	max_ids: 500               # by-ids request size
	max_migrate_batch: 1000    # discoveries per migration request
	highscore_limit: 10
	highscore_max_limit: 100

Missing keys take their defaults.

# Refresh

Store.Watch reloads on file change; Store.Reload reloads on demand (the admin
reload endpoint). Both swap the settings atomically. Invalid files are
rejected and the previous settings stay in effect.
*/
package gameconfig
