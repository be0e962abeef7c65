// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL/PostGIS connection string (required)
  - GameConfigPath: Game settings YAML file (optional, see package gameconfig)
  - AdminKey: Secret for operator endpoints (optional; disables them when empty)
  - LogLevel: slog level (default: info)

# CLI Flags

	-p, --port          Server port
	-d, --database-url  Database URL
	--game-config       Game settings file
	--admin-key         Admin key
	--log-level         debug, info, warn or error

# Environment Variables

Flags fall back to environment variables, which may also come from a .env file
in the working directory:

	PORT         → -p
	DATABASE_URL → -d
	GAME_CONFIG  → --game-config
	ADMIN_KEY    → --admin-key
	LOG_LEVEL    → --log-level

CLI flags take precedence over environment variables. Variables already set in
the environment take precedence over .env.
*/
package cliparse
