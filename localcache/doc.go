// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package localcache stores a player's discoveries on the device in SQLite
// until they are migrated to the server, along with per-player migration
// markers.
package localcache
