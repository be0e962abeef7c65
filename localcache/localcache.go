// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package localcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/biodex/models"
)

// ProtocolVersion identifies the migration protocol. A cache marked
// migrated under an older version is migrated again.
const ProtocolVersion = 1

const (
	protocolKey     = "protocol_version"
	migratedKeyBase = "migrated:"

	// fixed width so text order matches time order
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Cache is a device-local discovery list backed by SQLite.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS discovery (
		species_id INTEGER PRIMARY KEY,
		discovered_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, protocolKey, strconv.Itoa(ProtocolVersion))
	return err
}

// Add records a local discovery. An existing entry keeps the earlier
// timestamp. Reports whether the species was new to the cache.
func (c *Cache) Add(ctx context.Context, speciesID int64, at time.Time) (bool, error) {
	if speciesID <= 0 {
		return false, fmt.Errorf("invalid species id %d", speciesID)
	}

	stamp := at.UTC().Format(timeLayout)
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO discovery (species_id, discovered_at) VALUES (?, ?)
		ON CONFLICT(species_id) DO NOTHING
	`, speciesID, stamp)
	if err != nil {
		return false, fmt.Errorf("insert discovery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	_, err = c.db.ExecContext(ctx, `
		UPDATE discovery SET discovered_at = ?
		WHERE species_id = ? AND discovered_at > ?
	`, stamp, speciesID, stamp)
	if err != nil {
		return false, fmt.Errorf("update discovery: %w", err)
	}
	return false, nil
}

// Pending returns every cached discovery, oldest first.
func (c *Cache) Pending(ctx context.Context) ([]models.DiscoveryCandidate, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT species_id, discovered_at FROM discovery
		ORDER BY discovered_at, species_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query discoveries: %w", err)
	}
	defer rows.Close()

	var out []models.DiscoveryCandidate
	for rows.Next() {
		var id int64
		var stamp string
		if err := rows.Scan(&id, &stamp); err != nil {
			return nil, err
		}
		at, err := time.Parse(timeLayout, stamp)
		if err != nil {
			return nil, fmt.Errorf("discovery %d: bad timestamp %q: %w", id, stamp, err)
		}
		out = append(out, models.DiscoveryCandidate{ID: id, DiscoveredAt: &at})
	}
	return out, rows.Err()
}

// Count returns the number of cached discoveries.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM discovery`).Scan(&n)
	return n, err
}

// Migrated reports whether the cache has been migrated for player under
// the current protocol version.
func (c *Cache) Migrated(ctx context.Context, player uuid.UUID) (bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, `
		SELECT value FROM sync_state WHERE key = ?
	`, migratedKeyBase+player.String()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query sync state: %w", err)
	}
	return value == strconv.Itoa(ProtocolVersion), nil
}

// MarkMigrated records that the cache has been migrated for player.
func (c *Cache) MarkMigrated(ctx context.Context, player uuid.UUID) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, migratedKeyBase+player.String(), strconv.Itoa(ProtocolVersion))
	if err != nil {
		return fmt.Errorf("mark migrated: %w", err)
	}
	return nil
}
