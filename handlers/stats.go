// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// RefreshPlayerStats recomputes a player's aggregate row from
// player_discovery. Refreshes for one player are serialized with a
// transaction-scoped advisory lock, so each recount starts after the previous
// one committed and sees every discovery committed before it.
func RefreshPlayerStats(ctx context.Context, db *sql.DB, playerID uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("refresh player stats: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, playerID.String()); err != nil {
		return fmt.Errorf("refresh player stats: lock: %w", err)
	}

	// READ COMMITTED takes a fresh snapshot per statement, so the recount
	// below runs after the lock is held.
	_, err = tx.ExecContext(ctx, `
		WITH d AS (
			SELECT pd.score, pd.session_id, pd.discovered_at,
			       COALESCE(NULLIF(s.class, ''), 'Unknown') AS class
			FROM player_discovery pd
			JOIN species s ON s.id = pd.species_id
			WHERE pd.player_id = $1::uuid
		),
		c AS (
			SELECT class, COUNT(*) AS n FROM d GROUP BY class
		)
		INSERT INTO player_stats (
			player_id, total_discoveries, total_score, sessions_played,
			class_counts, last_discovery_at, updated_at
		)
		SELECT $1::uuid,
		       (SELECT COUNT(*) FROM d),
		       (SELECT COALESCE(SUM(score), 0) FROM d),
		       (SELECT COUNT(DISTINCT session_id) FROM d),
		       COALESCE((SELECT jsonb_object_agg(class, n) FROM c), '{}'::jsonb),
		       (SELECT MAX(discovered_at) FROM d),
		       NOW()
		ON CONFLICT (player_id) DO UPDATE SET
			total_discoveries = EXCLUDED.total_discoveries,
			total_score = EXCLUDED.total_score,
			sessions_played = EXCLUDED.sessions_played,
			class_counts = EXCLUDED.class_counts,
			last_discovery_at = EXCLUDED.last_discovery_at,
			updated_at = EXCLUDED.updated_at
	`, playerID.String())
	if err != nil {
		return fmt.Errorf("refresh player stats: %w", err)
	}
	return tx.Commit()
}
