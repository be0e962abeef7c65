// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package discoverysync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/danielhkuo/biodex/models"
)

// DefaultBatchSize matches the server's default max_migrate_batch. Run
// shrinks it when the server reports a lower limit.
const DefaultBatchSize = 1000

// Store is the local side of a migration.
type Store interface {
	Pending(ctx context.Context) ([]models.DiscoveryCandidate, error)
	Migrated(ctx context.Context, player uuid.UUID) (bool, error)
	MarkMigrated(ctx context.Context, player uuid.UUID) error
}

// Migrator is the server side of a migration.
type Migrator interface {
	Migrate(ctx context.Context, req models.MigrateDiscoveriesRequest) (models.MigrateDiscoveriesResponse, error)
}

// Result summarizes a Run.
type Result struct {
	Skipped   bool           // already migrated; nothing sent
	Submitted int            // candidates sent
	Migrated  int            // rows the server inserted
	Statuses  map[string]int // per-item outcome counts
}

// Options tune a Run.
type Options struct {
	BatchSize int
}

// Run migrates the store's discoveries for player once. It is a no-op when
// the store is already marked migrated under the current protocol. The
// marker is written only after every batch succeeds; a failed batch leaves
// the store unmarked so the next Run resends everything, which the server
// treats as already discovered. A batch the server rejects as too large is
// split and resent.
func Run(ctx context.Context, store Store, server Migrator, player uuid.UUID, opts Options) (Result, error) {
	var res Result

	if player == uuid.Nil {
		return res, fmt.Errorf("player id is required")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	done, err := store.Migrated(ctx, player)
	if err != nil {
		return res, err
	}
	if done {
		res.Skipped = true
		return res, nil
	}

	pending, err := store.Pending(ctx)
	if err != nil {
		return res, err
	}

	res.Statuses = make(map[string]int)
	for start := 0; start < len(pending); {
		end := min(start+batchSize, len(pending))
		batch := pending[start:end]

		resp, err := server.Migrate(ctx, models.MigrateDiscoveriesRequest{
			UserID:      player.String(),
			Discoveries: batch,
		})
		if err != nil {
			if smaller, ok := shrinkBatch(err, len(batch)); ok {
				slog.Warn("migrate batch rejected, retrying smaller",
					"player_id", player,
					"size", len(batch),
					"new_size", smaller,
				)
				batchSize = smaller
				continue
			}
			return res, fmt.Errorf("migrate batch %d-%d: %w", start, end, err)
		}
		start = end

		res.Submitted += len(batch)
		res.Migrated += resp.Migrated
		for _, r := range resp.Results {
			res.Statuses[r.Status]++
		}

		slog.Debug("migrated batch", "player_id", player, "size", len(batch), "inserted", resp.Migrated)
	}

	if err := store.MarkMigrated(ctx, player); err != nil {
		return res, err
	}

	slog.Info("local discoveries migrated",
		"player_id", player,
		"submitted", res.Submitted,
		"migrated", res.Migrated,
	)
	return res, nil
}

// shrinkBatch picks a smaller batch size after a 400. It uses the limit from
// the server's message when it can read one, and halves otherwise.
func shrinkBatch(err error, size int) (int, bool) {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest || size <= 1 {
		return 0, false
	}
	var limit int
	if _, scanErr := fmt.Sscanf(statusErr.Message, models.MigrateBatchLimitFormat, &limit); scanErr == nil && limit > 0 && limit < size {
		return limit, true
	}
	return size / 2, true
}
