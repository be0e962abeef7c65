// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielhkuo/biodex/auth"
	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/middleware"
	"github.com/danielhkuo/biodex/models"
)

type DiscoveryHandler struct {
	db   *sql.DB
	orm  *gorm.DB
	game gameconfig.Source
}

func NewDiscoveryHandler(db *sql.DB, orm *gorm.DB, game gameconfig.Source) *DiscoveryHandler {
	return &DiscoveryHandler{db: db, orm: orm, game: game}
}

// migrationPlan is the normalized form of a migration request. results has
// one entry per submitted candidate, in request order.
type migrationPlan struct {
	results []models.MigrateResult
	ids     []int64             // unique valid ids, request order
	index   map[int64]int       // id -> results index of its first occurrence
	at      map[int64]time.Time // earliest timestamp per id
}

func planMigration(candidates []models.DiscoveryCandidate, now time.Time) migrationPlan {
	plan := migrationPlan{
		results: make([]models.MigrateResult, len(candidates)),
		index:   make(map[int64]int, len(candidates)),
		at:      make(map[int64]time.Time, len(candidates)),
	}

	for i, c := range candidates {
		plan.results[i] = models.MigrateResult{ID: c.ID}

		if c.ID <= 0 {
			plan.results[i].Status = models.MigrateInvalid
			continue
		}

		at := now
		if c.DiscoveredAt != nil && !c.DiscoveredAt.IsZero() && c.DiscoveredAt.Before(now) {
			at = c.DiscoveredAt.UTC()
		}

		if _, seen := plan.index[c.ID]; seen {
			plan.results[i].Status = models.MigrateDuplicate
			if at.Before(plan.at[c.ID]) {
				plan.at[c.ID] = at
			}
			continue
		}

		plan.index[c.ID] = i
		plan.at[c.ID] = at
		plan.ids = append(plan.ids, c.ID)
	}

	return plan
}

// Migrate handles POST /api/discoveries/migrate
// Moves a client-held list of discoveries into player_discovery. Existing
// rows are left untouched; every candidate gets an explicit outcome.
func (h *DiscoveryHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	var req models.MigrateDiscoveriesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	playerID, err := auth.ParsePlayerID(req.UserID)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId must be a valid UUID")
		return
	}

	if limit := h.game.Current().MaxMigrateBatch; len(req.Discoveries) > limit {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf(models.MigrateBatchLimitFormat, limit))
		return
	}

	ctx := r.Context()
	plan := planMigration(req.Discoveries, time.Now().UTC())

	known, err := h.knownSpecies(ctx, plan.ids)
	if err != nil {
		slog.Error("failed to validate species ids", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var ids []int64
	var timestamps []string
	for _, id := range plan.ids {
		if !known[id] {
			plan.results[plan.index[id]].Status = models.MigrateUnknownSpecies
			continue
		}
		ids = append(ids, id)
		timestamps = append(timestamps, plan.at[id].Format(time.RFC3339Nano))
	}

	inserted, err := h.insertDiscoveries(ctx, playerID, ids, timestamps)
	if err != nil {
		slog.Error("failed to migrate discoveries", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to migrate discoveries")
		return
	}

	for _, id := range ids {
		if inserted[id] {
			plan.results[plan.index[id]].Status = models.MigrateInserted
		} else {
			plan.results[plan.index[id]].Status = models.MigrateAlreadyDiscovered
		}
	}

	if len(inserted) > 0 {
		if err := RefreshPlayerStats(ctx, h.db, playerID); err != nil {
			// Non-fatal: discoveries are stored, stats catch up on the next write
			slog.Warn("failed to refresh player stats", "error", err, "player_id", playerID)
		}
	}

	slog.Info("discoveries migrated",
		"player_id", playerID,
		"submitted", len(req.Discoveries),
		"migrated", len(inserted),
	)

	middleware.JSONResponse(w, http.StatusOK, models.MigrateDiscoveriesResponse{
		Migrated: len(inserted),
		Results:  plan.results,
	})
}

// knownSpecies returns which of ids exist in the catalog
func (h *DiscoveryHandler) knownSpecies(ctx context.Context, ids []int64) (map[int64]bool, error) {
	known := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}

	var found []int64
	err := h.orm.WithContext(ctx).
		Model(&models.Species{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		known[id] = true
	}
	return known, nil
}

// insertDiscoveries writes all rows in one statement; the unique
// (player_id, species_id) constraint turns repeats into no-ops.
func (h *DiscoveryHandler) insertDiscoveries(ctx context.Context, playerID uuid.UUID, ids []int64, timestamps []string) (map[int64]bool, error) {
	inserted := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return inserted, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		INSERT INTO player_discovery (player_id, species_id, discovered_at)
		SELECT $1::uuid, t.species_id, t.discovered_at
		FROM unnest($2::integer[], $3::timestamptz[]) AS t(species_id, discovered_at)
		ON CONFLICT (player_id, species_id) DO NOTHING
		RETURNING species_id
	`, playerID.String(), pq.Array(ids), pq.Array(timestamps))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		inserted[id] = true
	}
	return inserted, rows.Err()
}

// Record handles POST /api/discoveries
// Stores a discovery made during play. The first discovery of a species
// wins; later ones report created=false.
func (h *DiscoveryHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.RecordDiscoveryRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	playerID, err := auth.ParsePlayerID(req.UserID)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId must be a valid UUID")
		return
	}
	sessionID, err := auth.ParseSessionID(req.SessionID)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "sessionId must be a valid UUID")
		return
	}
	if req.SpeciesID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "speciesId is required")
		return
	}
	if req.CluesRevealed < 0 || req.IncorrectGuesses < 0 || req.Score < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "counters and score must be non-negative")
		return
	}

	ctx := r.Context()

	var count int64
	err = h.orm.WithContext(ctx).Model(&models.Species{}).Where("id = ?", req.SpeciesID).Count(&count).Error
	if err != nil {
		slog.Error("failed to query species", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Species not found")
		return
	}

	discovery := models.PlayerDiscovery{
		PlayerID:         playerID,
		SpeciesID:        req.SpeciesID,
		SessionID:        sessionID,
		DiscoveredAt:     time.Now().UTC(),
		CluesRevealed:    req.CluesRevealed,
		IncorrectGuesses: req.IncorrectGuesses,
		Score:            req.Score,
	}

	result := h.orm.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "species_id"}},
			DoNothing: true,
		}).
		Create(&discovery)
	if result.Error != nil {
		slog.Error("failed to insert discovery", "error", result.Error, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record discovery")
		return
	}

	if result.RowsAffected == 0 {
		middleware.JSONResponse(w, http.StatusOK, models.RecordDiscoveryResponse{Created: false})
		return
	}

	if err := RefreshPlayerStats(ctx, h.db, playerID); err != nil {
		slog.Warn("failed to refresh player stats", "error", err, "player_id", playerID)
	}

	slog.Info("discovery recorded", "player_id", playerID, "species_id", req.SpeciesID)

	middleware.JSONResponse(w, http.StatusCreated, models.RecordDiscoveryResponse{
		Discovery: &discovery,
		Created:   true,
	})
}
