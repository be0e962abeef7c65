// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/danielhkuo/biodex/auth"
	"github.com/danielhkuo/biodex/middleware"
	"github.com/danielhkuo/biodex/models"
)

type PlayerHandler struct {
	orm *gorm.DB
}

func NewPlayerHandler(orm *gorm.DB) *PlayerHandler {
	return &PlayerHandler{orm: orm}
}

// Discoveries handles GET /api/players/{id}/discoveries
// Newest first.
func (h *PlayerHandler) Discoveries(w http.ResponseWriter, r *http.Request) {
	playerID, err := auth.ParsePlayerID(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player id must be a valid UUID")
		return
	}

	discoveries := []models.PlayerDiscovery{}
	err = h.orm.WithContext(r.Context()).
		Where("player_id = ?", playerID).
		Order("discovered_at DESC").
		Order("id DESC").
		Find(&discoveries).Error
	if err != nil {
		slog.Error("failed to query discoveries", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PlayerDiscoveriesResponse{Discoveries: discoveries})
}

// Stats handles GET /api/players/{id}/stats
// A player who has never discovered anything gets zeroed stats, not a 404.
func (h *PlayerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	playerID, err := auth.ParsePlayerID(r.PathValue("id"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "player id must be a valid UUID")
		return
	}

	var stats models.PlayerStats
	err = h.orm.WithContext(r.Context()).
		Where("player_id = ?", playerID).
		Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.PlayerStats{PlayerID: playerID, ClassCounts: datatypes.JSONMap{}}
	} else if err != nil {
		slog.Error("failed to query player stats", "error", err, "player_id", playerID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PlayerStatsResponse{Stats: stats})
}
