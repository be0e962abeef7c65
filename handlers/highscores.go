// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/middleware"
	"github.com/danielhkuo/biodex/models"
)

type HighScoreHandler struct {
	orm  *gorm.DB
	game gameconfig.Source
}

func NewHighScoreHandler(orm *gorm.DB, game gameconfig.Source) *HighScoreHandler {
	return &HighScoreHandler{orm: orm, game: game}
}

// List handles GET /api/highscores
// Returns the top scores, highest first; ties go to the earlier entry.
func (h *HighScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	settings := h.game.Current()

	limit := settings.HighscoreLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > settings.HighscoreMaxLimit {
		limit = settings.HighscoreMaxLimit
	}

	scores := []models.HighScore{}
	err := h.orm.WithContext(r.Context()).
		Order("score DESC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&scores).Error
	if err != nil {
		slog.Error("failed to query high scores", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HighScoresResponse{Scores: scores})
}

// Submit handles POST /api/highscores
func (h *HighScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitHighScoreRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	username, score, err := validateHighScore(req)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	entry := models.HighScore{
		Username:  username,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.orm.WithContext(r.Context()).Create(&entry).Error; err != nil {
		slog.Error("failed to insert high score", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save score")
		return
	}

	slog.Info("high score submitted", "id", entry.ID, "score", entry.Score)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitHighScoreResponse{Score: entry})
}
