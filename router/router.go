// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/biodex/cliparse"
	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/handlers"
	"github.com/danielhkuo/biodex/middleware"
)

// Banner is served at the root path.
const Banner = "biodex API v1"

func NewRouter(db *sql.DB, orm *gorm.DB, cfg cliparse.Config, game gameconfig.Reloader) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	speciesHandler := handlers.NewSpeciesHandler(db, game)
	discoveryHandler := handlers.NewDiscoveryHandler(db, orm, game)
	playerHandler := handlers.NewPlayerHandler(orm)
	highScoreHandler := handlers.NewHighScoreHandler(orm, game)
	adminHandler := handlers.NewAdminHandler(cfg, game)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Spatial species queries
	mux.HandleFunc("GET /api/species/at-point", middleware.WithLogging(speciesHandler.AtPoint))
	mux.HandleFunc("GET /api/species/in-radius", middleware.WithLogging(speciesHandler.InRadius))
	mux.HandleFunc("GET /api/species/closest", middleware.WithLogging(speciesHandler.Closest))
	mux.HandleFunc("GET /api/species/bioregions", middleware.WithLogging(speciesHandler.Bioregions))
	mux.HandleFunc("POST /api/species/bioregions", middleware.WithLogging(speciesHandler.Bioregions))
	mux.HandleFunc("GET /api/species/by-ids", middleware.WithLogging(speciesHandler.ByIDs))
	mux.HandleFunc("POST /api/species/by-ids", middleware.WithLogging(speciesHandler.ByIDs))

	// Discoveries
	mux.HandleFunc("POST /api/discoveries", middleware.WithLogging(discoveryHandler.Record))
	mux.HandleFunc("POST /api/discoveries/migrate", middleware.WithLogging(discoveryHandler.Migrate))

	// Player progress
	mux.HandleFunc("GET /api/players/{id}/discoveries", middleware.WithLogging(playerHandler.Discoveries))
	mux.HandleFunc("GET /api/players/{id}/stats", middleware.WithLogging(playerHandler.Stats))

	// High scores
	mux.HandleFunc("GET /api/highscores", middleware.WithLogging(highScoreHandler.List))
	mux.HandleFunc("POST /api/highscores", middleware.WithLogging(highScoreHandler.Submit))

	// Admin (requires X-Admin-Key)
	mux.HandleFunc("GET /api/admin/config", middleware.WithLogging(adminHandler.Config))
	mux.HandleFunc("POST /api/admin/config/reload", middleware.WithLogging(adminHandler.ReloadConfig))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(Banner))
	})

	return middleware.Chain(mux)
}
