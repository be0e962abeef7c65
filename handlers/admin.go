// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/biodex/auth"
	"github.com/danielhkuo/biodex/cliparse"
	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/middleware"
)

type AdminHandler struct {
	cfg  cliparse.Config
	game gameconfig.Reloader
}

func NewAdminHandler(cfg cliparse.Config, game gameconfig.Reloader) *AdminHandler {
	return &AdminHandler{cfg: cfg, game: game}
}

func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), h.cfg.AdminKey)
	switch {
	case err == nil:
		return true
	case errors.Is(err, auth.ErrAdminDisabled):
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
	default:
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
	}
	return false
}

// Config handles GET /api/admin/config
func (h *AdminHandler) Config(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.game.Current())
}

// ReloadConfig handles POST /api/admin/config/reload
// On failure the previous settings stay in effect and the error is reported.
func (h *AdminHandler) ReloadConfig(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	settings, err := h.game.Reload()
	if err != nil {
		slog.Warn("game settings reload rejected", "error", err)
		if errors.Is(err, gameconfig.ErrInvalidSettings) {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reload settings")
		return
	}

	slog.Info("game settings reloaded")
	middleware.JSONResponse(w, http.StatusOK, settings)
}
