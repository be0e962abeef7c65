// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lib/pq"
	"github.com/paulmach/orb"

	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/geo"
	"github.com/danielhkuo/biodex/middleware"
	"github.com/danielhkuo/biodex/models"
)

const speciesColumns = `
	id, scientific_name, common_name, genus, family, order_name, class, category,
	marine, terrestrial, freshwater, habitat_description, description, key_fact, geom`

// pointSQL builds the query point from $1 (lon) and $2 (lat)
const pointSQL = `ST_SetSRID(ST_MakePoint($1, $2), 4326)`

type SpeciesHandler struct {
	db   *sql.DB
	game gameconfig.Source
}

func NewSpeciesHandler(db *sql.DB, game gameconfig.Source) *SpeciesHandler {
	return &SpeciesHandler{db: db, game: game}
}

// AtPoint handles GET /api/species/at-point?lon=&lat=
func (h *SpeciesHandler) AtPoint(w http.ResponseWriter, r *http.Request) {
	pt, err := geo.ParseLonLat(r.URL.Query().Get("lon"), r.URL.Query().Get("lat"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	species, err := h.querySpecies(r.Context(), `
		SELECT `+speciesColumns+`
		FROM species
		WHERE ST_Contains(geom, `+pointSQL+`)
		ORDER BY id
		LIMIT $3
	`, pt.Lon(), pt.Lat(), resultLimit(h.game.Current()))
	if err != nil {
		slog.Error("failed to query species at point", "error", err, "lon", pt.Lon(), "lat", pt.Lat())
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SpeciesListResponse{
		Species: species,
		Count:   len(species),
	})
}

// InRadius handles GET /api/species/in-radius?lon=&lat=&radius=
func (h *SpeciesHandler) InRadius(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pt, err := geo.ParseLonLat(q.Get("lon"), q.Get("lat"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := h.game.Current()
	radius, err := parseRadius(q.Get("radius"), settings)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	species, err := h.querySpecies(r.Context(), `
		SELECT `+speciesColumns+`
		FROM species
		WHERE ST_DWithin(geom::geography, `+pointSQL+`::geography, $3)
		ORDER BY id
		LIMIT $4
	`, pt.Lon(), pt.Lat(), radius, resultLimit(settings))
	if err != nil {
		slog.Error("failed to query species in radius", "error", err, "radius_m", radius)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SpeciesInRadiusResponse{
		Species: species,
		Count:   len(species),
		RadiusM: radius,
	})
}

// Closest handles GET /api/species/closest?lon=&lat=
func (h *SpeciesHandler) Closest(w http.ResponseWriter, r *http.Request) {
	pt, err := geo.ParseLonLat(r.URL.Query().Get("lon"), r.URL.Query().Get("lat"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var s models.Species
	var distanceKm float64
	row := h.db.QueryRowContext(r.Context(), `
		SELECT `+speciesColumns+`,
		       ST_Distance(geom::geography, `+pointSQL+`::geography) / 1000.0 AS distance_km
		FROM species
		WHERE geom IS NOT NULL
		ORDER BY geom <-> `+pointSQL+`
		LIMIT 1
	`, pt.Lon(), pt.Lat())
	err = scanSpecies(row, &s, &distanceKm)

	if errors.Is(err, sql.ErrNoRows) {
		middleware.JSONResponse(w, http.StatusOK, models.ClosestSpeciesResponse{})
		return
	}
	if err != nil {
		slog.Error("failed to query closest species", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	s.DistanceKm = &distanceKm
	middleware.JSONResponse(w, http.StatusOK, models.ClosestSpeciesResponse{
		Species:  &s,
		Geometry: s.Geometry.GeoJSON(),
	})
}

// ByIDs handles GET /api/species/by-ids?ids=1,2,3 and POST {"ids": [...]}
func (h *SpeciesHandler) ByIDs(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	if r.Method == http.MethodPost {
		var req models.ByIDsRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		ids = uniquePositive(req.IDs)
	} else {
		var err error
		ids, err = parseIDList(r.URL.Query().Get("ids"))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, validationMessage(err))
			return
		}
	}

	if len(ids) > h.game.Current().MaxIDs {
		middleware.ErrorResponse(w, http.StatusBadRequest, "too many ids")
		return
	}
	if len(ids) == 0 {
		middleware.JSONResponse(w, http.StatusOK, models.ByIDsResponse{Species: []models.Species{}})
		return
	}

	species, err := h.querySpecies(r.Context(), `
		SELECT `+speciesColumns+`
		FROM species
		WHERE id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		slog.Error("failed to query species by ids", "error", err, "count", len(ids))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ByIDsResponse{Species: species})
}

// Bioregions handles GET /api/species/bioregions?lon=&lat= and
// POST {"lon", "lat"} or {"species_ids": [...]}
func (h *SpeciesHandler) Bioregions(w http.ResponseWriter, r *http.Request) {
	var pt *orb.Point
	var speciesIDs []int64

	if r.Method == http.MethodPost {
		var req models.BioregionsRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		switch {
		case req.Lon != nil || req.Lat != nil:
			if req.Lon == nil || req.Lat == nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, "lon and lat are required together")
				return
			}
			p, err := geo.NewPoint(*req.Lon, *req.Lat)
			if err != nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
				return
			}
			pt = &p
		default:
			speciesIDs = uniquePositive(req.SpeciesIDs)
			if len(speciesIDs) == 0 {
				middleware.ErrorResponse(w, http.StatusBadRequest, "lon/lat or species_ids is required")
				return
			}
			if len(speciesIDs) > h.game.Current().MaxIDs {
				middleware.ErrorResponse(w, http.StatusBadRequest, "too many species_ids")
				return
			}
		}
	} else {
		p, err := geo.ParseLonLat(r.URL.Query().Get("lon"), r.URL.Query().Get("lat"))
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		pt = &p
	}

	var rows *sql.Rows
	var err error
	if pt != nil {
		rows, err = h.db.QueryContext(r.Context(), `
			SELECT id, name, realm, biome, geom
			FROM bioregion
			WHERE ST_Contains(geom, `+pointSQL+`)
			ORDER BY name, id
		`, pt.Lon(), pt.Lat())
	} else {
		rows, err = h.db.QueryContext(r.Context(), `
			SELECT b.id, b.name, b.realm, b.biome, b.geom
			FROM bioregion b
			WHERE EXISTS (
				SELECT 1 FROM species s
				WHERE s.id = ANY($1) AND ST_Intersects(b.geom, s.geom)
			)
			ORDER BY b.name, b.id
		`, pq.Array(speciesIDs))
	}
	if err != nil {
		slog.Error("failed to query bioregions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	bioregions := []models.Bioregion{}
	for rows.Next() {
		var b models.Bioregion
		if err := rows.Scan(&b.ID, &b.Name, &b.Realm, &b.Biome, &b.Geometry); err != nil {
			slog.Error("failed to scan bioregion", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		bioregions = append(bioregions, b)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate bioregions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BioregionsResponse{Bioregions: bioregions})
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSpecies scans speciesColumns followed by any extra columns
func scanSpecies(row rowScanner, s *models.Species, extra ...any) error {
	dest := []any{
		&s.ID, &s.ScientificName, &s.CommonName, &s.Genus, &s.Family, &s.OrderName,
		&s.Class, &s.Category, &s.Marine, &s.Terrestrial, &s.Freshwater,
		&s.HabitatDescription, &s.Description, &s.KeyFact, &s.Geometry,
	}
	return row.Scan(append(dest, extra...)...)
}

func (h *SpeciesHandler) querySpecies(ctx context.Context, query string, args ...any) ([]models.Species, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	species := []models.Species{}
	for rows.Next() {
		var s models.Species
		if err := scanSpecies(rows, &s); err != nil {
			return nil, err
		}
		species = append(species, s)
	}
	return species, rows.Err()
}
