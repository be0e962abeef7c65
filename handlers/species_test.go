// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/models"
	"github.com/danielhkuo/biodex/testutil"
)

// seedSpecies loads three ranges: two overlapping squares around (10,10)
// and one far away around (50,50).
func seedSpecies(t *testing.T, db *sql.DB) {
	t.Helper()
	testutil.InsertTestSpecies(t, db, 1, "Panthera leo", "Mammalia", testutil.Square(10, 10, 1))
	testutil.InsertTestSpecies(t, db, 2, "Aquila chrysaetos", "Aves", testutil.Square(10.5, 10.5, 1))
	testutil.InsertTestSpecies(t, db, 3, "Ursus arctos", "Mammalia", testutil.Square(50, 50, 1))
}

func speciesIDs(species []models.Species) []int64 {
	ids := make([]int64, 0, len(species))
	for _, s := range species {
		ids = append(ids, s.ID)
	}
	return ids
}

func getSpecies(t *testing.T, handler http.HandlerFunc, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAtPoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedSpecies(t, db)
	h := NewSpeciesHandler(db, testutil.GameSettings())

	t.Run("overlapping ranges", func(t *testing.T) {
		w := getSpecies(t, h.AtPoint, "/api/species/at-point?lon=10&lat=10")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.SpeciesListResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, []int64{1, 2}, speciesIDs(resp.Species))
		assert.Equal(t, 2, resp.Count)
		assert.True(t, strings.HasPrefix(resp.Species[0].Geometry.WKT(), "MULTIPOLYGON"))
	})

	t.Run("open ocean", func(t *testing.T) {
		w := getSpecies(t, h.AtPoint, "/api/species/at-point?lon=-30&lat=0")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.SpeciesListResponse
		testutil.AssertJSON(t, w, &resp)
		assert.NotNil(t, resp.Species)
		assert.Empty(t, resp.Species)
		assert.Equal(t, 0, resp.Count)
	})

	t.Run("max_results caps the list", func(t *testing.T) {
		settings := gameconfig.Defaults()
		settings.MaxResults = 1
		capped := NewSpeciesHandler(db, gameconfig.Static(settings))

		w := getSpecies(t, capped.AtPoint, "/api/species/at-point?lon=10&lat=10")
		var resp models.SpeciesListResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, []int64{1}, speciesIDs(resp.Species))
	})
}

func TestInRadius(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedSpecies(t, db)
	h := NewSpeciesHandler(db, testutil.GameSettings())

	// (13,10) is about 164 km from species 2 and 219 km from species 1
	tests := []struct {
		name       string
		query      string
		wantIDs    []int64
		wantRadius float64
	}{
		{"default radius", "lon=13&lat=10", []int64{}, 10000},
		{"reaches one", "lon=13&lat=10&radius=190000", []int64{2}, 190000},
		{"reaches both", "lon=13&lat=10&radius=250000", []int64{1, 2}, 250000},
		{"clamped", "lon=13&lat=10&radius=99999999", []int64{1, 2}, 500000},
		{"inside", "lon=50&lat=50&radius=1", []int64{3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getSpecies(t, h.InRadius, "/api/species/in-radius?"+tt.query)
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.SpeciesInRadiusResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, tt.wantIDs, speciesIDs(resp.Species))
			assert.Equal(t, len(tt.wantIDs), resp.Count)
			assert.Equal(t, tt.wantRadius, resp.RadiusM)
		})
	}
}

func TestClosest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewSpeciesHandler(db, testutil.GameSettings())

	t.Run("empty catalog", func(t *testing.T) {
		w := getSpecies(t, h.Closest, "/api/species/closest?lon=0&lat=0")
		testutil.AssertStatus(t, w, http.StatusOK)
		assert.JSONEq(t, `{"species": null, "geometry": null}`, w.Body.String())
	})

	seedSpecies(t, db)

	t.Run("nearest range", func(t *testing.T) {
		w := getSpecies(t, h.Closest, "/api/species/closest?lon=50&lat=55")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Species  models.Species `json:"species"`
			Geometry map[string]any `json:"geometry"`
		}
		testutil.AssertJSON(t, w, &resp)

		assert.Equal(t, int64(3), resp.Species.ID)
		require.NotNil(t, resp.Species.DistanceKm)
		assert.InDelta(t, 445, *resp.Species.DistanceKm, 5)
		assert.Equal(t, "MultiPolygon", resp.Geometry["type"])
	})

	t.Run("inside a range", func(t *testing.T) {
		w := getSpecies(t, h.Closest, "/api/species/closest?lon=50&lat=50")

		var resp models.ClosestSpeciesResponse
		testutil.AssertJSON(t, w, &resp)
		require.NotNil(t, resp.Species)
		assert.Equal(t, int64(3), resp.Species.ID)
		require.NotNil(t, resp.Species.DistanceKm)
		assert.Zero(t, *resp.Species.DistanceKm)
	})
}

func TestByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedSpecies(t, db)
	h := NewSpeciesHandler(db, testutil.GameSettings())

	t.Run("get ignores unknown ids", func(t *testing.T) {
		w := getSpecies(t, h.ByIDs, "/api/species/by-ids?ids=3,1,999")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ByIDsResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, []int64{1, 3}, speciesIDs(resp.Species))
		assert.Equal(t, "Panthera leo", resp.Species[0].ScientificName)
		require.NotNil(t, resp.Species[0].Class)
		assert.Equal(t, "Mammalia", *resp.Species[0].Class)
	})

	t.Run("post", func(t *testing.T) {
		req := testutil.MakeRequest(http.MethodPost, "/api/species/by-ids", models.ByIDsRequest{IDs: []int64{2, 2}}, nil)
		w := httptest.NewRecorder()
		h.ByIDs(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ByIDsResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Equal(t, []int64{2}, speciesIDs(resp.Species))
	})
}

func TestBioregions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seedSpecies(t, db)
	testutil.InsertTestBioregion(t, db, 1, "Sahel", testutil.Square(10, 10, 5))
	testutil.InsertTestBioregion(t, db, 2, "Taiga", testutil.Square(50, 50, 5))
	h := NewSpeciesHandler(db, testutil.GameSettings())

	names := func(t *testing.T, w *httptest.ResponseRecorder) []string {
		t.Helper()
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.BioregionsResponse
		testutil.AssertJSON(t, w, &resp)
		out := []string{}
		for _, b := range resp.Bioregions {
			out = append(out, b.Name)
		}
		return out
	}

	t.Run("get by point", func(t *testing.T) {
		w := getSpecies(t, h.Bioregions, "/api/species/bioregions?lon=12&lat=8")
		assert.Equal(t, []string{"Sahel"}, names(t, w))
	})

	t.Run("post by point", func(t *testing.T) {
		req := testutil.MakeRequest(http.MethodPost, "/api/species/bioregions", map[string]any{"lon": -100, "lat": 0}, nil)
		w := httptest.NewRecorder()
		h.Bioregions(w, req)
		assert.Empty(t, names(t, w))
	})

	t.Run("post by species", func(t *testing.T) {
		req := testutil.MakeRequest(http.MethodPost, "/api/species/bioregions", models.BioregionsRequest{SpeciesIDs: []int64{3, 1}}, nil)
		w := httptest.NewRecorder()
		h.Bioregions(w, req)
		assert.Equal(t, []string{"Sahel", "Taiga"}, names(t, w))
	})
}
