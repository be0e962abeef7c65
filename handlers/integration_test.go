// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/biodex/models"
	"github.com/danielhkuo/biodex/testutil"
)

// TestFullDiscoveryWorkflow tests the complete end-to-end workflow:
// 1. Look up species at the player's globe position
// 2. Record a discovery made in play
// 3. Migrate a locally held list that overlaps it
// 4. List the player's discoveries
// 5. Check the player's stats
// 6. Submit and read back a high score
func TestFullDiscoveryWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	orm := testutil.SetupTestORM(t, db)
	seedSpecies(t, db)

	game := testutil.GameSettings()
	speciesHandler := NewSpeciesHandler(db, game)
	discoveryHandler := NewDiscoveryHandler(db, orm, game)
	playerHandler := NewPlayerHandler(orm)
	highScoreHandler := NewHighScoreHandler(orm, game)

	player := testutil.NewPlayerID()

	// Step 1: Species at a point
	req := httptest.NewRequest("GET", "/api/species/at-point?lon=10.2&lat=10.2", nil)
	w := httptest.NewRecorder()
	speciesHandler.AtPoint(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 1 - At-point failed: %d - %s", w.Code, w.Body.String())
	}
	var atPoint models.SpeciesListResponse
	json.NewDecoder(w.Body).Decode(&atPoint)
	if atPoint.Count != 2 {
		t.Fatalf("Step 1 - Expected 2 species, got %d", atPoint.Count)
	}
	found := atPoint.Species[0].ID
	t.Logf("Step 1 - Found %d species", atPoint.Count)

	// Step 2: Record the first one
	recordReq := models.RecordDiscoveryRequest{
		UserID:        player,
		SpeciesID:     found,
		SessionID:     testutil.NewPlayerID(),
		CluesRevealed: 3,
		Score:         120,
	}
	body, _ := json.Marshal(recordReq)
	req = httptest.NewRequest("POST", "/api/discoveries", bytes.NewReader(body))
	w = httptest.NewRecorder()
	discoveryHandler.Record(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Record failed: %d - %s", w.Code, w.Body.String())
	}
	t.Logf("Step 2 - Recorded species %d", found)

	// Step 3: Migrate a local list containing it plus the rest of the catalog
	migrateReq := models.MigrateDiscoveriesRequest{
		UserID:      player,
		Discoveries: []models.DiscoveryCandidate{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	body, _ = json.Marshal(migrateReq)
	req = httptest.NewRequest("POST", "/api/discoveries/migrate", bytes.NewReader(body))
	w = httptest.NewRecorder()
	discoveryHandler.Migrate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Migrate failed: %d - %s", w.Code, w.Body.String())
	}
	var migrateResp models.MigrateDiscoveriesResponse
	json.NewDecoder(w.Body).Decode(&migrateResp)
	if migrateResp.Migrated != 2 {
		t.Errorf("Step 3 - Expected 2 migrated, got %d", migrateResp.Migrated)
	}
	for _, r := range migrateResp.Results {
		if r.ID == found && r.Status != models.MigrateAlreadyDiscovered {
			t.Errorf("Step 3 - Expected %d to be already_discovered, got %s", found, r.Status)
		}
	}
	t.Logf("Step 3 - Migrated %d", migrateResp.Migrated)

	// Step 4: Player discoveries
	req = httptest.NewRequest("GET", "/api/players/"+player+"/discoveries", nil)
	req.SetPathValue("id", player)
	w = httptest.NewRecorder()
	playerHandler.Discoveries(w, req)

	var discoveries models.PlayerDiscoveriesResponse
	json.NewDecoder(w.Body).Decode(&discoveries)
	if len(discoveries.Discoveries) != 3 {
		t.Fatalf("Step 4 - Expected 3 discoveries, got %d", len(discoveries.Discoveries))
	}

	// Step 5: Stats
	req = httptest.NewRequest("GET", "/api/players/"+player+"/stats", nil)
	req.SetPathValue("id", player)
	w = httptest.NewRecorder()
	playerHandler.Stats(w, req)

	var stats models.PlayerStatsResponse
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.Stats.TotalDiscoveries != 3 {
		t.Errorf("Step 5 - Expected 3 total discoveries, got %d", stats.Stats.TotalDiscoveries)
	}
	if stats.Stats.TotalScore != 120 {
		t.Errorf("Step 5 - Expected total score 120, got %d", stats.Stats.TotalScore)
	}
	if fmt.Sprint(stats.Stats.ClassCounts["Mammalia"]) != "2" {
		t.Errorf("Step 5 - Expected 2 mammals, got %v", stats.Stats.ClassCounts["Mammalia"])
	}

	// Step 6: High score
	score := float64(stats.Stats.TotalScore)
	body, _ = json.Marshal(models.SubmitHighScoreRequest{Username: "Explorer", Score: &score})
	req = httptest.NewRequest("POST", "/api/highscores", bytes.NewReader(body))
	w = httptest.NewRecorder()
	highScoreHandler.Submit(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 6 - Submit score failed: %d - %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/highscores", nil)
	w = httptest.NewRecorder()
	highScoreHandler.List(w, req)

	var scores models.HighScoresResponse
	json.NewDecoder(w.Body).Decode(&scores)
	if len(scores.Scores) != 1 || scores.Scores[0].Username != "Explorer" {
		t.Errorf("Step 6 - Unexpected scores: %+v", scores.Scores)
	}
	t.Log("Step 6 - High score recorded")
}
