// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/models"
	"github.com/danielhkuo/biodex/testutil"
)

func TestHighScores(t *testing.T) {
	db := testutil.SetupTestDB(t)
	orm := testutil.SetupTestORM(t, db)

	settings := gameconfig.Defaults()
	settings.HighscoreLimit = 2
	settings.HighscoreMaxLimit = 3
	h := NewHighScoreHandler(orm, gameconfig.Static(settings))

	submit := func(username string, score float64) models.HighScore {
		t.Helper()
		w := httptest.NewRecorder()
		h.Submit(w, testutil.MakeRequest(http.MethodPost, "/api/highscores",
			models.SubmitHighScoreRequest{Username: username, Score: &score}, nil))
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.SubmitHighScoreResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.Score
	}

	list := func(query string) []models.HighScore {
		t.Helper()
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, "/api/highscores"+query, nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.HighScoresResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.Scores
	}

	t.Run("empty table", func(t *testing.T) {
		scores := list("")
		assert.NotNil(t, scores)
		assert.Empty(t, scores)
	})

	saved := submit("  Grace  ", 300)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "Grace", saved.Username)
	assert.Equal(t, int64(300), saved.Score)
	assert.False(t, saved.CreatedAt.IsZero())

	submit("Ada", 500)
	submit("Linus", 300)
	submit("Ken", 0)

	t.Run("default limit", func(t *testing.T) {
		scores := list("")
		require.Len(t, scores, 2)
		assert.Equal(t, "Ada", scores[0].Username)
		assert.Equal(t, "Grace", scores[1].Username, "ties go to the earlier entry")
	})

	t.Run("explicit limit is capped", func(t *testing.T) {
		scores := list("?limit=50")
		require.Len(t, scores, 3)
		assert.Equal(t, "Linus", scores[2].Username)
	})
}
