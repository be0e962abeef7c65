// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gameconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func writeSettings(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), store.Current())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	writeSettings(t, path, "max_radius_m: 250000\nmax_results: 50\n")

	store, err := Load(path)
	require.NoError(t, err)

	got := store.Current()
	assert.Equal(t, 250000.0, got.MaxRadiusM)
	assert.Equal(t, 50, got.MaxResults)
	// untouched keys keep defaults
	assert.Equal(t, Defaults().DefaultRadiusM, got.DefaultRadiusM)
	assert.Equal(t, Defaults().HighscoreLimit, got.HighscoreLimit)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		body string
	}{
		{"negative radius", "max_radius_m: -1\n"},
		{"default above max", "max_radius_m: 100\ndefault_radius_m: 200\n"},
		{"negative max results", "max_results: -5\n"},
		{"highscore limit above cap", "highscore_limit: 500\nhighscore_max_limit: 100\n"},
		{"not yaml", "max_radius_m: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeSettings(t, path, tt.body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Sentinel(t *testing.T) {
	s := Defaults()
	s.MaxIDs = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
}

func TestClampRadius(t *testing.T) {
	s := Defaults()

	tests := []struct {
		in   float64
		want float64
	}{
		{1000, 1000},
		{500000, 500000},
		{500001, 500000},
		{1e9, 500000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.ClampRadius(tt.in), "radius %v", tt.in)
	}
}

func TestReload_KeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	writeSettings(t, path, "max_results: 20\n")

	store, err := Load(path)
	require.NoError(t, err)

	writeSettings(t, path, "max_results: 30\n")
	got, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, 30, got.MaxResults)
	assert.Equal(t, 30, store.Current().MaxResults)

	writeSettings(t, path, "max_results: -1\n")
	got, err = store.Reload()
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, 30, got.MaxResults)
	assert.Equal(t, 30, store.Current().MaxResults)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "game.yaml")
	writeSettings(t, path, "max_results: 1\n")

	store, err := Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()

	// Keep rewriting until the watcher is registered and picks it up
	require.Eventually(t, func() bool {
		writeSettings(t, path, "max_results: 7\n")
		return store.Current().MaxResults == 7
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestStatic(t *testing.T) {
	s := Defaults()
	s.MaxResults = 3
	var src Reloader = Static(s)
	assert.Equal(t, 3, src.Current().MaxResults)

	got, err := src.Reload()
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
