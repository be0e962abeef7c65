// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gameconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var ErrInvalidSettings = errors.New("invalid game settings")

// Settings are the tunables read by request handlers.
type Settings struct {
	MaxRadiusM        float64 `mapstructure:"max_radius_m" json:"max_radius_m"`
	DefaultRadiusM    float64 `mapstructure:"default_radius_m" json:"default_radius_m"`
	MaxResults        int     `mapstructure:"max_results" json:"max_results"` // 0 = unlimited
	MaxIDs            int     `mapstructure:"max_ids" json:"max_ids"`
	MaxMigrateBatch   int     `mapstructure:"max_migrate_batch" json:"max_migrate_batch"`
	HighscoreLimit    int     `mapstructure:"highscore_limit" json:"highscore_limit"`
	HighscoreMaxLimit int     `mapstructure:"highscore_max_limit" json:"highscore_max_limit"`
}

// Defaults returns the settings used when no file is configured.
func Defaults() Settings {
	return Settings{
		MaxRadiusM:        500000,
		DefaultRadiusM:    10000,
		MaxResults:        0,
		MaxIDs:            500,
		MaxMigrateBatch:   1000,
		HighscoreLimit:    10,
		HighscoreMaxLimit: 100,
	}
}

func (s Settings) Validate() error {
	switch {
	case !(s.MaxRadiusM > 0) || math.IsInf(s.MaxRadiusM, 0):
		return fmt.Errorf("%w: max_radius_m must be positive", ErrInvalidSettings)
	case !(s.DefaultRadiusM > 0) || s.DefaultRadiusM > s.MaxRadiusM:
		return fmt.Errorf("%w: default_radius_m must be in (0, max_radius_m]", ErrInvalidSettings)
	case s.MaxResults < 0:
		return fmt.Errorf("%w: max_results must be >= 0", ErrInvalidSettings)
	case s.MaxIDs <= 0:
		return fmt.Errorf("%w: max_ids must be positive", ErrInvalidSettings)
	case s.MaxMigrateBatch <= 0:
		return fmt.Errorf("%w: max_migrate_batch must be positive", ErrInvalidSettings)
	case s.HighscoreLimit <= 0 || s.HighscoreLimit > s.HighscoreMaxLimit:
		return fmt.Errorf("%w: highscore_limit must be in (0, highscore_max_limit]", ErrInvalidSettings)
	}
	return nil
}

// ClampRadius caps a requested radius at MaxRadiusM.
func (s Settings) ClampRadius(r float64) float64 {
	if r > s.MaxRadiusM {
		return s.MaxRadiusM
	}
	return r
}

// Source supplies the current settings. Handlers take a Source so the
// settings can change between requests without restarting.
type Source interface {
	Current() Settings
}

// Reloader is a Source that can be re-read on demand.
type Reloader interface {
	Source
	Reload() (Settings, error)
}

// Static is a Source that never changes.
type Static Settings

func (s Static) Current() Settings { return Settings(s) }

// Reload is a no-op so Static can stand in for a Store.
func (s Static) Reload() (Settings, error) { return Settings(s), nil }

// Store holds settings loaded from a YAML file and swaps them atomically
// on Reload. A reload that fails keeps the previous settings.
type Store struct {
	path    string
	current atomic.Pointer[Settings]
	mu      sync.Mutex
}

// Load reads the settings file. An empty path yields Defaults.
func Load(path string) (*Store, error) {
	s := &Store{path: path}
	settings, err := read(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(&settings)
	return s, nil
}

func (s *Store) Current() Settings {
	return *s.current.Load()
}

func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file and returns the settings now in effect.
func (s *Store) Reload() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := read(s.path)
	if err != nil {
		return s.Current(), err
	}
	s.current.Store(&settings)
	return settings, nil
}

// Watch reloads the settings whenever the file changes, until ctx is done.
// Editors often replace the file rather than write it, so the parent
// directory is watched.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settings, err := s.Reload()
			if err != nil {
				slog.Warn("game settings reload failed, keeping previous", "path", s.path, "error", err)
				continue
			}
			slog.Info("game settings reloaded", "path", s.path, "settings", settings)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("game settings watcher error", "error", err)
		}
	}
}

func read(path string) (Settings, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("max_radius_m", d.MaxRadiusM)
	v.SetDefault("default_radius_m", d.DefaultRadiusM)
	v.SetDefault("max_results", d.MaxResults)
	v.SetDefault("max_ids", d.MaxIDs)
	v.SetDefault("max_migrate_batch", d.MaxMigrateBatch)
	v.SetDefault("highscore_limit", d.HighscoreLimit)
	v.SetDefault("highscore_max_limit", d.HighscoreMaxLimit)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read game settings: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode game settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
