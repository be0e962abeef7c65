// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/biodex/gameconfig"
	"github.com/danielhkuo/biodex/models"
)

// maxScore keeps scores well inside float64's exact integer range
const maxScore = 1 << 50

var errValidation = errors.New("validation failed")

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errValidation, fmt.Sprintf(format, args...))
}

// validationMessage strips the sentinel prefix for the client
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), errValidation.Error()+": ")
}

// parseRadius returns the effective search radius in metres: the default
// when omitted, clamped to the configured maximum otherwise.
func parseRadius(raw string, settings gameconfig.Settings) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return settings.DefaultRadiusM, nil
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(radius) {
		return 0, validationErr("radius must be a number")
	}
	if radius <= 0 {
		return 0, validationErr("radius must be positive")
	}
	return settings.ClampRadius(radius), nil
}

// parseIDList parses "1,2,3" into unique positive ids, in order.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, validationErr("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return uniquePositive(ids), nil
}

func uniquePositive(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// resultLimit maps max_results to a LIMIT argument; nil means no limit.
func resultLimit(settings gameconfig.Settings) any {
	if settings.MaxResults <= 0 {
		return nil
	}
	return settings.MaxResults
}

// validateHighScore returns the trimmed username and integral score.
func validateHighScore(req models.SubmitHighScoreRequest) (string, int64, error) {
	username := strings.TrimSpace(req.Username)
	n := utf8.RuneCountInString(username)
	if n < models.UsernameMinLen || n > models.UsernameMaxLen {
		return "", 0, validationErr("username must be %d-%d characters", models.UsernameMinLen, models.UsernameMaxLen)
	}

	if req.Score == nil {
		return "", 0, validationErr("score is required")
	}
	score := *req.Score
	switch {
	case math.IsNaN(score) || math.IsInf(score, 0):
		return "", 0, validationErr("score must be a number")
	case score < 0:
		return "", 0, validationErr("score must be non-negative")
	case score != math.Trunc(score):
		return "", 0, validationErr("score must be a whole number")
	case score > maxScore:
		return "", 0, validationErr("score is too large")
	}

	return username, int64(score), nil
}
