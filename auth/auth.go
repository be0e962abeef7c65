// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey  = errors.New("invalid admin key")
	ErrAdminDisabled    = errors.New("admin key not configured")
	ErrInvalidPlayerID  = errors.New("invalid player id")
	ErrInvalidSessionID = errors.New("invalid session id")
)

// ParsePlayerID parses a player identifier. Players are identified by the
// UUID issued by the auth backend; the nil UUID is rejected.
func ParsePlayerID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidPlayerID, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrInvalidPlayerID
	}
	return id, nil
}

// ParseSessionID parses an optional game session identifier.
// An empty string yields nil.
func ParseSessionID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionID, err)
	}
	return &id, nil
}

// ValidateAdminKey checks a presented admin key against the configured one.
// Both sides are hashed first so the comparison is constant time regardless
// of length.
func ValidateAdminKey(presented, configured string) error {
	if configured == "" {
		return ErrAdminDisabled
	}
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(configured))
	if !hmac.Equal(a[:], b[:]) {
		return ErrInvalidAdminKey
	}
	return nil
}
