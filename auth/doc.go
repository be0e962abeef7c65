// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity parsing and admin key checks.

# Player IDs

Players are identified by the UUID issued by the hosted auth backend. The API
does not authenticate players; it only checks the identifier is well formed:

	playerID, err := auth.ParsePlayerID(req.UserID)

The nil UUID is rejected.

# Session IDs

Game sessions are optional UUIDs supplied by the client:

	sessionID, err := auth.ParseSessionID(req.SessionID) // nil when empty

# Admin Key

Operator endpoints (game settings reload) require the X-Admin-Key header:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

When no admin key is configured the endpoints are disabled and
ErrAdminDisabled is returned.
*/
package auth
