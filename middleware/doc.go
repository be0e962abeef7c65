// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs completion with method, path, status, duration_ms and the chi request ID.

# Chain

Chain wraps the router with chi's RequestID and Recoverer plus CORS:

	server := http.Server{Handler: middleware.Chain(mux)}

A panicking handler produces a 500 instead of killing the connection.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "lon and lat are required")

Error bodies are always {"error": "..."}.

	var req models.SubmitHighScoreRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies larger than MaxBodyBytes are rejected with ErrBodyTooLarge.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr. Used in request logs.
*/
package middleware
