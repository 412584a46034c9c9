// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/health", middleware.WithLogging(handler))

Logs request completion with method, path, status and duration_ms.

# Metrics

Metrics wraps the whole mux and records Prometheus request counters and
latency histograms labelled by route pattern:

	handler := middleware.Metrics(mux)

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

An empty origin list allows any origin. Allows methods GET, POST, PUT,
OPTIONS with headers Content-Type, Authorization, X-Participant.

# Rate Limiting

RateLimiter keeps a token bucket per client IP and answers 429 when it is
empty. Organizer login is wrapped with it:

	limiter := middleware.NewRateLimiter(10, 5) // 10/min, burst 5
	mux.HandleFunc("POST /api/tastings/{id}/login", limiter.Limit(h.Login))

# Request Identity

	token := middleware.BearerToken(r)       // Authorization: Bearer ...
	name := middleware.Participant(r)        // X-Participant

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateTastingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the client IP. Forwarded headers (X-Forwarded-For, X-Real-IP) are read
only when the caller trusts the proxy in front of the server:

	ip := middleware.GetClientIP(r, cfg.TrustProxy)

Used to key the login rate limiter.
*/
package middleware
