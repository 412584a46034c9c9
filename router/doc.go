// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the blind-dram API.

# Route Registration

NewRouter creates the configured handler with all endpoints, wrapped in the
metrics middleware:

	handler := router.NewRouter(svc, cfg)

# Endpoints

Health and metrics:

	GET /api/health
	GET /metrics

Tastings:

	POST /api/tastings           - Create tasting (returns join code and organizer token)
	GET  /api/tastings           - Active tastings
	GET  /api/tastings/completed - Completed tastings
	GET  /api/tastings/{id}      - Tasting with drams filtered for the caller
	GET  /api/join/{code}        - Same, looked up by join code

Organizer (Authorization: Bearer <token>):

	POST /api/tastings/{id}/login     - Exchange PIN for token (rate limited per IP)
	PUT  /api/tastings/{id}           - Update title, host, drams or PIN
	POST /api/tastings/{id}/released  - Reveal or hide dram identities
	POST /api/tastings/{id}/completed - Freeze the tasting

Participants (X-Participant header or participant field):

	POST /api/tastings/{id}/ratings               - Merge ratings
	GET  /api/tastings/{id}/ratings/{participant} - Own ratings

Results:

	GET /api/tastings/{id}/leaderboard - Ranked rows filtered for the caller

# Handler Initialization

The router creates handler instances over one tasting.Service:

	tastingHandler := handlers.NewTastingHandler(svc)
	ratingHandler := handlers.NewRatingHandler(svc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc)
*/
package router
