// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Blind Dram API.

# Handler Types

Each handler is a struct wrapping the tasting service:

  - TastingHandler: Tasting lifecycle (create, login, setup, release, complete)
  - RatingHandler: Rating submission and a participant's own ratings
  - LeaderboardHandler: Ranked results

Handlers are created via constructor functions that accept *tasting.Service:

	tastingHandler := handlers.NewTastingHandler(svc)

# Tasting Lifecycle

A tasting is open until the organizer completes it. Completion is one-way.

	POST /api/tastings                  → CreateTasting (returns token and join code)
	POST /api/tastings/{id}/login       → Login (PIN for a new token)
	PUT  /api/tastings/{id}             → UpdateSetup (open only)
	POST /api/tastings/{id}/released    → SetReleased (reveal or hide dram names)
	POST /api/tastings/{id}/completed   → Complete (freezes the tasting)

Organizer operations require an "Authorization: Bearer <token>" header.

# Rating Flow

Participants join by code and rate drams by order:

	GET  /api/join/{code}                         → GetByJoinCode
	POST /api/tastings/{id}/ratings               → SubmitRatings (partial merge)
	GET  /api/tastings/{id}/ratings/{participant} → GetMyRatings

The participant name comes from the body or the X-Participant header.
Reading ratings back requires X-Participant to match the name in the path,
or an organizer token.

# Visibility

Dram names and who brought them are hidden from everyone but the organizer
until the tasting is released. Average ranks and rater counts are always
visible.

# Errors

Service errors map to status codes in writeError: validation 400, bad
credential 401, unknown tasting 404, completed tasting 409, timeouts 503.
*/
package handlers
