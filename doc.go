// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Blind Dram API server.

Blind Dram runs blind whisky tastings: participants score drams 0-100
without knowing what they are, scores become per-participant fractional
ranks, and the leaderboard averages those ranks. Dram identities stay
hidden until the organizer releases them.

# Starting the Server

The server reads a local .env file if present, then environment variables
or CLI flags:

	JWT_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -jwt-secret ...

# Configuration

Required settings:

  - JWT_SECRET (-jwt-secret): Secret for organizer tokens
  - DATABASE_URL (-d): Required for postgres; SQLite defaults to blind-dram.db

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or memory (default: sqlite)
  - CORS_ORIGINS (-cors): Comma separated allowed origins, "*" for any
  - TOKEN_TTL (-token-ttl): Organizer token lifetime (default: 12h, max: 24h)
  - PIN_COST (-pin-cost): bcrypt cost (default: 10)
  - OP_TIMEOUT (-op-timeout): Per-operation timeout (default: 5s)
  - LOGIN_RATE, LOGIN_BURST: Organizer login throttle per IP
  - TRUST_PROXY (-trust-proxy): Take client IPs from X-Forwarded-For (behind a proxy only)
  - LOG_LEVEL (-log-level): debug, info, warn or error

# Architecture

  - handlers: HTTP request handlers (tastings, ratings, leaderboard)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, rate limiting, JSON helpers
  - tasting: Service with the tasting rules
  - ranking: Fractional ranks and leaderboard aggregation
  - visibility: Identity gating
  - models: Request/response and domain types
  - auth: PIN hashing, join codes and organizer tokens
  - db: SQLite/PostgreSQL schema and store
  - memstore: In-memory store
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
