// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite (default), postgres or memory
  - DatabaseURL: connection string or SQLite file (default: blind-dram.db)
  - JWTSecret: organizer token signing secret (required)
  - TokenTTL: organizer token lifetime (default: 12h)
  - PINCost: bcrypt cost for organizer PINs (default: 10)
  - OpTimeout: bound on storage and hashing per operation (default: 5s)
  - CORSOrigins: allowed origins; empty allows any
  - LoginRate, LoginBurst: organizer login attempts per minute per IP (default: 10, burst 5)
  - LogLevel: slog level (default: info)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-cors         Allowed CORS origins, comma separated
	-jwt-secret   Organizer token secret
	-token-ttl    Organizer token lifetime
	-pin-cost     bcrypt cost
	-op-timeout   Per operation timeout
	-login-rate   Login attempts per minute per IP
	-login-burst  Login burst per IP
	-log-level    debug, info, warn or error

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	CORS_ORIGINS  → -cors
	JWT_SECRET    → -jwt-secret
	TOKEN_TTL     → -token-ttl
	PIN_COST      → -pin-cost
	OP_TIMEOUT    → -op-timeout
	LOGIN_RATE    → -login-rate
	LOGIN_BURST   → -login-burst
	LOG_LEVEL     → -log-level

CLI flags take precedence over environment variables. main loads a .env
file into the environment before parsing.

# Validation

ParseFlags returns an error if:

  - JWT_SECRET is not provided
  - the database type is postgres and no URL is given
  - the database type is unknown
  - a numeric, duration or log level value does not parse
*/
package cliparse
