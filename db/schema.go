// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to types both SQLite and PostgreSQL accept: flags are
// INTEGER 0/1 and timestamps are unix milliseconds.
const schema = `
-- Tastings
CREATE TABLE IF NOT EXISTS tasting (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    host TEXT NOT NULL DEFAULT '',
    organizer_pin_hash TEXT NOT NULL,
    join_code TEXT UNIQUE,
    released INTEGER NOT NULL DEFAULT 0,
    completed INTEGER NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasting_completed ON tasting(completed, created_at);

-- Drams
CREATE TABLE IF NOT EXISTS dram (
    tasting_id TEXT NOT NULL REFERENCES tasting(id) ON DELETE CASCADE,
    dram_order INTEGER NOT NULL CHECK (dram_order >= 1),
    name TEXT NOT NULL DEFAULT '',
    brought_by TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (tasting_id, dram_order)
);

-- Ratings, one row per participant and dram order
CREATE TABLE IF NOT EXISTS rating (
    tasting_id TEXT NOT NULL REFERENCES tasting(id) ON DELETE CASCADE,
    participant TEXT NOT NULL,
    dram_order INTEGER NOT NULL,
    points INTEGER NOT NULL CHECK (points >= 0 AND points <= 100),
    notes TEXT NOT NULL DEFAULT '',
    aromas TEXT NOT NULL DEFAULT '[]',
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (tasting_id, participant, dram_order)
);

CREATE INDEX IF NOT EXISTS idx_rating_tasting_id ON rating(tasting_id);
`
