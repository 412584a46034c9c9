// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and the SQL
tasting store.

# Connecting

Open supports SQLite (modernc.org/sqlite, the default) and PostgreSQL
(github.com/lib/pq):

	conn, err := db.Open(ctx, db.TypeSQLite, "blind-dram.db")
	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")

An empty SQLite URL opens an in-memory database.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - tasting: metadata, PIN hash, join code and the released/completed flags
  - dram: one row per dram, keyed by (tasting_id, dram_order)
  - rating: one row per (tasting_id, participant, dram_order); aromas as JSON

Flags are stored as INTEGER 0/1 and timestamps as unix milliseconds so the
same DDL runs on both drivers. Queries are written with ? placeholders and
rewritten to $N for PostgreSQL.

# Store

Store implements tasting.Repository. Rating merges and setup changes run in
a transaction that first updates the tasting row only if it is not
completed, which locks it against concurrent completion.
*/
package db
