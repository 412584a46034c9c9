// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package memstore is an in-memory tasting.Repository.
//
// A single RWMutex guards all tastings, so every rating merge is atomic.
// Data is lost on restart; use it for tests and local demos (-t memory).
package memstore
