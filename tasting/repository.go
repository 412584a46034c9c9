// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tasting

import (
	"context"

	"github.com/danielhkuo/blind-dram/models"
)

// SetupChange is a partial update of a tasting's setup. Nil fields are left
// as they are.
type SetupChange struct {
	Title   *string
	Host    *string
	Drams   *[]models.Dram
	PINHash *string
}

// Repository persists tastings and their ratings.
//
// Lookups return ErrNotFound for unknown tastings. Mutations of a completed
// tasting's setup or ratings return ErrFrozen. MergeRatings must be atomic
// per (tasting, participant): orders not present in ratings keep their
// previous value, and concurrent merges never interleave partially.
type Repository interface {
	Create(ctx context.Context, t models.Tasting) error
	Get(ctx context.Context, id string) (models.Tasting, error)
	GetByJoinCode(ctx context.Context, code string) (models.Tasting, error)
	JoinCodeExists(ctx context.Context, code string) (bool, error)

	// AssignJoinCode sets code only if the tasting has none yet, and
	// returns the code the tasting ends up with.
	AssignJoinCode(ctx context.Context, id, code string) (string, error)

	UpdateSetup(ctx context.Context, id string, change SetupChange) error
	SetReleased(ctx context.Context, id string, released bool) error
	MarkCompleted(ctx context.Context, id string) error

	MergeRatings(ctx context.Context, id, participant string, ratings models.ParticipantRatings) error
	Ratings(ctx context.Context, id string) (models.RatingStore, error)
	ParticipantRatings(ctx context.Context, id, participant string) (models.ParticipantRatings, error)

	// List returns tastings with the given completed flag, newest first.
	List(ctx context.Context, completed bool) ([]models.Tasting, error)
}
