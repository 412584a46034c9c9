// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Tasting: one blind tasting, its drams and lifecycle flags
  - Dram: one sample, identified by its order
  - Rating: one participant's points (0-100), notes and aroma tags
  - RatingStore: participant -> dram order -> Rating

RatingStore.Merge is a field-level union keyed by dram order: submitting
ratings for some orders never touches the participant's other orders.

	store := models.RatingStore{}
	store.Merge("alice", models.ParticipantRatings{1: {Points: 80}})
	store.Merge("alice", models.ParticipantRatings{2: {Points: 60}})
	// alice now has ratings for orders 1 and 2

# Submitted Ratings

RatingInput is the wire form of a rating. Points accepts numbers and
numeric strings; Normalize clamps to [0, 100], rounds to whole points and
defaults to 50 when points are absent. Aroma tags are de-duplicated.

# Response Types

  - CreateTastingResponse: id, joinCode, token
  - LoginResponse: token
  - TastingView: a tasting after visibility filtering
  - TastingSummary: listing entry without dram identities
  - Leaderboard / LeaderboardRow: average ranks per dram
  - ErrorResponse: error, message

# Roles

	RoleAnonymous   = "anonymous"
	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
*/
package models
