// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Caller roles
const (
	RoleAnonymous   Role = "anonymous"
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
)

// Rating bounds
const (
	MinPoints     = 0
	MaxPoints     = 100
	DefaultPoints = 50
)

// DefaultTitle is used when a tasting is created without a title.
const DefaultTitle = "Blind Tasting"

// Role is the resolved identity of a caller relative to one tasting.
type Role string

// Request types

type DramInput struct {
	Order     int    `json:"order" validate:"min=1"`
	Name      string `json:"name" validate:"max=200"`
	BroughtBy string `json:"broughtBy" validate:"max=200"`
}

type CreateTastingRequest struct {
	Title        string      `json:"title" validate:"max=200"`
	Host         string      `json:"host" validate:"max=200"`
	OrganizerPin string      `json:"organizerPin" validate:"required,max=72"`
	Drams        []DramInput `json:"drams" validate:"unique=Order,dive"`
}

type LoginRequest struct {
	OrganizerPin string `json:"organizerPin"`
}

// Nil fields are left unchanged.
type UpdateSetupRequest struct {
	Title        *string      `json:"title,omitempty" validate:"omitempty,max=200"`
	Host         *string      `json:"host,omitempty" validate:"omitempty,max=200"`
	Drams        *[]DramInput `json:"drams,omitempty" validate:"omitempty,dive"`
	OrganizerPin *string      `json:"organizerPin,omitempty" validate:"omitempty,max=72"`
}

// order (as a string key) -> rating
type SubmitRatingsRequest struct {
	Participant string                 `json:"participant"`
	Ratings     map[string]RatingInput `json:"ratings"`
}

type ReleasedRequest struct {
	Released bool `json:"released"`
}

type CompletedRequest struct {
	Completed bool `json:"completed"`
}

// Response types

type CreateTastingResponse struct {
	ID       string `json:"id"`
	JoinCode string `json:"joinCode"`
	Token    string `json:"token"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ReleasedResponse struct {
	Released bool `json:"released"`
}

type CompletedResponse struct {
	Completed bool `json:"completed"`
}

// TastingView is a tasting as one caller may see it.
type TastingView struct {
	ID        string `json:"id"`
	JoinCode  string `json:"joinCode"`
	Title     string `json:"title"`
	Host      string `json:"host"`
	Released  bool   `json:"released"`
	Completed bool   `json:"completed"`
	Drams     []Dram `json:"drams"`
}

type TastingSummary struct {
	ID        string    `json:"id"`
	JoinCode  string    `json:"joinCode"`
	Title     string    `json:"title"`
	Host      string    `json:"host"`
	Released  bool      `json:"released"`
	Completed bool      `json:"completed"`
	DramCount int       `json:"dramCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Domain types

type Tasting struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Host             string    `json:"host"`
	OrganizerPinHash string    `json:"-"` // Never expose in JSON
	JoinCode         string    `json:"joinCode"`
	Released         bool      `json:"released"`
	Completed        bool      `json:"completed"`
	Drams            []Dram    `json:"drams"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasDram reports whether order names a dram of the tasting.
func (t Tasting) HasDram(order int) bool {
	for _, d := range t.Drams {
		if d.Order == order {
			return true
		}
	}
	return false
}

// Summary drops dram identities.
func (t Tasting) Summary() TastingSummary {
	return TastingSummary{
		ID:        t.ID,
		JoinCode:  t.JoinCode,
		Title:     t.Title,
		Host:      t.Host,
		Released:  t.Released,
		Completed: t.Completed,
		DramCount: len(t.Drams),
		CreatedAt: t.CreatedAt,
	}
}

type Dram struct {
	Order     int    `json:"order"`
	Name      string `json:"name"`
	BroughtBy string `json:"broughtBy"`
}

type Rating struct {
	Points int      `json:"points"`
	Notes  string   `json:"notes"`
	Aromas []string `json:"aromas"`
}

// Leaderboard types

type LeaderboardRow struct {
	Order     int      `json:"order"`
	Name      string   `json:"name"`
	BroughtBy string   `json:"broughtBy"`
	AvgRank   *float64 `json:"avgRank"` // nil until someone rates the dram
	Count     int      `json:"count"`
}

type Leaderboard struct {
	Released bool             `json:"released"`
	Rows     []LeaderboardRow `json:"rows"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
