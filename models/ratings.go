// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNonNumericPoints = errors.New("points must be numeric")

// ParticipantRatings maps dram order to one participant's rating.
type ParticipantRatings map[int]Rating

// RatingStore maps participant name to their ratings. Names are
// case-sensitive and taken as given.
type RatingStore map[string]ParticipantRatings

// Merge writes the given orders for participant and leaves every other
// order the participant already rated untouched.
func (s RatingStore) Merge(participant string, ratings ParticipantRatings) {
	current, ok := s[participant]
	if !ok {
		current = make(ParticipantRatings, len(ratings))
		s[participant] = current
	}
	for order, r := range ratings {
		current[order] = r.Clone()
	}
}

// Clone returns a deep copy.
func (s RatingStore) Clone() RatingStore {
	out := make(RatingStore, len(s))
	for participant, ratings := range s {
		out[participant] = ratings.Clone()
	}
	return out
}

func (p ParticipantRatings) Clone() ParticipantRatings {
	out := make(ParticipantRatings, len(p))
	for order, r := range p {
		out[order] = r.Clone()
	}
	return out
}

func (r Rating) Clone() Rating {
	out := r
	if r.Aromas != nil {
		out.Aromas = append([]string(nil), r.Aromas...)
	}
	return out
}

// ClampPoints bounds v to [MinPoints, MaxPoints] and rounds to the nearest
// whole point. NaN maps to DefaultPoints.
func ClampPoints(v float64) int {
	if math.IsNaN(v) {
		return DefaultPoints
	}
	v = math.Max(MinPoints, math.Min(MaxPoints, v))
	return int(math.Round(v))
}

// NormalizeAromas drops empty tags and duplicates, keeping the first
// occurrence of each.
func NormalizeAromas(aromas []string) []string {
	out := make([]string, 0, len(aromas))
	seen := make(map[string]struct{}, len(aromas))
	for _, a := range aromas {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Points is a submitted score. It accepts JSON numbers and numeric strings;
// null leaves it unset.
type Points struct {
	Value float64
	Set   bool
}

func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Points{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*p = Points{Value: v, Set: true}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrNonNumericPoints, v)
		}
		*p = Points{Value: f, Set: true}
	default:
		return fmt.Errorf("%w: %s", ErrNonNumericPoints, string(data))
	}
	return nil
}

func (p Points) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// RatingInput is one rating as submitted by a participant.
type RatingInput struct {
	Points Points   `json:"points"`
	Notes  string   `json:"notes"`
	Aromas []string `json:"aromas"`
}

// Normalize applies defaults and clamping.
func (in RatingInput) Normalize() Rating {
	points := DefaultPoints
	if in.Points.Set {
		points = ClampPoints(in.Points.Value)
	}
	return Rating{
		Points: points,
		Notes:  in.Notes,
		Aromas: NormalizeAromas(in.Aromas),
	}
}
