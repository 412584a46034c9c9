// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/tasting"
)

type record struct {
	tasting models.Tasting
	ratings models.RatingStore
}

// Store keeps tastings in memory. The zero value is not usable; call New.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]*record
	byCode map[string]string // join code -> tasting id
	now    func() time.Time
}

var _ tasting.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		byID:   make(map[string]*record),
		byCode: make(map[string]string),
		now:    time.Now,
	}
}

func cloneTasting(t models.Tasting) models.Tasting {
	if t.Drams != nil {
		t.Drams = append([]models.Dram(nil), t.Drams...)
	}
	return t
}

func (s *Store) Create(ctx context.Context, t models.Tasting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.JoinCode != "" {
		if _, taken := s.byCode[t.JoinCode]; taken {
			return tasting.ErrJoinCodeTaken
		}
		s.byCode[t.JoinCode] = t.ID
	}
	s.byID[t.ID] = &record{tasting: cloneTasting(t), ratings: make(models.RatingStore)}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (models.Tasting, error) {
	if err := ctx.Err(); err != nil {
		return models.Tasting{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return models.Tasting{}, tasting.ErrNotFound
	}
	return cloneTasting(rec.tasting), nil
}

func (s *Store) GetByJoinCode(ctx context.Context, code string) (models.Tasting, error) {
	if err := ctx.Err(); err != nil {
		return models.Tasting{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return models.Tasting{}, tasting.ErrNotFound
	}
	return cloneTasting(s.byID[id].tasting), nil
}

func (s *Store) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byCode[code]
	return ok, nil
}

func (s *Store) AssignJoinCode(ctx context.Context, id, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return "", tasting.ErrNotFound
	}
	if rec.tasting.JoinCode != "" {
		return rec.tasting.JoinCode, nil
	}
	if _, taken := s.byCode[code]; taken {
		return "", tasting.ErrJoinCodeTaken
	}
	rec.tasting.JoinCode = code
	rec.tasting.UpdatedAt = s.now()
	s.byCode[code] = id
	return code, nil
}

// mutate runs fn on the stored tasting under the write lock.
func (s *Store) mutate(ctx context.Context, id string, frozenCheck bool, fn func(rec *record)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return tasting.ErrNotFound
	}
	if frozenCheck && rec.tasting.Completed {
		return tasting.ErrFrozen
	}
	fn(rec)
	rec.tasting.UpdatedAt = s.now()
	return nil
}

func (s *Store) UpdateSetup(ctx context.Context, id string, change tasting.SetupChange) error {
	return s.mutate(ctx, id, true, func(rec *record) {
		if change.Title != nil {
			rec.tasting.Title = *change.Title
		}
		if change.Host != nil {
			rec.tasting.Host = *change.Host
		}
		if change.Drams != nil {
			rec.tasting.Drams = append([]models.Dram(nil), (*change.Drams)...)
		}
		if change.PINHash != nil {
			rec.tasting.OrganizerPinHash = *change.PINHash
		}
	})
}

func (s *Store) SetReleased(ctx context.Context, id string, released bool) error {
	return s.mutate(ctx, id, false, func(rec *record) {
		rec.tasting.Released = released
	})
}

func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	return s.mutate(ctx, id, false, func(rec *record) {
		rec.tasting.Completed = true
	})
}

func (s *Store) MergeRatings(ctx context.Context, id, participant string, ratings models.ParticipantRatings) error {
	return s.mutate(ctx, id, true, func(rec *record) {
		rec.ratings.Merge(participant, ratings)
	})
}

func (s *Store) Ratings(ctx context.Context, id string) (models.RatingStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, tasting.ErrNotFound
	}
	return rec.ratings.Clone(), nil
}

func (s *Store) ParticipantRatings(ctx context.Context, id, participant string) (models.ParticipantRatings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, tasting.ErrNotFound
	}
	return rec.ratings[participant].Clone(), nil
}

func (s *Store) List(ctx context.Context, completed bool) ([]models.Tasting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Tasting, 0, len(s.byID))
	for _, rec := range s.byID {
		if rec.tasting.Completed == completed {
			out = append(out, cloneTasting(rec.tasting))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
