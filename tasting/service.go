// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tasting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/danielhkuo/blind-dram/auth"
	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/ranking"
	"github.com/danielhkuo/blind-dram/visibility"
)

// DefaultTimeout bounds each operation's persistence and hashing work.
const DefaultTimeout = 5 * time.Second

type Options struct {
	PINCost   int           // bcrypt cost; auth.DefaultPINCost when zero
	Timeout   time.Duration // per operation; DefaultTimeout when zero
	JoinCodes auth.JoinCodes
	Now       func() time.Time
}

// Service implements tasting operations over a Repository.
type Service struct {
	repo      Repository
	issuer    *auth.Issuer
	joinCodes auth.JoinCodes
	validate  *validator.Validate
	pinCost   int
	timeout   time.Duration
	now       func() time.Time
}

func NewService(repo Repository, issuer *auth.Issuer, opts Options) *Service {
	s := &Service{
		repo:      repo,
		issuer:    issuer,
		joinCodes: opts.JoinCodes,
		validate:  newValidator(),
		pinCost:   opts.PINCost,
		timeout:   opts.Timeout,
		now:       opts.Now,
	}
	if s.pinCost == 0 {
		s.pinCost = auth.DefaultPINCost
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.joinCodes.Alphabet == "" || s.joinCodes.Length == 0 {
		s.joinCodes = auth.DefaultJoinCodes()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Caller carries what a request presents about its sender.
type Caller struct {
	Credential  string // organizer bearer token, if any
	Participant string // self-declared participant name, if any
}

// ResolveCallerRole decides once per request who the caller is for the
// given tasting. A token that fails to verify silently downgrades.
func (s *Service) ResolveCallerRole(c Caller, tastingID string) models.Role {
	if c.Credential != "" && s.issuer.Verify(c.Credential, tastingID) {
		return models.RoleOrganizer
	}
	if strings.TrimSpace(c.Participant) != "" {
		return models.RoleParticipant
	}
	return models.RoleAnonymous
}

// CreateTasting stores a new tasting and returns its join code and an
// organizer token.
func (s *Service) CreateTasting(ctx context.Context, req models.CreateTastingRequest) (models.CreateTastingResponse, error) {
	if err := s.validateStruct(req); err != nil {
		return models.CreateTastingResponse{}, err
	}
	if err := checkPIN(req.OrganizerPin); err != nil {
		return models.CreateTastingResponse{}, err
	}
	drams, err := normalizeDrams(req.Drams)
	if err != nil {
		return models.CreateTastingResponse{}, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	hash, err := auth.HashPIN(ctx, req.OrganizerPin, s.pinCost)
	if err != nil {
		return models.CreateTastingResponse{}, transient(fmt.Errorf("hash pin: %w", err))
	}

	now := s.now()
	t := models.Tasting{
		ID:               uuid.NewString(),
		Title:            titleOrDefault(req.Title),
		Host:             strings.TrimSpace(req.Host),
		OrganizerPinHash: hash,
		Drams:            drams,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Another tasting can claim the same code between the existence check
	// and the insert; draw again in that case.
	for {
		t.JoinCode, err = s.joinCodes.Unique(ctx, s.repo.JoinCodeExists)
		if err != nil {
			return models.CreateTastingResponse{}, transient(err)
		}
		err = s.repo.Create(ctx, t)
		if !errors.Is(err, ErrJoinCodeTaken) {
			break
		}
	}
	if err != nil {
		return models.CreateTastingResponse{}, transient(fmt.Errorf("create tasting: %w", err))
	}

	token, err := s.issuer.Issue(t.ID)
	if err != nil {
		return models.CreateTastingResponse{}, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("tasting created", "tasting_id", t.ID, "join_code", t.JoinCode, "drams", len(drams))

	return models.CreateTastingResponse{ID: t.ID, JoinCode: t.JoinCode, Token: token}, nil
}

// Login exchanges the organizer PIN for a token scoped to the tasting.
func (s *Service) Login(ctx context.Context, tastingID, pin string) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.repo.Get(ctx, tastingID)
	if err != nil {
		return "", transient(err)
	}
	if pin == "" {
		return "", ErrInvalidCredential
	}
	if err := auth.ComparePIN(ctx, t.OrganizerPinHash, pin); err != nil {
		if errors.Is(err, auth.ErrInvalidPIN) {
			slog.Warn("organizer login failed", "tasting_id", tastingID)
			return "", ErrInvalidCredential
		}
		return "", transient(err)
	}

	token, err := s.issuer.Issue(t.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// GetTasting returns the tasting as role may see it. A tasting stored
// without a join code gets one assigned on first read.
func (s *Service) GetTasting(ctx context.Context, tastingID string, role models.Role) (models.TastingView, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.repo.Get(ctx, tastingID)
	if err != nil {
		return models.TastingView{}, transient(err)
	}

	for t.JoinCode == "" {
		code, err := s.joinCodes.Unique(ctx, s.repo.JoinCodeExists)
		if err != nil {
			return models.TastingView{}, transient(err)
		}
		t.JoinCode, err = s.repo.AssignJoinCode(ctx, t.ID, code)
		if errors.Is(err, ErrJoinCodeTaken) {
			continue
		}
		if err != nil {
			return models.TastingView{}, transient(err)
		}
		slog.Info("join code backfilled", "tasting_id", t.ID, "join_code", t.JoinCode)
	}

	return visibility.Tasting(t, role), nil
}

// GetTastingByCode looks a tasting up by join code. Codes are matched
// case-insensitively.
func (s *Service) GetTastingByCode(ctx context.Context, code string, role models.Role) (models.TastingView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.TastingView{}, ErrNotFound
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.repo.GetByJoinCode(ctx, code)
	if err != nil {
		return models.TastingView{}, transient(err)
	}
	return visibility.Tasting(t, role), nil
}

// SubmitRatings merges a participant's ratings into the tasting. Keys of
// ratings are dram orders; orders not included keep their earlier rating.
func (s *Service) SubmitRatings(ctx context.Context, tastingID, participant string, ratings map[string]models.RatingInput) error {
	if strings.TrimSpace(participant) == "" {
		return invalid("participant", "is required")
	}
	if ratings == nil {
		return invalid("ratings", "must be an object keyed by dram order")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.repo.Get(ctx, tastingID)
	if err != nil {
		return transient(err)
	}
	if t.Completed {
		return ErrFrozen
	}

	parsed := make(models.ParticipantRatings, len(ratings))
	for key, in := range ratings {
		order, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return invalid("ratings", "key %q is not a dram order", key)
		}
		if !t.HasDram(order) {
			return invalid("ratings", "no dram with order %d", order)
		}
		parsed[order] = in.Normalize()
	}

	if err := s.repo.MergeRatings(ctx, t.ID, participant, parsed); err != nil {
		return transient(err)
	}

	slog.Debug("ratings merged", "tasting_id", t.ID, "participant", participant, "orders", len(parsed))
	return nil
}

// ParticipantRatings returns what one participant has rated so far.
func (s *Service) ParticipantRatings(ctx context.Context, tastingID, participant string) (models.ParticipantRatings, error) {
	if strings.TrimSpace(participant) == "" {
		return nil, invalid("participant", "is required")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.repo.Get(ctx, tastingID); err != nil {
		return nil, transient(err)
	}
	ratings, err := s.repo.ParticipantRatings(ctx, tastingID, participant)
	if err != nil {
		return nil, transient(err)
	}
	return ratings, nil
}

// Leaderboard aggregates the tasting's ratings into ranked rows filtered
// for role.
func (s *Service) Leaderboard(ctx context.Context, tastingID string, role models.Role) (models.Leaderboard, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.repo.Get(ctx, tastingID)
	if err != nil {
		return models.Leaderboard{}, transient(err)
	}
	store, err := s.repo.Ratings(ctx, tastingID)
	if err != nil {
		return models.Leaderboard{}, transient(err)
	}

	rows := ranking.Aggregate(t.Drams, store)
	return models.Leaderboard{
		Released: t.Released,
		Rows:     visibility.Rows(rows, role, t.Released),
	}, nil
}

// authorize loads the tasting after checking that credential is an
// organizer token for it.
func (s *Service) authorize(ctx context.Context, tastingID, credential string) (models.Tasting, error) {
	if !s.issuer.Verify(credential, tastingID) {
		return models.Tasting{}, ErrInvalidCredential
	}
	t, err := s.repo.Get(ctx, tastingID)
	if err != nil {
		return models.Tasting{}, transient(err)
	}
	return t, nil
}

// UpdateSetup changes title, host, drams or PIN. Tokens issued before a PIN
// change stay valid until they expire.
func (s *Service) UpdateSetup(ctx context.Context, tastingID, credential string, req models.UpdateSetupRequest) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.authorize(ctx, tastingID, credential)
	if err != nil {
		return err
	}
	if t.Completed {
		return ErrFrozen
	}
	if err := s.validateStruct(req); err != nil {
		return err
	}

	var change SetupChange
	if req.Title != nil {
		title := titleOrDefault(*req.Title)
		change.Title = &title
	}
	if req.Host != nil {
		host := strings.TrimSpace(*req.Host)
		change.Host = &host
	}
	if req.Drams != nil {
		drams, err := normalizeDrams(*req.Drams)
		if err != nil {
			return err
		}
		change.Drams = &drams
	}
	if req.OrganizerPin != nil {
		if err := checkPIN(*req.OrganizerPin); err != nil {
			return err
		}
		hash, err := auth.HashPIN(ctx, *req.OrganizerPin, s.pinCost)
		if err != nil {
			return transient(fmt.Errorf("hash pin: %w", err))
		}
		change.PINHash = &hash
	}

	if err := s.repo.UpdateSetup(ctx, tastingID, change); err != nil {
		return transient(err)
	}

	slog.Info("tasting setup updated", "tasting_id", tastingID,
		"drams_changed", change.Drams != nil, "pin_changed", change.PINHash != nil)
	return nil
}

// ChangePIN replaces the organizer PIN.
func (s *Service) ChangePIN(ctx context.Context, tastingID, credential, pin string) error {
	return s.UpdateSetup(ctx, tastingID, credential, models.UpdateSetupRequest{OrganizerPin: &pin})
}

// SetReleased reveals or hides dram identities. It may be toggled any
// number of times, including after completion.
func (s *Service) SetReleased(ctx context.Context, tastingID, credential string, released bool) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.authorize(ctx, tastingID, credential); err != nil {
		return false, err
	}
	if err := s.repo.SetReleased(ctx, tastingID, released); err != nil {
		return false, transient(err)
	}

	slog.Info("tasting released flag set", "tasting_id", tastingID, "released", released)
	return released, nil
}

// Complete freezes the tasting. Completion is one-way: asking to undo it
// returns ErrFrozen, and completing twice is a no-op.
func (s *Service) Complete(ctx context.Context, tastingID, credential string, completed bool) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	t, err := s.authorize(ctx, tastingID, credential)
	if err != nil {
		return false, err
	}

	switch {
	case !completed && t.Completed:
		return true, ErrFrozen
	case !completed:
		return false, nil
	case t.Completed:
		return true, nil
	}

	if err := s.repo.MarkCompleted(ctx, tastingID); err != nil {
		return false, transient(err)
	}

	slog.Info("tasting completed", "tasting_id", tastingID)
	return true, nil
}

// ListTastings returns active or completed tastings without dram identities.
func (s *Service) ListTastings(ctx context.Context, completed bool) ([]models.TastingSummary, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tastings, err := s.repo.List(ctx, completed)
	if err != nil {
		return nil, transient(err)
	}
	out := make([]models.TastingSummary, len(tastings))
	for i, t := range tastings {
		out[i] = t.Summary()
	}
	return out, nil
}
