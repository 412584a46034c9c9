// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tasting_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/blind-dram/auth"
	"github.com/danielhkuo/blind-dram/memstore"
	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/tasting"
)

type fixture struct {
	svc    *tasting.Service
	store  *memstore.Store
	issuer *auth.Issuer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour, nil)
	require.NoError(t, err)
	store := memstore.New()
	svc := tasting.NewService(store, issuer, tasting.Options{PINCost: bcrypt.MinCost})
	return fixture{svc: svc, store: store, issuer: issuer}
}

func (f fixture) create(t *testing.T) models.CreateTastingResponse {
	t.Helper()
	resp, err := f.svc.CreateTasting(context.Background(), models.CreateTastingRequest{
		Title:        "Speyside",
		Host:         "Ana",
		OrganizerPin: "1234",
		Drams: []models.DramInput{
			{Order: 3, Name: "Macallan 12", BroughtBy: "Cy"},
			{Order: 1, Name: "Glenfarclas 15", BroughtBy: "Ana"},
			{Order: 2, Name: "Aberlour A'bunadh", BroughtBy: "Ben"},
		},
	})
	require.NoError(t, err)
	return resp
}

func pts(v float64) models.Points { return models.Points{Value: v, Set: true} }

func TestCreateTasting(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)

	assert.NotEmpty(t, resp.ID)
	assert.Len(t, resp.JoinCode, auth.JoinCodeLength)
	assert.True(t, f.issuer.Verify(resp.Token, resp.ID))

	stored, err := f.store.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "1234", stored.OrganizerPinHash)
	assert.False(t, stored.Released)
	assert.False(t, stored.Completed)

	// Drams are kept sorted by order
	orders := []int{stored.Drams[0].Order, stored.Drams[1].Order, stored.Drams[2].Order}
	assert.Equal(t, []int{1, 2, 3}, orders)
}

func TestCreateTasting_Defaults(t *testing.T) {
	f := newFixture(t)
	resp, err := f.svc.CreateTasting(context.Background(), models.CreateTastingRequest{OrganizerPin: "0000"})
	require.NoError(t, err)

	view, err := f.svc.GetTasting(context.Background(), resp.ID, models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTitle, view.Title)
	assert.Empty(t, view.Drams)
}

func TestCreateTasting_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   models.CreateTastingRequest
		field string
	}{
		{"missing pin", models.CreateTastingRequest{Title: "x"}, "organizerPin"},
		{"pin over 72 bytes", models.CreateTastingRequest{OrganizerPin: strings.Repeat("é", 40)}, "organizerPin"},
		{"zero order", models.CreateTastingRequest{OrganizerPin: "1", Drams: []models.DramInput{{Order: 0}}}, ""},
		{"duplicate orders", models.CreateTastingRequest{OrganizerPin: "1", Drams: []models.DramInput{{Order: 1}, {Order: 1}}}, "drams"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTasting(ctx, tt.req)
			require.ErrorIs(t, err, tasting.ErrValidation)
			var verr *tasting.ValidationError
			require.True(t, errors.As(err, &verr))
			if tt.field != "" {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestCreateTasting_MultiBytePIN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 36 two-byte runes sit exactly at bcrypt's limit
	pin := strings.Repeat("é", 36)
	resp, err := f.svc.CreateTasting(ctx, models.CreateTastingRequest{OrganizerPin: pin})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, resp.ID, pin)
	require.NoError(t, err)

	err = f.svc.ChangePIN(ctx, resp.ID, resp.Token, pin+"é")
	require.ErrorIs(t, err, tasting.ErrValidation)
	var verr *tasting.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "organizerPin", verr.Field)

	// The old PIN still works
	_, err = f.svc.Login(ctx, resp.ID, pin)
	assert.NoError(t, err)

	_, err = f.svc.Login(ctx, resp.ID, pin+"é")
	assert.ErrorIs(t, err, tasting.ErrInvalidCredential)
}

func TestCreateTasting_JoinCodesUnique(t *testing.T) {
	issuer, err := auth.NewIssuer("s", time.Hour, nil)
	require.NoError(t, err)
	store := memstore.New()
	// Nine possible codes: every tasting must still get a distinct one.
	svc := tasting.NewService(store, issuer, tasting.Options{
		PINCost:   bcrypt.MinCost,
		JoinCodes: auth.JoinCodes{Alphabet: "ABC", Length: 2},
	})

	seen := map[string]bool{}
	for i := 0; i < 9; i++ {
		resp, err := svc.CreateTasting(context.Background(), models.CreateTastingRequest{OrganizerPin: "1"})
		require.NoError(t, err)
		assert.False(t, seen[resp.JoinCode], "join code %s reused", resp.JoinCode)
		seen[resp.JoinCode] = true
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	token, err := f.svc.Login(ctx, resp.ID, "1234")
	require.NoError(t, err)
	assert.True(t, f.issuer.Verify(token, resp.ID))

	_, err = f.svc.Login(ctx, resp.ID, "9999")
	assert.ErrorIs(t, err, tasting.ErrInvalidCredential)

	_, err = f.svc.Login(ctx, resp.ID, "")
	assert.ErrorIs(t, err, tasting.ErrInvalidCredential)

	_, err = f.svc.Login(ctx, "no-such-tasting", "1234")
	assert.ErrorIs(t, err, tasting.ErrNotFound)
}

func TestResolveCallerRole(t *testing.T) {
	f := newFixture(t)
	x := f.create(t)
	y := f.create(t)

	tests := []struct {
		name   string
		caller tasting.Caller
		id     string
		want   models.Role
	}{
		{"organizer of X", tasting.Caller{Credential: x.Token}, x.ID, models.RoleOrganizer},
		{"X token on Y", tasting.Caller{Credential: x.Token}, y.ID, models.RoleAnonymous},
		{"X token on Y with name", tasting.Caller{Credential: x.Token, Participant: "al"}, y.ID, models.RoleParticipant},
		{"garbage token", tasting.Caller{Credential: "nope"}, x.ID, models.RoleAnonymous},
		{"participant", tasting.Caller{Participant: "al"}, x.ID, models.RoleParticipant},
		{"blank name", tasting.Caller{Participant: "  "}, x.ID, models.RoleAnonymous},
		{"nobody", tasting.Caller{}, x.ID, models.RoleAnonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.svc.ResolveCallerRole(tt.caller, tt.id))
		})
	}
}

func TestGetTasting_Visibility(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	for _, role := range []models.Role{models.RoleAnonymous, models.RoleParticipant} {
		view, err := f.svc.GetTasting(ctx, resp.ID, role)
		require.NoError(t, err)
		require.Len(t, view.Drams, 3)
		for _, d := range view.Drams {
			assert.Empty(t, d.Name, "role %s", role)
			assert.Empty(t, d.BroughtBy, "role %s", role)
			assert.NotZero(t, d.Order)
		}
	}

	view, err := f.svc.GetTasting(ctx, resp.ID, models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, "Glenfarclas 15", view.Drams[0].Name)

	_, err = f.svc.SetReleased(ctx, resp.ID, resp.Token, true)
	require.NoError(t, err)

	view, err = f.svc.GetTasting(ctx, resp.ID, models.RoleAnonymous)
	require.NoError(t, err)
	assert.True(t, view.Released)
	assert.Equal(t, "Glenfarclas 15", view.Drams[0].Name)
	assert.Equal(t, "Ana", view.Drams[0].BroughtBy)

	_, err = f.svc.GetTasting(ctx, "missing", models.RoleOrganizer)
	assert.ErrorIs(t, err, tasting.ErrNotFound)
}

func TestGetTasting_BackfillsJoinCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Create(ctx, models.Tasting{ID: "legacy", Title: "Old"}))

	view, err := f.svc.GetTasting(ctx, "legacy", models.RoleAnonymous)
	require.NoError(t, err)
	require.Len(t, view.JoinCode, auth.JoinCodeLength)

	again, err := f.svc.GetTasting(ctx, "legacy", models.RoleAnonymous)
	require.NoError(t, err)
	assert.Equal(t, view.JoinCode, again.JoinCode)
}

func TestGetTastingByCode(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	view, err := f.svc.GetTastingByCode(ctx, resp.JoinCode, models.RoleParticipant)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, view.ID)
	assert.Empty(t, view.Drams[0].Name)

	lower := []byte(resp.JoinCode)
	for i, c := range lower {
		if c >= 'A' && c <= 'Z' {
			lower[i] = c + 'a' - 'A'
		}
	}
	view, err = f.svc.GetTastingByCode(ctx, string(lower), models.RoleParticipant)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, view.ID)

	_, err = f.svc.GetTastingByCode(ctx, "", models.RoleAnonymous)
	assert.ErrorIs(t, err, tasting.ErrNotFound)
}

func TestSubmitRatings_ClampAndDefaults(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	err := f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{
		"1": {Points: pts(150)},
		"2": {Points: pts(-5)},
		"3": {},
	})
	require.NoError(t, err)

	mine, err := f.svc.ParticipantRatings(ctx, resp.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, mine[1].Points)
	assert.Equal(t, 0, mine[2].Points)
	assert.Equal(t, models.DefaultPoints, mine[3].Points)
}

func TestSubmitRatings_FromJSON(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	var req models.SubmitRatingsRequest
	body := `{"participant":"bo","ratings":{"1":{"points":"42.4","aromas":["peat","smoke","peat"]},"2":{"points":null}}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, req.Participant, req.Ratings))

	mine, err := f.svc.ParticipantRatings(ctx, resp.ID, "bo")
	require.NoError(t, err)
	assert.Equal(t, 42, mine[1].Points)
	assert.Equal(t, []string{"peat", "smoke"}, mine[1].Aromas)
	assert.Equal(t, 50, mine[2].Points)
}

func TestSubmitRatings_PartialMerge(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{"1": {Points: pts(80)}}))
	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{"2": {Points: pts(60)}}))

	mine, err := f.svc.ParticipantRatings(ctx, resp.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 80, mine[1].Points)
	assert.Equal(t, 60, mine[2].Points)

	// Names are case-sensitive
	other, err := f.svc.ParticipantRatings(ctx, resp.ID, "Alice")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSubmitRatings_Errors(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		id          string
		participant string
		ratings     map[string]models.RatingInput
		want        error
	}{
		{"unknown tasting", "missing", "al", map[string]models.RatingInput{}, tasting.ErrNotFound},
		{"no participant", resp.ID, "", map[string]models.RatingInput{}, tasting.ErrValidation},
		{"nil ratings", resp.ID, "al", nil, tasting.ErrValidation},
		{"non-numeric key", resp.ID, "al", map[string]models.RatingInput{"first": {}}, tasting.ErrValidation},
		{"unknown order", resp.ID, "al", map[string]models.RatingInput{"9": {}}, tasting.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.SubmitRatings(ctx, tt.id, tt.participant, tt.ratings)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComplete_Freezes(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{"1": {Points: pts(70)}}))

	done, err := f.svc.Complete(ctx, resp.ID, resp.Token, true)
	require.NoError(t, err)
	assert.True(t, done)

	err = f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{"1": {Points: pts(10)}})
	assert.ErrorIs(t, err, tasting.ErrFrozen)

	title := "Renamed"
	err = f.svc.UpdateSetup(ctx, resp.ID, resp.Token, models.UpdateSetupRequest{Title: &title})
	assert.ErrorIs(t, err, tasting.ErrFrozen)

	_, err = f.svc.Complete(ctx, resp.ID, resp.Token, false)
	assert.ErrorIs(t, err, tasting.ErrFrozen)

	// Completing again is a no-op
	done, err = f.svc.Complete(ctx, resp.ID, resp.Token, true)
	require.NoError(t, err)
	assert.True(t, done)

	// Release still works after completion
	released, err := f.svc.SetReleased(ctx, resp.ID, resp.Token, true)
	require.NoError(t, err)
	assert.True(t, released)

	mine, err := f.svc.ParticipantRatings(ctx, resp.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 70, mine[1].Points)
}

func TestComplete_FalseBeforeCompletion(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)

	done, err := f.svc.Complete(context.Background(), resp.ID, resp.Token, false)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestOrganizerOperations_RequireToken(t *testing.T) {
	f := newFixture(t)
	x := f.create(t)
	y := f.create(t)
	ctx := context.Background()
	title := "T"

	assert.ErrorIs(t, f.svc.UpdateSetup(ctx, y.ID, x.Token, models.UpdateSetupRequest{Title: &title}), tasting.ErrInvalidCredential)
	_, err := f.svc.SetReleased(ctx, y.ID, x.Token, true)
	assert.ErrorIs(t, err, tasting.ErrInvalidCredential)
	_, err = f.svc.Complete(ctx, y.ID, "", true)
	assert.ErrorIs(t, err, tasting.ErrInvalidCredential)
	assert.ErrorIs(t, f.svc.ChangePIN(ctx, y.ID, "garbage", "1"), tasting.ErrInvalidCredential)

	view, err := f.svc.GetTasting(ctx, y.ID, models.RoleOrganizer)
	require.NoError(t, err)
	assert.False(t, view.Released)
}

func TestUpdateSetup(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	title := "  "
	host := " Dee "
	drams := []models.DramInput{{Order: 2, Name: "B"}, {Order: 1, Name: "A"}}
	err := f.svc.UpdateSetup(ctx, resp.ID, resp.Token, models.UpdateSetupRequest{
		Title: &title,
		Host:  &host,
		Drams: &drams,
	})
	require.NoError(t, err)

	view, err := f.svc.GetTasting(ctx, resp.ID, models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTitle, view.Title)
	assert.Equal(t, "Dee", view.Host)
	require.Len(t, view.Drams, 2)
	assert.Equal(t, "A", view.Drams[0].Name)

	dup := []models.DramInput{{Order: 1}, {Order: 1}}
	err = f.svc.UpdateSetup(ctx, resp.ID, resp.Token, models.UpdateSetupRequest{Drams: &dup})
	assert.ErrorIs(t, err, tasting.ErrValidation)
}

func TestChangePIN_KeepsIssuedTokens(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ChangePIN(ctx, resp.ID, resp.Token, "5678"))

	_, err := f.svc.Login(ctx, resp.ID, "1234")
	assert.ErrorIs(t, err, tasting.ErrInvalidCredential)
	_, err = f.svc.Login(ctx, resp.ID, "5678")
	assert.NoError(t, err)

	// Tokens issued under the old PIN stay valid until they expire
	_, err = f.svc.SetReleased(ctx, resp.ID, resp.Token, true)
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.ChangePIN(ctx, resp.ID, resp.Token, ""), tasting.ErrValidation)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	// alice: 1 > 2 > 3; bob: 2 == 1 > 3 (1.5, 1.5, 3)
	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{
		"1": {Points: pts(90)}, "2": {Points: pts(80)}, "3": {Points: pts(10)},
	}))
	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, "bob", map[string]models.RatingInput{
		"1": {Points: pts(70)}, "2": {Points: pts(70)}, "3": {Points: pts(20)},
	}))

	board, err := f.svc.Leaderboard(ctx, resp.ID, models.RoleParticipant)
	require.NoError(t, err)
	assert.False(t, board.Released)
	require.Len(t, board.Rows, 3)

	assert.Equal(t, 1, board.Rows[0].Order)
	require.NotNil(t, board.Rows[0].AvgRank)
	assert.InDelta(t, 1.25, *board.Rows[0].AvgRank, 1e-9)
	assert.Equal(t, 2, board.Rows[0].Count)
	assert.Empty(t, board.Rows[0].Name)

	assert.Equal(t, 2, board.Rows[1].Order)
	assert.InDelta(t, 1.75, *board.Rows[1].AvgRank, 1e-9)
	assert.Equal(t, 3, board.Rows[2].Order)
	assert.InDelta(t, 3.0, *board.Rows[2].AvgRank, 1e-9)

	orga, err := f.svc.Leaderboard(ctx, resp.ID, models.RoleOrganizer)
	require.NoError(t, err)
	assert.Equal(t, "Glenfarclas 15", orga.Rows[0].Name)

	_, err = f.svc.Leaderboard(ctx, "missing", models.RoleOrganizer)
	assert.ErrorIs(t, err, tasting.ErrNotFound)
}

func TestLeaderboard_UnratedLast(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SubmitRatings(ctx, resp.ID, "solo", map[string]models.RatingInput{"3": {Points: pts(5)}}))

	board, err := f.svc.Leaderboard(ctx, resp.ID, models.RoleAnonymous)
	require.NoError(t, err)
	require.Len(t, board.Rows, 3)
	assert.Equal(t, 3, board.Rows[0].Order)
	assert.InDelta(t, 1.0, *board.Rows[0].AvgRank, 1e-9)
	assert.Nil(t, board.Rows[1].AvgRank)
	assert.Nil(t, board.Rows[2].AvgRank)
	assert.Equal(t, 1, board.Rows[1].Order)
	assert.Equal(t, 2, board.Rows[2].Order)
}

func TestListTastings(t *testing.T) {
	f := newFixture(t)
	a := f.create(t)
	b := f.create(t)
	ctx := context.Background()

	_, err := f.svc.Complete(ctx, b.ID, b.Token, true)
	require.NoError(t, err)

	active, err := f.svc.ListTastings(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, 3, active[0].DramCount)

	done, err := f.svc.ListTastings(ctx, true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, b.ID, done[0].ID)
}

func TestSubmitRatings_Concurrent(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprint(i%3 + 1)
			err := f.svc.SubmitRatings(ctx, resp.ID, "alice", map[string]models.RatingInput{key: {Points: pts(float64(i))}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	mine, err := f.svc.ParticipantRatings(ctx, resp.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

type slowRepo struct {
	*memstore.Store
}

func (r slowRepo) Get(ctx context.Context, id string) (models.Tasting, error) {
	<-ctx.Done()
	return models.Tasting{}, ctx.Err()
}

func TestTimeoutIsUnavailable(t *testing.T) {
	issuer, err := auth.NewIssuer("s", time.Hour, nil)
	require.NoError(t, err)
	svc := tasting.NewService(slowRepo{memstore.New()}, issuer, tasting.Options{
		PINCost: bcrypt.MinCost,
		Timeout: 10 * time.Millisecond,
	})

	_, err = svc.Leaderboard(context.Background(), "any", models.RoleAnonymous)
	assert.ErrorIs(t, err, tasting.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
