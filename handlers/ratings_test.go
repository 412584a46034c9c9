// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/testutil"
)

func points(v float64) models.Points {
	return models.Points{Value: v, Set: true}
}

func TestSubmitRatings(t *testing.T) {
	svc := setupService(t)
	h := NewRatingHandler(svc)
	created := testutil.CreateTestTasting(t, svc)

	tests := []struct {
		name           string
		body           interface{}
		headers        map[string]string
		expectedStatus int
	}{
		{
			name: "valid ratings",
			body: models.SubmitRatingsRequest{
				Participant: "Alice",
				Ratings: map[string]models.RatingInput{
					"1": {Points: points(80), Notes: "peaty", Aromas: []string{"smoke", "sea salt"}},
					"2": {Points: points(60)},
				},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "participant from header",
			body:           models.SubmitRatingsRequest{Ratings: map[string]models.RatingInput{"3": {Points: points(40)}}},
			headers:        map[string]string{"X-Participant": "Bob"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty ratings",
			body:           models.SubmitRatingsRequest{Participant: "Alice", Ratings: map[string]models.RatingInput{}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing participant",
			body:           models.SubmitRatingsRequest{Ratings: map[string]models.RatingInput{"1": {Points: points(10)}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing ratings",
			body:           models.SubmitRatingsRequest{Participant: "Alice"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown dram order",
			body: models.SubmitRatingsRequest{
				Participant: "Alice",
				Ratings:     map[string]models.RatingInput{"9": {Points: points(10)}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "non-integer key",
			body: models.SubmitRatingsRequest{
				Participant: "Alice",
				Ratings:     map[string]models.RatingInput{"first": {Points: points(10)}},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/tastings/"+created.ID+"/ratings", tt.body, tt.headers)
			req.SetPathValue("id", created.ID)
			w := httptest.NewRecorder()
			h.SubmitRatings(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestSubmitRatings_NonNumericPoints(t *testing.T) {
	svc := setupService(t)
	h := NewRatingHandler(svc)
	created := testutil.CreateTestTasting(t, svc)

	body := `{"participant":"Alice","ratings":{"1":{"points":"lots"}}}`
	req := httptest.NewRequest("POST", "/api/tastings/"+created.ID+"/ratings", bytes.NewReader([]byte(body)))
	req.SetPathValue("id", created.ID)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.SubmitRatings(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Error == "Invalid JSON" {
		t.Errorf("Expected a points error, got %q", resp.Error)
	}
}

func TestSubmitRatings_ClampsAndDefaults(t *testing.T) {
	svc := setupService(t)
	h := NewRatingHandler(svc)
	created := testutil.CreateTestTasting(t, svc)

	body := `{"participant":"Alice","ratings":{"1":{"points":150},"2":{"points":"-3"},"3":{"points":null,"aromas":["oak","oak",""]}}}`
	req := httptest.NewRequest("POST", "/api/tastings/"+created.ID+"/ratings", bytes.NewReader([]byte(body)))
	req.SetPathValue("id", created.ID)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.SubmitRatings(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	mine, err := svc.ParticipantRatings(context.Background(), created.ID, "Alice")
	if err != nil {
		t.Fatalf("ParticipantRatings failed: %v", err)
	}

	expected := map[int]int{1: models.MaxPoints, 2: models.MinPoints, 3: models.DefaultPoints}
	for order, want := range expected {
		if mine[order].Points != want {
			t.Errorf("Order %d: expected %d points, got %d", order, want, mine[order].Points)
		}
	}
	if len(mine[3].Aromas) != 1 || mine[3].Aromas[0] != "oak" {
		t.Errorf("Expected aromas [oak], got %v", mine[3].Aromas)
	}
}

func TestSubmitRatings_PartialMerge(t *testing.T) {
	svc := setupService(t)
	h := NewRatingHandler(svc)
	created := testutil.CreateTestTasting(t, svc)

	testutil.SubmitTestRatings(t, svc, created.ID, "Alice", map[int]float64{1: 70, 2: 30})

	req := testutil.MakeRequest("POST", "/api/tastings/"+created.ID+"/ratings", models.SubmitRatingsRequest{
		Participant: "Alice",
		Ratings:     map[string]models.RatingInput{"2": {Points: points(90)}},
	}, nil)
	req.SetPathValue("id", created.ID)
	w := httptest.NewRecorder()
	h.SubmitRatings(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	req = httptest.NewRequest("GET", "/api/tastings/"+created.ID+"/ratings/Alice", nil)
	req.SetPathValue("id", created.ID)
	req.SetPathValue("participant", "Alice")
	req.Header.Set("X-Participant", "Alice")
	w = httptest.NewRecorder()
	h.GetMyRatings(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var mine models.ParticipantRatings
	testutil.AssertJSON(t, w, &mine)

	if len(mine) != 2 {
		t.Fatalf("Expected 2 ratings, got %d", len(mine))
	}
	if mine[1].Points != 70 {
		t.Errorf("Expected order 1 kept at 70, got %d", mine[1].Points)
	}
	if mine[2].Points != 90 {
		t.Errorf("Expected order 2 updated to 90, got %d", mine[2].Points)
	}
}

func TestSubmitRatings_Completed(t *testing.T) {
	svc := setupService(t)
	h := NewRatingHandler(svc)
	created := testutil.CreateTestTasting(t, svc)

	if _, err := svc.Complete(context.Background(), created.ID, created.Token, true); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	req := testutil.MakeRequest("POST", "/api/tastings/"+created.ID+"/ratings", models.SubmitRatingsRequest{
		Participant: "Alice",
		Ratings:     map[string]models.RatingInput{"1": {Points: points(90)}},
	}, nil)
	req.SetPathValue("id", created.ID)
	w := httptest.NewRecorder()
	h.SubmitRatings(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSubmitRatings_NotFound(t *testing.T) {
	h := NewRatingHandler(setupService(t))

	req := testutil.MakeRequest("POST", "/api/tastings/missing/ratings", models.SubmitRatingsRequest{
		Participant: "Alice",
		Ratings:     map[string]models.RatingInput{},
	}, nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.SubmitRatings(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestGetMyRatings(t *testing.T) {
	svc := setupService(t)
	h := NewRatingHandler(svc)
	created := testutil.CreateTestTasting(t, svc)

	testutil.SubmitTestRatings(t, svc, created.ID, "Alice", map[int]float64{3: 55})

	tests := []struct {
		name           string
		participant    string
		headers        map[string]string
		expectedCount  int
		expectedStatus int
	}{
		{"rated participant", "Alice", map[string]string{"X-Participant": "Alice"}, 1, http.StatusOK},
		{"names are case-sensitive", "alice", map[string]string{"X-Participant": "alice"}, 0, http.StatusOK},
		{"never rated", "Zed", map[string]string{"X-Participant": "Zed"}, 0, http.StatusOK},
		{"organizer reads anyone", "Alice", testutil.BearerHeader(created.Token), 1, http.StatusOK},
		{"other participant", "Alice", map[string]string{"X-Participant": "Bob"}, 0, http.StatusForbidden},
		{"header case differs", "Alice", map[string]string{"X-Participant": "alice"}, 0, http.StatusForbidden},
		{"anonymous", "Alice", nil, 0, http.StatusForbidden},
		{"bad token", "Alice", testutil.BearerHeader("garbage"), 0, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/api/tastings/"+created.ID+"/ratings/"+tt.participant, nil, tt.headers)
			req.SetPathValue("id", created.ID)
			req.SetPathValue("participant", tt.participant)
			w := httptest.NewRecorder()
			h.GetMyRatings(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var mine models.ParticipantRatings
			testutil.AssertJSON(t, w, &mine)
			if len(mine) != tt.expectedCount {
				t.Errorf("Expected %d ratings, got %d", tt.expectedCount, len(mine))
			}
		})
	}
}
