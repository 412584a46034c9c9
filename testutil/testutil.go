// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/blind-dram/auth"
	"github.com/danielhkuo/blind-dram/cliparse"
	"github.com/danielhkuo/blind-dram/db"
	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/tasting"
)

// TestPIN is the organizer PIN of tastings made by CreateTestTasting
const TestPIN = "1234"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, "")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: cliparse.DatabaseSQLite,
		JWTSecret:    "test-jwt-secret",
		TokenTTL:     time.Hour,
		PINCost:      bcrypt.MinCost,
		OpTimeout:    5 * time.Second,
		LoginRate:    600,
		LoginBurst:   100,
	}
}

// NewTestService builds a tasting service over the SQL store
func NewTestService(t *testing.T, conn *sql.DB, cfg cliparse.Config) *tasting.Service {
	t.Helper()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, nil)
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}

	return tasting.NewService(db.NewStore(conn, db.TypeSQLite), issuer, tasting.Options{
		PINCost: cfg.PINCost,
		Timeout: cfg.OpTimeout,
	})
}

// CreateTestTasting creates a tasting with three drams (orders 1-3) and
// returns its ID, join code and organizer token
func CreateTestTasting(t *testing.T, svc *tasting.Service) models.CreateTastingResponse {
	t.Helper()

	resp, err := svc.CreateTasting(context.Background(), models.CreateTastingRequest{
		Title:        "Test Tasting",
		Host:         "TestHost",
		OrganizerPin: TestPIN,
		Drams: []models.DramInput{
			{Order: 1, Name: "Talisker 10", BroughtBy: "Alice"},
			{Order: 2, Name: "Oban 14", BroughtBy: "Bob"},
			{Order: 3, Name: "Bowmore 12", BroughtBy: "Cleo"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to create test tasting: %v", err)
	}

	return resp
}

// SubmitTestRatings merges points (dram order -> points) for a participant
func SubmitTestRatings(t *testing.T, svc *tasting.Service, tastingID, participant string, points map[int]float64) {
	t.Helper()

	ratings := make(map[string]models.RatingInput, len(points))
	for order, p := range points {
		ratings[strconv.Itoa(order)] = models.RatingInput{Points: models.Points{Value: p, Set: true}}
	}

	if err := svc.SubmitRatings(context.Background(), tastingID, participant, ratings); err != nil {
		t.Fatalf("Failed to submit test ratings: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// BearerHeader returns headers carrying an organizer token
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
