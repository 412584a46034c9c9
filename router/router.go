// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/blind-dram/cliparse"
	"github.com/danielhkuo/blind-dram/handlers"
	"github.com/danielhkuo/blind-dram/middleware"
	"github.com/danielhkuo/blind-dram/tasting"
)

func NewRouter(svc *tasting.Service, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	tastingHandler := handlers.NewTastingHandler(svc)
	ratingHandler := handlers.NewRatingHandler(svc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	loginLimiter.TrustProxy = cfg.TrustProxy

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Tastings
	mux.HandleFunc("POST /api/tastings", middleware.WithLogging(tastingHandler.CreateTasting))
	mux.HandleFunc("GET /api/tastings", middleware.WithLogging(tastingHandler.ListActive))
	mux.HandleFunc("GET /api/tastings/completed", middleware.WithLogging(tastingHandler.ListCompleted))
	mux.HandleFunc("GET /api/join/{code}", middleware.WithLogging(tastingHandler.GetByJoinCode))
	mux.HandleFunc("GET /api/tastings/{id}", middleware.WithLogging(tastingHandler.GetTasting))

	// Organizer operations (Authorization: Bearer <token>)
	mux.HandleFunc("POST /api/tastings/{id}/login", middleware.WithLogging(loginLimiter.Limit(tastingHandler.Login)))
	mux.HandleFunc("PUT /api/tastings/{id}", middleware.WithLogging(tastingHandler.UpdateSetup))
	mux.HandleFunc("POST /api/tastings/{id}/released", middleware.WithLogging(tastingHandler.SetReleased))
	mux.HandleFunc("POST /api/tastings/{id}/completed", middleware.WithLogging(tastingHandler.Complete))

	// Ratings (participants)
	mux.HandleFunc("POST /api/tastings/{id}/ratings", middleware.WithLogging(ratingHandler.SubmitRatings))
	mux.HandleFunc("GET /api/tastings/{id}/ratings/{participant}", middleware.WithLogging(ratingHandler.GetMyRatings))

	// Results
	mux.HandleFunc("GET /api/tastings/{id}/leaderboard", middleware.WithLogging(leaderboardHandler.GetLeaderboard))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blind-dram API v1"))
	})

	return middleware.Metrics(mux)
}
