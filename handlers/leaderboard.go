// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/blind-dram/middleware"
	"github.com/danielhkuo/blind-dram/tasting"
)

type LeaderboardHandler struct {
	svc *tasting.Service
}

func NewLeaderboardHandler(svc *tasting.Service) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// GetLeaderboard handles GET /api/tastings/:id/leaderboard
// Average ranks are always visible; dram names only once released or to the
// organizer.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	role := h.svc.ResolveCallerRole(callerOf(r), id)

	board, err := h.svc.Leaderboard(r.Context(), id, role)
	if err != nil {
		writeError(w, err, "compute leaderboard")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, board)
}
