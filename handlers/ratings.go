// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/blind-dram/middleware"
	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/tasting"
)

type RatingHandler struct {
	svc *tasting.Service
}

func NewRatingHandler(svc *tasting.Service) *RatingHandler {
	return &RatingHandler{svc: svc}
}

// SubmitRatings handles POST /api/tastings/:id/ratings
// Only the orders present in the body are written; earlier ratings for other
// orders are kept.
func (h *RatingHandler) SubmitRatings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.SubmitRatingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		if errors.Is(err, models.ErrNonNumericPoints) {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	participant := req.Participant
	if participant == "" {
		participant = middleware.Participant(r)
	}

	if err := h.svc.SubmitRatings(r.Context(), id, participant, req.Ratings); err != nil {
		writeError(w, err, "submit ratings")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// GetMyRatings handles GET /api/tastings/:id/ratings/:participant
// Callers read their own ratings (X-Participant must match the path); the
// organizer may read anyone's.
func (h *RatingHandler) GetMyRatings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	participant := r.PathValue("participant")

	if middleware.Participant(r) != participant &&
		h.svc.ResolveCallerRole(callerOf(r), id) != models.RoleOrganizer {
		middleware.ErrorResponse(w, http.StatusForbidden, "Can only read your own ratings")
		return
	}

	ratings, err := h.svc.ParticipantRatings(r.Context(), id, participant)
	if err != nil {
		writeError(w, err, "get ratings")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ratings)
}
