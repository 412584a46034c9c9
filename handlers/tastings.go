// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/blind-dram/middleware"
	"github.com/danielhkuo/blind-dram/models"
	"github.com/danielhkuo/blind-dram/tasting"
)

type TastingHandler struct {
	svc *tasting.Service
}

func NewTastingHandler(svc *tasting.Service) *TastingHandler {
	return &TastingHandler{svc: svc}
}

func callerOf(r *http.Request) tasting.Caller {
	return tasting.Caller{
		Credential:  middleware.BearerToken(r),
		Participant: middleware.Participant(r),
	}
}

// CreateTasting handles POST /api/tastings
func (h *TastingHandler) CreateTasting(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTastingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.svc.CreateTasting(r.Context(), req)
	if err != nil {
		writeError(w, err, "create tasting")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// ListActive handles GET /api/tastings
func (h *TastingHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListCompleted handles GET /api/tastings/completed
func (h *TastingHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *TastingHandler) list(w http.ResponseWriter, r *http.Request, completed bool) {
	tastings, err := h.svc.ListTastings(r.Context(), completed)
	if err != nil {
		writeError(w, err, "list tastings")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, tastings)
}

// GetTasting handles GET /api/tastings/:id
func (h *TastingHandler) GetTasting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	role := h.svc.ResolveCallerRole(callerOf(r), id)

	view, err := h.svc.GetTasting(r.Context(), id, role)
	if err != nil {
		writeError(w, err, "get tasting")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// GetByJoinCode handles GET /api/join/:code
func (h *TastingHandler) GetByJoinCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	// The role depends on the tasting id, which is only known after the
	// lookup; resolve against the anonymous view first.
	view, err := h.svc.GetTastingByCode(r.Context(), code, models.RoleAnonymous)
	if err != nil {
		writeError(w, err, "get tasting")
		return
	}

	role := h.svc.ResolveCallerRole(callerOf(r), view.ID)
	if role == models.RoleOrganizer {
		view, err = h.svc.GetTasting(r.Context(), view.ID, role)
		if err != nil {
			writeError(w, err, "get tasting")
			return
		}
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// Login handles POST /api/tastings/:id/login
func (h *TastingHandler) Login(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, err := h.svc.Login(r.Context(), id, req.OrganizerPin)
	if err != nil {
		writeError(w, err, "log in")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Token: token})
}

// UpdateSetup handles PUT /api/tastings/:id
func (h *TastingHandler) UpdateSetup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateSetupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.UpdateSetup(r.Context(), id, middleware.BearerToken(r), req); err != nil {
		writeError(w, err, "update tasting")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// SetReleased handles POST /api/tastings/:id/released
func (h *TastingHandler) SetReleased(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.ReleasedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	released, err := h.svc.SetReleased(r.Context(), id, middleware.BearerToken(r), req.Released)
	if err != nil {
		writeError(w, err, "update released flag")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ReleasedResponse{Released: released})
}

// Complete handles POST /api/tastings/:id/completed
func (h *TastingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.CompletedRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	completed, err := h.svc.Complete(r.Context(), id, middleware.BearerToken(r), req.Completed)
	if err != nil {
		writeError(w, err, "complete tasting")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CompletedResponse{Completed: completed})
}
