// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/blind-dram/middleware"
	"github.com/danielhkuo/blind-dram/tasting"
)

// writeError maps service errors to HTTP status codes. Anything unexpected
// is logged and reported as a 500 with a generic message.
func writeError(w http.ResponseWriter, err error, op string) {
	var verr *tasting.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, tasting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Tasting not found")
	case errors.Is(err, tasting.ErrInvalidCredential):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid organizer credential")
	case errors.Is(err, tasting.ErrFrozen):
		middleware.ErrorResponse(w, http.StatusConflict, "Tasting is completed")
	case errors.Is(err, tasting.ErrUnavailable):
		slog.Warn("dependency timed out", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Temporarily unavailable, try again")
	default:
		slog.Error("request failed", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+op)
	}
}
