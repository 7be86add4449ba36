// Package storefront exposes the catalog and the per-profile session, cart and
// booking state over HTTP. Every profile-scoped route carries the profile name
// as its first path segment after the service prefix.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/asad/wellhaven/internal/cart"
	"github.com/asad/wellhaven/internal/logging"
	"github.com/asad/wellhaven/internal/session"
	"github.com/asad/wellhaven/internal/state"
)

const maxBodyBytes = 1 << 20

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, logger logging.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logging.ErrorField(err))
	}
}

// writeError writes an error response in a consistent format.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// decodeJSON reads a JSON request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Request body must be valid JSON")
		return false
	}
	return true
}

// writeStoreError maps errors from the state layer onto HTTP responses.
func writeStoreError(w http.ResponseWriter, logger logging.Logger, err error, op string) {
	var verr *cart.ValidationError

	switch {
	case errors.Is(err, state.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, "InvalidProfile", "Profile names are 1-64 letters, digits, '-' or '_'")
	case errors.Is(err, session.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "InvalidCredentials", "Invalid email or password")
	case errors.Is(err, errLoginRequired):
		writeError(w, http.StatusUnauthorized, "LoginRequired", "Please login to continue.")
	case errors.As(err, &verr) && verr.Field == "userId":
		writeError(w, http.StatusUnauthorized, "LoginRequired", verr.Message)
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "ValidationFailure", verr.Message)
	case errors.Is(err, cart.ErrPackageNotFound):
		writeError(w, http.StatusNotFound, "PackageNotFound", "The health package you're looking for doesn't exist.")
	case errors.Is(err, errBookingNotFound):
		writeError(w, http.StatusNotFound, "BookingNotFound", "No booking with that id belongs to this account.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "RequestAbandoned", "The request ended before it completed")
	default:
		logger.Error("state operation failed",
			logging.String("op", op),
			logging.ErrorField(err),
		)
		writeError(w, http.StatusInternalServerError, "InternalError", "Failed to "+op)
	}
}

var (
	errLoginRequired   = errors.New("login required")
	errBookingNotFound = errors.New("booking not found")
)
