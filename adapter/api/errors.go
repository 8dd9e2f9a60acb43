package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/mealslot/internal/delivery/domain"
	sharedDomain "github.com/felixgeelhaar/mealslot/internal/shared/domain"
)

// msgInternal is the only detail a caller sees of a storage failure.
const msgInternal = "Internal server error"

// statusFor maps a classified error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sharedDomain.ErrInvalidInput), errors.Is(err, domain.ErrNoAvailableSlot):
		return http.StatusBadRequest
	case errors.Is(err, sharedDomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sharedDomain.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the message safe to show the caller.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return msgInternal
	}
	return sharedDomain.Message(err)
}

// writeError writes {"message"} for err, logging server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), op+" failed", "error", err)
	}
	writeMessage(w, status, publicMessage(err, status))
}
