package handlers

import (
	"errors"
	"net/http"

	"github.com/vaultbin/vaultbin/common/models"
)

// statusForError maps storage errors to HTTP status codes. Anything outside
// the taxonomy is a backing-store failure and surfaces as a 500; retry
// policy belongs to the caller, not this service.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDigestCollision):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
