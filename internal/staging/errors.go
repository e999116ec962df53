package staging

import (
	"errors"
	"net/http"

	"github.com/asmira/fleetdocs/internal/fleet"
)

// Domain errors for staging operations.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")

	// ErrPendingChanges indicates a close was refused because the session
	// still holds uncommitted changes and force was not set.
	ErrPendingChanges = errors.New("session has uncommitted changes")

	ErrInvalid = errors.New("invalid staging request")
)

// MapHTTPStatus converts staging errors to appropriate HTTP status codes.
// Store errors surfacing through commit or effective reads fall through to
// the fleet mapping.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrSessionNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrSessionClosed) {
		return http.StatusGone
	}
	if errors.Is(err, ErrPendingChanges) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	return fleet.MapHTTPStatus(err)
}
