package assembly

import (
	"errors"
	"net/http"

	"github.com/asmira/fleetdocs/internal/fleet"
)

// Domain errors for assembly operations.
var (
	// ErrEmptySelection indicates every selected slot was empty, leaving
	// nothing to merge.
	ErrEmptySelection = errors.New("no selected document has a file")

	ErrInvalid = errors.New("invalid assembly request")

	// ErrMergeFailed wraps a merger failure. Assembly has no partial output;
	// a failed merge produces nothing.
	ErrMergeFailed = errors.New("document merge failed")
)

// MapHTTPStatus converts assembly errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrEmptySelection) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrMergeFailed) {
		return http.StatusInternalServerError
	}
	return fleet.MapHTTPStatus(err)
}
