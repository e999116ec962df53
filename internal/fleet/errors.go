package fleet

import (
	"errors"
	"net/http"
)

// Domain errors for fleet operations.
var (
	ErrNotFound = errors.New("entity not found")

	// ErrReferential indicates a vehicle set referenced a missing truck or
	// trailer, or one whose ownership does not match the set's. It is raised
	// at creation time only; reads of dangling references resolve to empty
	// join results instead.
	ErrReferential = errors.New("vehicle set references a missing or mismatched entity")

	ErrInvalid = errors.New("invalid command")

	// ErrDuplicate indicates a unique constraint violation. The store does not
	// declare uniqueness on plates or national IDs, so this only surfaces on
	// primary key collisions.
	ErrDuplicate = errors.New("entity already exists")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrReferential) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
