// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrSpaceNotFound indicates that an administrative update
// referenced a parking space that does not exist, while ErrConflict
// signals that an insert collided with existing state (e.g. a second
// application for the same period and applicant).
package repository

import "errors"

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state, such as a duplicate (period, applicant)
// application. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSpaceNotFound is returned when a parking-space update targets a
// space identifier that is not present in the inventory. Handlers
// should translate this into an HTTP 404 response.
var ErrSpaceNotFound = errors.New("parking space not found")

// ErrAlreadyAllocated is returned when a lottery run is attempted for a
// period that already has lottery entries. Re-running would duplicate
// paid-pool records, so the caller must not proceed.
var ErrAlreadyAllocated = errors.New("lottery already allocated for period")
