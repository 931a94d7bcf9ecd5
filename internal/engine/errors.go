package engine

import "errors"

// Error taxonomy surfaced to the transport layer. Always match with
// errors.Is; messages wrap these sentinels with context.
var (
	// ErrNotFound: a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the caller is not the owner of the entity it mutates.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidOperation: valid caller, invalid state transition (booking a
	// non-OPEN ride, booking your own ride, cancelling twice).
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInsufficientCapacity: the requested seats exceed what is available.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrInvalidInput: an out-of-range field the engine defends itself.
	ErrInvalidInput = errors.New("invalid input")
)
