package query

import "errors"

var (
	ErrClosed = errors.New("query cache closed")

	// Cancellation cause of a flight whose entry was invalidated or removed
	// while it ran. Waiters retry against the current entry.
	errSuperseded = errors.New("query superseded")
)
