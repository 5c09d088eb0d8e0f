package jimaku

import (
	"errors"
	"fmt"
)

// Sentinel errors for jimaku responses and documents.
var (
	ErrNotFound    = errors.New("page not found")
	ErrRateLimited = errors.New("rate limited: too many requests")

	// ErrNoEntries is returned when a listing page yields no usable entries,
	// either because it has no marker elements or because all of them were garbled.
	ErrNoEntries = errors.New("no entries found")

	// ErrBadSize is returned when a human-readable size cannot be converted.
	ErrBadSize = errors.New("unrecognized size")
)

// StatusError reports a non-2xx response that has no dedicated sentinel.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jimaku: %s: HTTP %d", e.URL, e.StatusCode)
}
