// Package catalog retrieves the jimaku catalog listing pages in parallel.
package catalog

import (
	"errors"
	"fmt"
)

// ErrNoSources is returned when no listing URLs are configured.
var ErrNoSources = errors.New("no listing urls configured")

// SourceError records why one listing URL contributed no entries.
type SourceError struct {
	URL string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.URL, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
