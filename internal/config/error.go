package config

import (
	"fmt"
	"strings"
)

// Error collects everything wrong with one config file so it can be
// reported in a single pass.
type Error struct {
	Path    string
	Missing []string // ${VAR} references with no value and no default
	Errors  []string // Validate results
}

// Error renders a single line, prefixed with the file path when known.
func (e *Error) Error() string {
	if !e.HasErrors() {
		return ""
	}
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path + ": ")
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s", strings.Join(e.Missing, ", "))
		if len(e.Errors) > 0 {
			b.WriteString("; ")
		}
	}
	if len(e.Errors) > 0 {
		fmt.Fprintf(&b, "validation failed: %s", strings.Join(e.Errors, "; "))
	}
	return b.String()
}

func (e *Error) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
