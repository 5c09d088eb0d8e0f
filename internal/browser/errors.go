package browser

import (
	"errors"
	"fmt"
)

// Render stages reported in RenderError.
const (
	StageLaunch   = "launch"
	StageNavigate = "navigate"
	StageWait     = "wait"
	StageExtract  = "extract"
	StageClose    = "close"
)

// ErrSessionClosed is returned by Render after Close.
var ErrSessionClosed = errors.New("browser session closed")

// RenderError describes a failed render attempt. A DOM wait that runs past
// RenderTimeout is reported at StageWait like any other failure.
type RenderError struct {
	URL   string
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("browser %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("render %s (%s): %v", e.URL, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
