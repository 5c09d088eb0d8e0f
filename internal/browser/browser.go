// Package browser renders pages through a real browser engine.
package browser

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_browser.go -package=mocks . Launcher,Session

// Fragments holds the rendered outer HTML of a page's head and body.
type Fragments struct {
	Head string
	Body string
}

// Session is a live browser. Each Render opens and closes its own tab.
type Session interface {
	Render(ctx context.Context, url string) (Fragments, error)
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

// Options configures rendering.
type Options struct {
	ExecPath      string        // empty uses the system Chrome
	Headless      bool          // run without a window
	UserAgent     string        // empty keeps the browser default
	RenderTimeout time.Duration // bound on navigation plus DOM readiness
	WaitSelector  string        // optional extra selector to wait for
	CloseAttempts int           // tab close retries before the render fails
}

const (
	defaultRenderTimeout = 30 * time.Second
	defaultCloseAttempts = 3
)

func (o Options) withDefaults() Options {
	if o.RenderTimeout <= 0 {
		o.RenderTimeout = defaultRenderTimeout
	}
	if o.CloseAttempts <= 0 {
		o.CloseAttempts = defaultCloseAttempts
	}
	return o
}
