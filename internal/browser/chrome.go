package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeLauncher starts chromedp-controlled Chrome instances.
type ChromeLauncher struct {
	opts Options
	log  *slog.Logger
}

// NewChromeLauncher creates a launcher with the given options.
func NewChromeLauncher(opts Options, log *slog.Logger) *ChromeLauncher {
	return &ChromeLauncher{opts: opts.withDefaults(), log: log.With("component", "browser")}
}

// NewSession starts a browser process. The session lives until Close or until
// ctx is cancelled.
func (l *ChromeLauncher) NewSession(ctx context.Context) (Session, error) {
	start := time.Now()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.opts.Headless),
	)
	if l.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.opts.ExecPath))
	}
	if l.opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(l.opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			l.log.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// An empty Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &RenderError{Stage: StageLaunch, Err: err}
	}

	l.log.Debug("browser started", "headless", l.opts.Headless, "duration_ms", time.Since(start).Milliseconds())
	return &chromeSession{
		opts:       l.opts,
		log:        l.log,
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		closeTab: chromedp.Cancel,
	}, nil
}

type chromeSession struct {
	opts       Options
	log        *slog.Logger
	browserCtx context.Context
	cancel     context.CancelFunc
	closeTab   func(context.Context) error

	mu     sync.Mutex
	closed bool
}

// Render opens a tab, navigates to url, waits for head and body (and the
// configured selector), and returns both fragments. The tab is always closed.
func (s *chromeSession) Render(ctx context.Context, url string) (Fragments, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Fragments{}, &RenderError{URL: url, Stage: StageNavigate, Err: ErrSessionClosed}
	}

	start := time.Now()
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	frags, renderErr := s.render(ctx, tabCtx, url)

	if err := closeWithRetry(tabCtx, s.opts.CloseAttempts, s.closeTab); err != nil {
		s.log.Warn("tab close failed", "url", url, "attempts", s.opts.CloseAttempts, "error", err)
		if renderErr == nil {
			renderErr = &RenderError{URL: url, Stage: StageClose, Err: err}
		}
	}
	if renderErr != nil {
		return Fragments{}, renderErr
	}

	s.log.Debug("rendered", "url", url, "head_bytes", len(frags.Head), "body_bytes", len(frags.Body), "duration_ms", time.Since(start).Milliseconds())
	return frags, nil
}

func (s *chromeSession) render(ctx, tabCtx context.Context, url string) (Fragments, error) {
	runCtx, cancel := context.WithTimeout(tabCtx, s.opts.RenderTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return Fragments{}, &RenderError{URL: url, Stage: StageNavigate, Err: err}
	}

	wait := []chromedp.Action{
		chromedp.WaitReady("head", chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.opts.WaitSelector != "" {
		wait = append(wait, chromedp.WaitVisible(s.opts.WaitSelector, chromedp.ByQuery))
	}
	if err := chromedp.Run(runCtx, wait...); err != nil {
		return Fragments{}, &RenderError{URL: url, Stage: StageWait, Err: err}
	}

	var frags Fragments
	if err := chromedp.Run(runCtx,
		chromedp.OuterHTML("head", &frags.Head, chromedp.ByQuery),
		chromedp.OuterHTML("body", &frags.Body, chromedp.ByQuery),
	); err != nil {
		return Fragments{}, &RenderError{URL: url, Stage: StageExtract, Err: err}
	}
	return frags, nil
}

// Close shuts the browser down. Calling it more than once is safe.
func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.browserCtx)
	s.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// closeWithRetry calls closeFn up to attempts times until it succeeds.
// A context.Canceled result means the target is already gone.
func closeWithRetry(ctx context.Context, attempts int, closeFn func(context.Context) error) error {
	var err error
	for n := 0; n < attempts; n++ {
		err = closeFn(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
	}
	return err
}
