// Package runner wires configuration into the pipeline and runs one pass:
// fetch listings, then enrich every entry into the output table.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/browser"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/catalog"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/config"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/enrich"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/metadata"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/output"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/ratelimit"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

// ErrNoEntries is returned when every listing source failed or came back empty.
var ErrNoEntries = errors.New("no entries from any listing")

// Result reports one pass.
type Result struct {
	Entries      int     // entries fetched from listings
	SourceErrors []error // per-listing failures
	Pruned       int64   // expired cache pages removed before the run
	Summary      enrich.Summary
}

// Runner runs the pipeline described by a config.
type Runner struct {
	cfg      *config.Config
	launcher browser.Launcher
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLauncher replaces the Chrome launcher.
func WithLauncher(l browser.Launcher) Option {
	return func(r *Runner) {
		r.launcher = l
	}
}

// New creates a runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	if r.launcher == nil {
		r.launcher = NewLauncher(cfg.Browser, logger)
	}
	return r
}

// NewJimakuClient builds a rate-limited archive client from the listing config.
func NewJimakuClient(cfg config.ListingConfig, logger *slog.Logger) *jimaku.Client {
	return jimaku.New(
		jimaku.WithFileListBase(cfg.FileListBase),
		jimaku.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		jimaku.WithLimiter(ratelimit.New(cfg.RequestSpacing)),
		jimaku.WithUserAgent(cfg.UserAgent),
		jimaku.WithLogger(logger),
	)
}

// NewLauncher builds a Chrome launcher from the browser config.
func NewLauncher(cfg config.BrowserConfig, logger *slog.Logger) *browser.ChromeLauncher {
	return browser.NewChromeLauncher(browser.Options{
		ExecPath:      cfg.ExecPath,
		Headless:      cfg.Headless,
		UserAgent:     cfg.UserAgent,
		RenderTimeout: cfg.RenderTimeout,
		WaitSelector:  cfg.WaitSelector,
		CloseAttempts: cfg.CloseAttempts,
	}, logger)
}

// Run fetches the listings, then enriches entries until done, cancelled or aborted.
// Listing fetch and cache pruning run concurrently.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result
	start := time.Now()
	client := NewJimakuClient(r.cfg.Listing, r.logger)

	var cache *metadata.Cache
	if r.cfg.Cache.Enabled {
		db, err := metadata.OpenDB(ctx, r.cfg.Cache.Path)
		if err != nil {
			return res, fmt.Errorf("open cache: %w", err)
		}
		defer func() { _ = db.Close() }()
		cache = metadata.NewCache(db, r.cfg.Cache.TTL, r.logger)
	}

	var entries []jimaku.Entry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, res.SourceErrors = catalog.NewFetcher(client, r.logger).FetchAll(gctx, r.cfg.Listing.URLs)
		return nil
	})
	if cache != nil {
		g.Go(func() error {
			n, err := cache.Prune(gctx)
			if err != nil {
				return err
			}
			res.Pruned = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for _, err := range res.SourceErrors {
		r.logger.Warn("listing source failed", "error", err)
	}
	if len(entries) == 0 {
		return res, errors.Join(append([]error{ErrNoEntries}, res.SourceErrors...)...)
	}
	if limit := r.cfg.Enrich.Limit; limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	res.Entries = len(entries)

	var opts []enrich.Option
	if cache != nil {
		opts = append(opts, enrich.WithCache(cache))
	}
	enricher := enrich.New(enrich.Config{
		MetadataBase:     r.cfg.Metadata.BaseURL,
		MaxAttempts:      r.cfg.Enrich.MaxAttempts,
		FailureThreshold: r.cfg.Enrich.FailureThreshold,
		RetryDelay:       r.cfg.Enrich.RetryDelay,
	}, client, r.launcher, output.NewTSVSink(r.cfg.Output.Path, r.logger), r.logger, opts...)

	summary, err := enricher.Run(ctx, entries)
	res.Summary = summary
	if err != nil {
		return res, err
	}

	r.logger.Info("run complete", "entries", res.Entries, "enriched", summary.Enriched, "output", r.cfg.Output.Path, "duration_ms", time.Since(start).Milliseconds())
	return res, nil
}
