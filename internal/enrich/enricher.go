package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/browser"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/filestats"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/output"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/anilist"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

const (
	DefaultMaxAttempts      = 10
	DefaultFailureThreshold = 5
)

// FileLister returns the files of a listing entry. *jimaku.Client satisfies it.
type FileLister interface {
	Files(ctx context.Context, entryID int) ([]jimaku.File, error)
}

// PageCache stores rendered pages by URL. *metadata.Cache satisfies it.
type PageCache interface {
	Get(ctx context.Context, url string) (browser.Fragments, bool)
	Put(ctx context.Context, url string, frags browser.Fragments) error
}

// Config controls retries and the circuit breaker.
type Config struct {
	MetadataBase     string        // e.g. https://anilist.co/anime
	MaxAttempts      int           // render attempts per entry
	FailureThreshold int           // consecutive failed entries before the run aborts
	RetryDelay       time.Duration // pause between attempts
}

// Summary counts what happened to the entries of one run.
type Summary struct {
	Seen     int
	Skipped  int // no cross-reference or no files
	Enriched int
	Dropped  int // render or extraction failed
}

// Enricher processes entries one at a time. It is not safe for concurrent use.
type Enricher struct {
	cfg      Config
	files    FileLister
	launcher browser.Launcher
	sink     output.Sink
	cache    PageCache
	log      *slog.Logger

	session browser.Session
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithCache consults c before rendering and stores fresh renders in it.
func WithCache(c PageCache) Option {
	return func(e *Enricher) {
		e.cache = c
	}
}

// New creates an enricher. Zero limits in cfg take the defaults.
func New(cfg Config, files FileLister, launcher browser.Launcher, sink output.Sink, log *slog.Logger, opts ...Option) *Enricher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	cfg.MetadataBase = strings.TrimSuffix(cfg.MetadataBase, "/")

	e := &Enricher{
		cfg:      cfg,
		files:    files,
		launcher: launcher,
		sink:     sink,
		log:      log.With("component", "enrich"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run enriches entries in order and appends a record for each one that succeeds.
// Entries whose metadata page cannot be rendered are dropped; once
// FailureThreshold such entries occur back to back the run stops with an
// *AbortError. Sink errors stop the run immediately.
func (e *Enricher) Run(ctx context.Context, entries []jimaku.Entry) (Summary, error) {
	var sum Summary
	start := time.Now()
	defer e.closeSession()

	consecutiveFailures := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Seen++
		log := e.log.With("entry_id", entry.ID)

		if entry.AnilistID == nil {
			log.Debug("skipped, no anilist id")
			sum.Skipped++
			continue
		}

		files, err := e.files.Files(ctx, entry.ID)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			log.Warn("file list failed", "error", err)
			files = nil
		}
		if len(files) == 0 {
			log.Debug("skipped, no files")
			sum.Skipped++
			continue
		}

		url := e.cfg.MetadataBase + "/" + strconv.Itoa(*entry.AnilistID)
		frags, err := e.render(ctx, log, url)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			consecutiveFailures++
			sum.Dropped++
			log.Warn("render failed", "url", url, "consecutive_failures", consecutiveFailures, "error", err)
			if consecutiveFailures >= e.cfg.FailureThreshold {
				return sum, &AbortError{Failures: consecutiveFailures, Err: err}
			}
			continue
		}
		consecutiveFailures = 0

		meta, err := anilist.Extract(frags.Head, frags.Body)
		if err != nil {
			log.Warn("extraction failed", "url", url, "error", err)
			sum.Dropped++
			continue
		}
		for _, fe := range meta.Rejected {
			log.Warn("field rejected", "field", fe.Field, "value", fe.Value, "suggestion", fe.Suggestion)
		}

		stats, err := filestats.Aggregate(files)
		if err != nil {
			return sum, fmt.Errorf("entry %d: %w", entry.ID, err)
		}

		if err := e.sink.Append(output.NewRecord(entry, meta, stats)); err != nil {
			return sum, fmt.Errorf("append entry %d: %w", entry.ID, err)
		}
		sum.Enriched++
		log.Debug("enriched", "files", len(files), "format", meta.Format.String())
	}

	e.log.Info("enrichment complete",
		"seen", sum.Seen, "skipped", sum.Skipped, "enriched", sum.Enriched, "dropped", sum.Dropped,
		"duration_ms", time.Since(start).Milliseconds())
	return sum, nil
}

// render returns the page fragments for url, from the cache when possible.
// Every failed attempt discards the session so the next attempt starts a
// fresh browser; a failed launch is a failed attempt.
func (e *Enricher) render(ctx context.Context, log *slog.Logger, url string) (browser.Fragments, error) {
	if e.cache != nil {
		if frags, ok := e.cache.Get(ctx, url); ok {
			log.Debug("cache hit", "url", url)
			return frags, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if attempt > 1 && e.cfg.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return browser.Fragments{}, ctx.Err()
			case <-time.After(e.cfg.RetryDelay):
			}
		}

		if e.session == nil {
			s, err := e.launcher.NewSession(ctx)
			if err != nil {
				lastErr = err
				log.Debug("session start failed", "attempt", attempt, "error", err)
				continue
			}
			e.session = s
		}

		frags, err := e.session.Render(ctx, url)
		if err == nil {
			if e.cache != nil {
				if err := e.cache.Put(ctx, url, frags); err != nil {
					log.Warn("cache store failed", "url", url, "error", err)
				}
			}
			return frags, nil
		}

		lastErr = err
		log.Debug("render attempt failed", "attempt", attempt, "error", err)
		e.closeSession()
		if ctx.Err() != nil {
			return browser.Fragments{}, ctx.Err()
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no render attempts made")
	}
	return browser.Fragments{}, fmt.Errorf("render %s failed after %d attempts: %w", url, e.cfg.MaxAttempts, lastErr)
}

func (e *Enricher) closeSession() {
	if e.session == nil {
		return
	}
	if err := e.session.Close(); err != nil {
		e.log.Warn("session close failed", "error", err)
	}
	e.session = nil
}
