package catalog

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/pkg/jimaku"
)

// ListingSource fetches and parses one listing page. *jimaku.Client satisfies it.
type ListingSource interface {
	Entries(ctx context.Context, pageURL string) ([]jimaku.Entry, error)
}

// Fetcher retrieves many listing pages concurrently.
type Fetcher struct {
	source ListingSource
	log    *slog.Logger
}

// NewFetcher creates a fetcher backed by source.
func NewFetcher(source ListingSource, log *slog.Logger) *Fetcher {
	return &Fetcher{source: source, log: log.With("component", "catalog")}
}

// FetchAll fetches every URL in parallel and concatenates the entries in url order.
// A failing URL contributes nothing and is reported as a *SourceError; the other
// URLs are unaffected.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]jimaku.Entry, []error) {
	if len(urls) == 0 {
		return nil, []error{ErrNoSources}
	}

	f.log.Debug("fetch started", "sources", len(urls))
	start := time.Now()

	type result struct {
		entries []jimaku.Entry
		err     error
	}
	results := make([]result, len(urls))

	// Plain Group: one failing source must not cancel its siblings.
	var g errgroup.Group
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			sourceStart := time.Now()
			entries, err := f.source.Entries(ctx, u)
			if err != nil {
				f.log.Warn("listing failed", "url", u, "error", err, "duration_ms", time.Since(sourceStart).Milliseconds())
				results[i] = result{err: &SourceError{URL: u, Err: err}}
				return nil
			}
			f.log.Debug("listing returned", "url", u, "entries", len(entries), "duration_ms", time.Since(sourceStart).Milliseconds())
			results[i] = result{entries: entries}
			return nil
		})
	}
	_ = g.Wait()

	var all []jimaku.Entry
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		all = append(all, r.entries...)
	}

	f.log.Info("fetch complete", "sources", len(urls), "entries", len(all), "errors", len(errs), "duration_ms", time.Since(start).Milliseconds())
	return all, errs
}
