// Package jimaku fetches and parses the jimaku subtitle archive: listing pages
// of catalog entries and the per-entry file lists.
package jimaku

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	defaultFileListBase = "https://jimaku.cc/entry"
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// maxBodyBytes caps a single page; listing pages are a few megabytes at most.
	maxBodyBytes = 32 << 20
)

// Limiter gates outbound requests. *ratelimit.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client fetches jimaku pages. All requests go through the limiter when one is set.
type Client struct {
	fileListBase string
	httpClient   *http.Client
	limiter      Limiter
	userAgent    string
	log          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithFileListBase sets the URL prefix of entry pages (for testing or mirrors).
func WithFileListBase(base string) Option {
	return func(c *Client) {
		c.fileListBase = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter routes every request through l.
func WithLimiter(l Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "jimaku")
	}
}

// New creates a new jimaku client.
func New(opts ...Option) *Client {
	c := &Client{
		fileListBase: defaultFileListBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entries fetches one listing page and parses its entries.
func (c *Client) Entries(ctx context.Context, pageURL string) ([]Entry, error) {
	start := time.Now()

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	entries, err := ParseEntries(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	if c.log != nil {
		c.log.Debug("fetched listing", "url", pageURL, "entries", len(entries), "duration_ms", time.Since(start).Milliseconds())
	}
	return entries, nil
}

// Files fetches the file list of one entry. An entry without files yields an
// empty slice and no error.
func (c *Client) Files(ctx context.Context, entryID int) ([]File, error) {
	start := time.Now()

	u := c.fileListBase + "/" + strconv.Itoa(entryID)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	files, err := ParseFiles(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("entry %d: %w", entryID, err)
	}

	if c.log != nil {
		c.log.Debug("fetched files", "entry_id", entryID, "files", len(files), "duration_ms", time.Since(start).Milliseconds())
	}
	return files, nil
}

// get performs a rate-limited GET and returns the body decoded to UTF-8.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(u, resp); err != nil {
		return nil, err
	}

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		r = resp.Body
	}
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// checkResponse maps HTTP status codes to sentinel errors.
func checkResponse(u string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", u, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", u, ErrRateLimited)
	default:
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
}
