package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/browser"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/browser/mocks"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/config"
	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/enrich"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const page = `<head><script type="application/ld+json">{"mainEntity":{"@type":"TVSeries","numberOfEpisodes":12,"genre":["Comedy"]}}</script></head>`

// archive serves a listing with three entries: 1 has files, 2 has none,
// 3 has no anilist id.
func archive(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			entry := func(id int, extra string) string {
				return fmt.Sprintf(`<div class="entry" data-extra='%s'><a class="table-data file-name" href="/entry/%d">x</a></div>`, extra, id)
			}
			fmt.Fprint(w, entry(1, `{"name":"one","flags":1,"last_modified":0,"anilist_id":101}`))
			fmt.Fprint(w, entry(2, `{"name":"two","flags":1,"last_modified":0,"anilist_id":102}`))
			fmt.Fprint(w, entry(3, `{"name":"three","flags":1,"last_modified":0}`))
		case "/entry/1":
			fmt.Fprint(w, `<div class="entry" data-extra='{"name":"ep1.srt","size":2048,"last_modified":"2024-01-01T00:00:00Z"}'></div>`)
		case "/entry/2":
			fmt.Fprint(w, `<p>no files</p>`)
		case "/broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server) *config.Config {
	cfg := config.Default()
	cfg.Listing.URLs = []string{srv.URL + "/", srv.URL + "/broken"}
	cfg.Listing.FileListBase = srv.URL + "/entry"
	cfg.Listing.RequestSpacing = 0
	cfg.Enrich.RetryDelay = 0
	cfg.Output.Path = filepath.Join(t.TempDir(), "out.tsv")
	return &cfg
}

func TestRunner_Run(t *testing.T) {
	srv := archive(t)
	cfg := testConfig(t, srv)
	cfg.Cache = config.CacheConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "pages.db"), TTL: time.Hour}

	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	session := mocks.NewMockSession(ctrl)
	launcher.EXPECT().NewSession(gomock.Any()).Return(session, nil)
	session.EXPECT().Render(gomock.Any(), "https://anilist.co/anime/101").Return(browser.Fragments{Head: page}, nil)
	session.EXPECT().Close().Return(nil)

	res, err := New(cfg, testLogger(), WithLauncher(launcher)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Entries)
	assert.Len(t, res.SourceErrors, 1, "broken listing is reported, not fatal")
	assert.Equal(t, enrich.Summary{Seen: 3, Skipped: 2, Enriched: 1}, res.Summary)

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1\tone\t"))
}

func TestRunner_Run_CachedPageSkipsBrowser(t *testing.T) {
	srv := archive(t)
	cfg := testConfig(t, srv)
	cfg.Cache = config.CacheConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "pages.db"), TTL: time.Hour}

	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	session := mocks.NewMockSession(ctrl)
	launcher.EXPECT().NewSession(gomock.Any()).Return(session, nil).Times(1)
	session.EXPECT().Render(gomock.Any(), gomock.Any()).Return(browser.Fragments{Head: page}, nil).Times(1)
	session.EXPECT().Close().Return(nil).Times(1)

	_, err := New(cfg, testLogger(), WithLauncher(launcher)).Run(context.Background())
	require.NoError(t, err)

	res, err := New(cfg, testLogger(), WithLauncher(launcher)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Enriched)
}

func TestRunner_Run_Limit(t *testing.T) {
	srv := archive(t)
	cfg := testConfig(t, srv)
	cfg.Enrich.Limit = 1

	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	session := mocks.NewMockSession(ctrl)
	launcher.EXPECT().NewSession(gomock.Any()).Return(session, nil)
	session.EXPECT().Render(gomock.Any(), gomock.Any()).Return(browser.Fragments{Head: page}, nil)
	session.EXPECT().Close().Return(nil)

	res, err := New(cfg, testLogger(), WithLauncher(launcher)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, 1, res.Summary.Seen)
}

func TestRunner_Run_AllListingsFail(t *testing.T) {
	srv := archive(t)
	cfg := testConfig(t, srv)
	cfg.Listing.URLs = []string{srv.URL + "/broken"}

	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)

	_, err := New(cfg, testLogger(), WithLauncher(launcher)).Run(context.Background())
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestRunner_Run_Abort(t *testing.T) {
	srv := archive(t)
	cfg := testConfig(t, srv)
	cfg.Enrich.MaxAttempts = 1
	cfg.Enrich.FailureThreshold = 1

	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	launcher.EXPECT().NewSession(gomock.Any()).Return(nil, errors.New("no chrome"))

	_, err := New(cfg, testLogger(), WithLauncher(launcher)).Run(context.Background())
	assert.ErrorIs(t, err, enrich.ErrRunAborted)
}

func TestNew_DefaultLogger(t *testing.T) {
	cfg := config.Default()
	r := New(&cfg, nil)
	require.NotNil(t, r.logger)
	require.NotNil(t, r.launcher, "chrome launcher is the default")
}
