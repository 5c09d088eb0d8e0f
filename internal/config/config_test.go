package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllSections(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.toml")
	content := `
[log]
level = "debug"
format = "json"

[listing]
urls = ["https://jimaku.cc/dramas"]
file_list_base = "https://mirror.example/entry"
request_spacing = "250ms"
request_timeout = "10s"
user_agent = "mlparse-test"

[metadata]
base_url = "https://anilist.example/anime"

[browser]
headless = false
render_timeout = "45s"
wait_selector = ""
close_attempts = 5

[enrich]
max_attempts = 3
failure_threshold = 2
retry_delay = "0s"
limit = 50

[output]
path = "` + filepath.Join(tmp, "out.tsv") + `"

[cache]
enabled = true
path = "` + filepath.Join(tmp, "pages.db") + `"
ttl = "1h"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"https://jimaku.cc/dramas"}, cfg.Listing.URLs)
	assert.Equal(t, "https://mirror.example/entry", cfg.Listing.FileListBase)
	assert.Equal(t, 250*time.Millisecond, cfg.Listing.RequestSpacing)
	assert.Equal(t, 10*time.Second, cfg.Listing.RequestTimeout)
	assert.Equal(t, "mlparse-test", cfg.Listing.UserAgent)
	assert.Equal(t, "https://anilist.example/anime", cfg.Metadata.BaseURL)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 45*time.Second, cfg.Browser.RenderTimeout)
	assert.Empty(t, cfg.Browser.WaitSelector)
	assert.Equal(t, 5, cfg.Browser.CloseAttempts)
	assert.Equal(t, 3, cfg.Enrich.MaxAttempts)
	assert.Equal(t, 2, cfg.Enrich.FailureThreshold)
	assert.Zero(t, cfg.Enrich.RetryDelay)
	assert.Equal(t, 50, cfg.Enrich.Limit)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Enrich.MaxAttempts)
	assert.Equal(t, 5, cfg.Enrich.FailureThreshold)
	assert.Equal(t, 3, cfg.Browser.CloseAttempts)
}

func TestDefaultConfigFile_LoadsToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Listing.URLs, cfg.Listing.URLs)
	assert.Equal(t, want.Listing.RequestSpacing, cfg.Listing.RequestSpacing)
	assert.Equal(t, want.Enrich, cfg.Enrich)
	assert.Equal(t, want.Browser, cfg.Browser)
	assert.Equal(t, want.Cache, cfg.Cache)
}
