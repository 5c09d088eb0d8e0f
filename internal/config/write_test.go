package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mlparse", "config.toml")

	require.NoError(t, WriteDefault(path, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[listing]")
	assert.Contains(t, string(content), "[enrich]")
	assert.Contains(t, string(content), "${MLPARSE_USER_AGENT:-}")
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))

	err := WriteDefault(path, false)
	require.ErrorIs(t, err, ErrExists)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(content), "existing file must be untouched")
}

func TestWriteDefault_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0o644))

	require.NoError(t, WriteDefault(path, true))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[listing]")
}

func TestConfig_Write_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Enrich.Limit = 25
	cfg.Listing.RequestSpacing = 1500 * time.Millisecond

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, loaded.Enrich.Limit)
	assert.Equal(t, 1500*time.Millisecond, loaded.Listing.RequestSpacing)
	assert.Equal(t, cfg.Cache, loaded.Cache)
}

func TestConfig_Encode(t *testing.T) {
	cfg := Default()
	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))

	assert.Contains(t, buf.String(), "[listing]")
	assert.Contains(t, buf.String(), `base_url = "https://anilist.co/anime"`)
}
