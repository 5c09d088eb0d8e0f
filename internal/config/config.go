// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Listing  ListingConfig  `toml:"listing"`
	Metadata MetadataConfig `toml:"metadata"`
	Browser  BrowserConfig  `toml:"browser"`
	Enrich   EnrichConfig   `toml:"enrich"`
	Output   OutputConfig   `toml:"output"`
	Cache    CacheConfig    `toml:"cache"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// ListingConfig covers the subtitle archive: listing pages and per-entry file lists.
type ListingConfig struct {
	URLs           []string      `toml:"urls"`
	FileListBase   string        `toml:"file_list_base"`
	RequestSpacing time.Duration `toml:"request_spacing"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	UserAgent      string        `toml:"user_agent"`
}

type MetadataConfig struct {
	BaseURL string `toml:"base_url"`
}

type BrowserConfig struct {
	ExecPath      string        `toml:"exec_path"`
	Headless      bool          `toml:"headless"`
	UserAgent     string        `toml:"user_agent"`
	RenderTimeout time.Duration `toml:"render_timeout"`
	WaitSelector  string        `toml:"wait_selector"`
	CloseAttempts int           `toml:"close_attempts"`
}

type EnrichConfig struct {
	MaxAttempts      int           `toml:"max_attempts"`
	FailureThreshold int           `toml:"failure_threshold"`
	RetryDelay       time.Duration `toml:"retry_delay"`
	Limit            int           `toml:"limit"` // 0 processes every entry
}

type OutputConfig struct {
	Path string `toml:"path"`
}

type CacheConfig struct {
	Enabled bool          `toml:"enabled"`
	Path    string        `toml:"path"`
	TTL     time.Duration `toml:"ttl"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Listing: ListingConfig{
			URLs:           []string{"https://jimaku.cc", "https://jimaku.cc/dramas"},
			FileListBase:   "https://jimaku.cc/entry",
			RequestSpacing: time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Metadata: MetadataConfig{BaseURL: "https://anilist.co/anime"},
		Browser: BrowserConfig{
			Headless:      true,
			RenderTimeout: 30 * time.Second,
			WaitSelector:  "div.data-set",
			CloseAttempts: 3,
		},
		Enrich: EnrichConfig{
			MaxAttempts:      10,
			FailureThreshold: 5,
			RetryDelay:       2 * time.Second,
		},
		Output: OutputConfig{Path: "./entries.tsv"},
		Cache: CacheConfig{
			Path: "./data/pages.db",
			TTL:  7 * 24 * time.Hour,
		},
	}
}

// Load reads and parses the configuration file on top of Default.
// Unresolved ${VAR} references and validation failures are reported
// together as a *Error.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &Error{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return cfg, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads the configuration without validating it.
// Unresolved environment variables are left as literal ${VAR} text.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	cfg := Default()
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, missing, nil
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// An empty value counts as unset for the :- and :? forms. Unresolved
// references are left in place and reported, with the :? message when given.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if value != "" {
				return value
			}
			return arg
		case ":?":
			if value != "" {
				return value
			}
		default:
			if ok {
				return value
			}
		}

		report := name
		if op == ":?" && arg != "" {
			report = name + ": " + arg
		}
		if !seen[report] {
			seen[report] = true
			missing = append(missing, report)
		}
		return match
	})
	return out, missing
}
