package config

import (
	"fmt"
	"net/url"
	"os"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format: must be text or json; got %q", c.Log.Format))
	}

	// Listing validation
	if len(c.Listing.URLs) == 0 {
		errs = append(errs, "listing.urls: at least one listing url must be configured")
	}
	for i, u := range c.Listing.URLs {
		if !isHTTPURL(u) {
			errs = append(errs, fmt.Sprintf("listing.urls[%d]: not an http(s) url: %q", i, u))
		}
	}
	if !isHTTPURL(c.Listing.FileListBase) {
		errs = append(errs, fmt.Sprintf("listing.file_list_base: not an http(s) url: %q", c.Listing.FileListBase))
	}
	if c.Listing.RequestSpacing < 0 {
		errs = append(errs, fmt.Sprintf("listing.request_spacing: must not be negative, got %s", c.Listing.RequestSpacing))
	}
	if c.Listing.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("listing.request_timeout: must be positive, got %s", c.Listing.RequestTimeout))
	}

	if !isHTTPURL(c.Metadata.BaseURL) {
		errs = append(errs, fmt.Sprintf("metadata.base_url: not an http(s) url: %q", c.Metadata.BaseURL))
	}

	// Browser validation
	if c.Browser.RenderTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("browser.render_timeout: must be positive, got %s", c.Browser.RenderTimeout))
	}
	if c.Browser.CloseAttempts < 1 {
		errs = append(errs, fmt.Sprintf("browser.close_attempts: must be at least 1, got %d", c.Browser.CloseAttempts))
	}
	if c.Browser.ExecPath != "" {
		if _, err := os.Stat(c.Browser.ExecPath); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("browser.exec_path: %q does not exist", c.Browser.ExecPath))
		}
	}

	// Enrich validation
	if c.Enrich.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("enrich.max_attempts: must be at least 1, got %d", c.Enrich.MaxAttempts))
	}
	if c.Enrich.FailureThreshold < 1 {
		errs = append(errs, fmt.Sprintf("enrich.failure_threshold: must be at least 1, got %d", c.Enrich.FailureThreshold))
	}
	if c.Enrich.RetryDelay < 0 {
		errs = append(errs, fmt.Sprintf("enrich.retry_delay: must not be negative, got %s", c.Enrich.RetryDelay))
	}
	if c.Enrich.Limit < 0 {
		errs = append(errs, fmt.Sprintf("enrich.limit: must not be negative, got %d", c.Enrich.Limit))
	}

	if c.Output.Path == "" {
		errs = append(errs, "output.path: required")
	}

	if c.Cache.Enabled {
		if c.Cache.Path == "" {
			errs = append(errs, "cache.path: required when cache is enabled")
		}
		if c.Cache.TTL <= 0 {
			errs = append(errs, fmt.Sprintf("cache.ttl: must be positive when cache is enabled, got %s", c.Cache.TTL))
		}
	}

	return errs
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
