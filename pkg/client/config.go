package client

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the client configuration. All request defaults are explicit
// here; changing a value and creating a new client takes effect on the next
// call.
type Config struct {
	// Endpoint is the API base URL.
	Endpoint string

	// Lang is the preferred language code for localized fields.
	Lang string

	// PerPage is the default page size requested from the API.
	PerPage int

	// Database is the default database id for convenience queries.
	Database int

	// MaxURLLen is the length ceiling applied to expanded URL templates.
	// The server rejects URLs around 1500 characters; the default leaves
	// headroom for the base endpoint and query string.
	MaxURLLen int

	// Proxy is an optional proxy URL passed through to the transport.
	Proxy string

	// Timeout is the per-request transport timeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MinRequestInterval throttles consecutive requests when > 0. The
	// engine itself imposes no rate limit; this is purely caller-configured.
	MinRequestInterval time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "https://api.worldbank.org/v2",
		Lang:      "en",
		PerPage:   1000,
		Database:  2,
		MaxURLLen: 1400,
		Timeout:   30 * time.Second,
		UserAgent: "worldbank-client/0.1.0",
	}
}

// validate checks the configuration for values the client cannot work with.
func (c Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Lang == "" {
		return fmt.Errorf("language code is required")
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("per_page must be > 0 (got %d)", c.PerPage)
	}
	if c.MaxURLLen <= 0 {
		return fmt.Errorf("max_url_len must be > 0 (got %d)", c.MaxURLLen)
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
	}
	return nil
}
