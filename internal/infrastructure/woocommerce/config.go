package woocommerce

import (
	"strings"
	"time"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// DefaultTimeout bounds every gateway call when no timeout is configured
const DefaultTimeout = 30 * time.Second

// apiBasePath is the WooCommerce REST API v3 prefix
const apiBasePath = "/wp-json/wc/v3"

// Config holds the connection parameters for one WooCommerce store.
// A Config is an immutable snapshot: settings edited mid-run never
// affect a client built from an earlier snapshot.
type Config struct {
	// BaseURL is the store root, e.g. https://shop.example.com
	BaseURL string
	// ConsumerKey is the REST API consumer key
	ConsumerKey string
	// ConsumerSecret is the REST API consumer secret
	ConsumerSecret string
	// Timeout is the per-call HTTP timeout
	Timeout time.Duration
}

// NewConfig creates a config from stored connection settings.
func NewConfig(settings connector.ConnectionSettings, timeout time.Duration) Config {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Config{
		BaseURL:        strings.TrimRight(settings.BaseURL, "/"),
		ConsumerKey:    settings.ConsumerKey,
		ConsumerSecret: settings.ConsumerSecret,
		Timeout:        timeout,
	}
}

// Validate checks that the config is complete enough to reach the store.
func (c Config) Validate() error {
	settings := connector.ConnectionSettings{
		BaseURL:        c.BaseURL,
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
	}
	return settings.Validate()
}
