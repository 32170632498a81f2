package connector

import (
	"context"
	"time"
)

// Well-known setting keys for the platform connection.
const (
	SettingPlatformURL    = "platform_url"
	SettingConsumerKey    = "consumer_key"
	SettingConsumerSecret = "consumer_secret"
	SettingCurrency       = "currency"
)

// Setting is one key/value connection or behavior parameter. Settings are
// read at the start of each run so edits apply to the next run, never a
// run already in flight.
type Setting struct {
	// Key is the unique setting name
	Key string
	// Value is the stored value
	Value string
	// UpdatedAt is when the setting was last written
	UpdatedAt time.Time
}

// ConnectionSettings is an immutable snapshot of the platform credentials,
// taken when a gateway client is built.
type ConnectionSettings struct {
	// BaseURL is the platform's base URL
	BaseURL string
	// ConsumerKey is the API key sent with every call
	ConsumerKey string
	// ConsumerSecret is the API secret sent with every call
	ConsumerSecret string
}

// Validate checks that the snapshot is complete enough to reach the platform.
func (s ConnectionSettings) Validate() error {
	if s.BaseURL == "" || s.ConsumerKey == "" || s.ConsumerSecret == "" {
		return ErrConnectionIncomplete
	}
	return nil
}

// ---------------------------------------------------------------------------
// SettingRepository Interface
// ---------------------------------------------------------------------------

// SettingRepository defines the interface for setting persistence
type SettingRepository interface {
	// Get returns the setting for the key, or ErrSettingNotFound
	Get(ctx context.Context, key string) (*Setting, error)

	// GetOrDefault returns the stored value or the default when absent
	GetOrDefault(ctx context.Context, key, def string) (string, error)

	// Set creates or replaces the setting
	Set(ctx context.Context, key, value string) error

	// All returns every stored setting
	All(ctx context.Context) ([]Setting, error)
}
