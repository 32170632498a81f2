package woocommerce

import (
	"context"
	"time"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// NewGatewayProvider returns a factory that builds a client from the
// connection settings stored at call time. Each sync run calls the factory
// once and holds the resulting snapshot for its whole lifetime, so settings
// edited mid-run only affect later runs.
func NewGatewayProvider(settings connector.SettingRepository, timeout time.Duration) func(ctx context.Context) (connector.CommercePlatform, error) {
	return func(ctx context.Context) (connector.CommercePlatform, error) {
		connection, err := LoadConnectionSettings(ctx, settings)
		if err != nil {
			return nil, err
		}
		return NewClient(NewConfig(connection, timeout))
	}
}

// NewGatewayBuilder returns a factory that builds a client from an explicit
// credentials snapshot, used to probe submitted settings before they are
// saved.
func NewGatewayBuilder(timeout time.Duration) func(ctx context.Context, conn connector.ConnectionSettings) (connector.CommercePlatform, error) {
	return func(ctx context.Context, conn connector.ConnectionSettings) (connector.CommercePlatform, error) {
		return NewClient(NewConfig(conn, timeout))
	}
}

// LoadConnectionSettings reads the stored store connection settings.
// Missing keys come back as empty strings; Validate on the result reports
// an incomplete connection.
func LoadConnectionSettings(ctx context.Context, settings connector.SettingRepository) (connector.ConnectionSettings, error) {
	var connection connector.ConnectionSettings
	var err error

	if connection.BaseURL, err = settings.GetOrDefault(ctx, connector.SettingPlatformURL, ""); err != nil {
		return connector.ConnectionSettings{}, err
	}
	if connection.ConsumerKey, err = settings.GetOrDefault(ctx, connector.SettingConsumerKey, ""); err != nil {
		return connector.ConnectionSettings{}, err
	}
	if connection.ConsumerSecret, err = settings.GetOrDefault(ctx, connector.SettingConsumerSecret, ""); err != nil {
		return connector.ConnectionSettings{}, err
	}

	return connection, nil
}
