package connector

import (
	"context"
	"errors"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"go.uber.org/zap"
)

// GatewayBuilder builds a one-off commerce platform client from an explicit
// credentials snapshot, bypassing the stored settings.
type GatewayBuilder func(ctx context.Context, conn connector.ConnectionSettings) (connector.CommercePlatform, error)

// SettingsService manages the stored platform connection parameters and the
// connectivity probe.
type SettingsService struct {
	settings connector.SettingRepository
	gateway  GatewayProvider
	builder  GatewayBuilder
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settings connector.SettingRepository, gateway GatewayProvider, builder GatewayBuilder, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settings: settings,
		gateway:  gateway,
		builder:  builder,
		logger:   logger,
	}
}

// Get returns the stored connection settings. The secret is reported as
// present or absent, never echoed.
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	url, err := s.settings.GetOrDefault(ctx, connector.SettingPlatformURL, "")
	if err != nil {
		return nil, err
	}
	key, err := s.settings.GetOrDefault(ctx, connector.SettingConsumerKey, "")
	if err != nil {
		return nil, err
	}
	secret, err := s.settings.GetOrDefault(ctx, connector.SettingConsumerSecret, "")
	if err != nil {
		return nil, err
	}
	currency, err := s.settings.GetOrDefault(ctx, connector.SettingCurrency, connector.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	return &SettingsResponse{
		PlatformURL: url,
		ConsumerKey: key,
		HasSecret:   secret != "",
		Currency:    currency,
	}, nil
}

// Update stores the connection settings. Empty fields keep their stored
// value so a secret does not need to be re-entered on every edit.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*SettingsResponse, error) {
	pairs := map[string]string{
		connector.SettingPlatformURL:    req.PlatformURL,
		connector.SettingConsumerKey:    req.ConsumerKey,
		connector.SettingConsumerSecret: req.ConsumerSecret,
		connector.SettingCurrency:       req.Currency,
	}
	for key, value := range pairs {
		if value == "" {
			continue
		}
		if err := s.settings.Set(ctx, key, value); err != nil {
			return nil, err
		}
	}

	s.logger.Info("connection settings updated")
	return s.Get(ctx)
}

// TestConnection probes the platform. Submitted credentials are probed as-is
// before being saved, with blank fields falling back to their stored values;
// an empty request probes the stored settings. An unreachable platform is a
// negative probe result, not an error.
func (s *SettingsService) TestConnection(ctx context.Context, req TestConnectionRequest) (*ConnectionTestResponse, error) {
	gateway, err := s.buildGateway(ctx, req)
	if err != nil {
		if errors.Is(err, connector.ErrConnectionIncomplete) {
			return &ConnectionTestResponse{Reachable: false, Message: err.Error()}, nil
		}
		return nil, err
	}

	if err := gateway.Ping(ctx); err != nil {
		return &ConnectionTestResponse{Reachable: false, Message: err.Error()}, nil
	}
	return &ConnectionTestResponse{Reachable: true}, nil
}

func (s *SettingsService) buildGateway(ctx context.Context, req TestConnectionRequest) (connector.CommercePlatform, error) {
	if req.Empty() {
		return s.gateway(ctx)
	}

	conn := connector.ConnectionSettings{
		BaseURL:        req.PlatformURL,
		ConsumerKey:    req.ConsumerKey,
		ConsumerSecret: req.ConsumerSecret,
	}

	var err error
	if conn.BaseURL == "" {
		if conn.BaseURL, err = s.settings.GetOrDefault(ctx, connector.SettingPlatformURL, ""); err != nil {
			return nil, err
		}
	}
	if conn.ConsumerKey == "" {
		if conn.ConsumerKey, err = s.settings.GetOrDefault(ctx, connector.SettingConsumerKey, ""); err != nil {
			return nil, err
		}
	}
	if conn.ConsumerSecret == "" {
		if conn.ConsumerSecret, err = s.settings.GetOrDefault(ctx, connector.SettingConsumerSecret, ""); err != nil {
			return nil, err
		}
	}

	if err := conn.Validate(); err != nil {
		return nil, err
	}
	return s.builder(ctx, conn)
}
