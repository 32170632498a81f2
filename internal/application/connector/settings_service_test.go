package connector

import (
	"context"
	"testing"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsServiceGet(t *testing.T) {
	ctx := context.Background()

	settings := new(MockSettingRepository)
	settings.On("GetOrDefault", mock.Anything, connector.SettingPlatformURL, "").Return("https://shop.example.com", nil)
	settings.On("GetOrDefault", mock.Anything, connector.SettingConsumerKey, "").Return("ck_123", nil)
	settings.On("GetOrDefault", mock.Anything, connector.SettingConsumerSecret, "").Return("cs_456", nil)
	settings.On("GetOrDefault", mock.Anything, connector.SettingCurrency, "USD").Return("EUR", nil)

	service := NewSettingsService(settings, nil, nil, zap.NewNop())
	resp, err := service.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", resp.PlatformURL)
	assert.Equal(t, "ck_123", resp.ConsumerKey)
	assert.True(t, resp.HasSecret)
	assert.Equal(t, "EUR", resp.Currency)
}

func TestSettingsServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores only provided fields", func(t *testing.T) {
		settings := new(MockSettingRepository)
		settings.On("Set", mock.Anything, connector.SettingPlatformURL, "https://shop.example.com").Return(nil)
		settings.On("Set", mock.Anything, connector.SettingConsumerKey, "ck_123").Return(nil)
		settings.On("GetOrDefault", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

		service := NewSettingsService(settings, nil, nil, zap.NewNop())
		_, err := service.Update(ctx, UpdateSettingsRequest{
			PlatformURL: "https://shop.example.com",
			ConsumerKey: "ck_123",
		})
		require.NoError(t, err)

		settings.AssertNotCalled(t, "Set", mock.Anything, connector.SettingConsumerSecret, mock.Anything)
		settings.AssertNotCalled(t, "Set", mock.Anything, connector.SettingCurrency, mock.Anything)
	})
}

func TestSettingsServiceTestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable platform", func(t *testing.T) {
		platform := new(MockCommercePlatform)
		platform.On("Ping", mock.Anything).Return(nil)
		provider := func(ctx context.Context) (connector.CommercePlatform, error) {
			return platform, nil
		}

		service := NewSettingsService(new(MockSettingRepository), provider, nil, zap.NewNop())
		resp, err := service.TestConnection(ctx, TestConnectionRequest{})
		require.NoError(t, err)
		assert.True(t, resp.Reachable)
	})

	t.Run("failed probe is a negative result, not an error", func(t *testing.T) {
		platform := new(MockCommercePlatform)
		platform.On("Ping", mock.Anything).Return(&connector.RemoteAPIError{StatusCode: 401, Message: "invalid signature"})
		provider := func(ctx context.Context) (connector.CommercePlatform, error) {
			return platform, nil
		}

		service := NewSettingsService(new(MockSettingRepository), provider, nil, zap.NewNop())
		resp, err := service.TestConnection(ctx, TestConnectionRequest{})
		require.NoError(t, err)
		assert.False(t, resp.Reachable)
		assert.Contains(t, resp.Message, "invalid signature")
	})

	t.Run("incomplete settings are a negative result", func(t *testing.T) {
		provider := func(ctx context.Context) (connector.CommercePlatform, error) {
			return nil, connector.ErrConnectionIncomplete
		}

		service := NewSettingsService(new(MockSettingRepository), provider, nil, zap.NewNop())
		resp, err := service.TestConnection(ctx, TestConnectionRequest{})
		require.NoError(t, err)
		assert.False(t, resp.Reachable)
	})

	t.Run("submitted credentials are probed before saving", func(t *testing.T) {
		platform := new(MockCommercePlatform)
		platform.On("Ping", mock.Anything).Return(nil)

		var built connector.ConnectionSettings
		builder := func(ctx context.Context, conn connector.ConnectionSettings) (connector.CommercePlatform, error) {
			built = conn
			return platform, nil
		}

		settings := new(MockSettingRepository)
		service := NewSettingsService(settings, nil, builder, zap.NewNop())
		resp, err := service.TestConnection(ctx, TestConnectionRequest{
			PlatformURL:    "https://new-shop.example.com",
			ConsumerKey:    "ck_new",
			ConsumerSecret: "cs_new",
		})
		require.NoError(t, err)
		assert.True(t, resp.Reachable)
		assert.Equal(t, "https://new-shop.example.com", built.BaseURL)
		assert.Equal(t, "cs_new", built.ConsumerSecret)
		settings.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank submitted fields fall back to stored values", func(t *testing.T) {
		platform := new(MockCommercePlatform)
		platform.On("Ping", mock.Anything).Return(nil)

		var built connector.ConnectionSettings
		builder := func(ctx context.Context, conn connector.ConnectionSettings) (connector.CommercePlatform, error) {
			built = conn
			return platform, nil
		}

		settings := new(MockSettingRepository)
		settings.On("GetOrDefault", mock.Anything, connector.SettingConsumerSecret, "").Return("cs_stored", nil)

		service := NewSettingsService(settings, nil, builder, zap.NewNop())
		resp, err := service.TestConnection(ctx, TestConnectionRequest{
			PlatformURL: "https://shop.example.com",
			ConsumerKey: "ck_123",
		})
		require.NoError(t, err)
		assert.True(t, resp.Reachable)
		assert.Equal(t, "cs_stored", built.ConsumerSecret)
	})

	t.Run("incomplete submitted credentials are a negative result", func(t *testing.T) {
		settings := new(MockSettingRepository)
		settings.On("GetOrDefault", mock.Anything, connector.SettingConsumerKey, "").Return("", nil)
		settings.On("GetOrDefault", mock.Anything, connector.SettingConsumerSecret, "").Return("", nil)

		service := NewSettingsService(settings, nil, nil, zap.NewNop())
		resp, err := service.TestConnection(ctx, TestConnectionRequest{
			PlatformURL: "https://shop.example.com",
		})
		require.NoError(t, err)
		assert.False(t, resp.Reachable)
	})
}
