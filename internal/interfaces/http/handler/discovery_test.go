package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appconnector "github.com/mugfulmuse/woo-connector/internal/application/connector"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	httpdto "github.com/mugfulmuse/woo-connector/internal/interfaces/http/dto"
)

// MockCommercePlatform is a mock implementation of CommercePlatform
type MockCommercePlatform struct {
	mock.Mock
}

func (m *MockCommercePlatform) FindProductBySKU(ctx context.Context, sku string) (*connector.TargetProduct, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.TargetProduct), args.Error(1)
}

func (m *MockCommercePlatform) CreateProduct(ctx context.Context, product *connector.TargetProduct) (*connector.TargetProduct, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.TargetProduct), args.Error(1)
}

func (m *MockCommercePlatform) UpdateProduct(ctx context.Context, id int64, product *connector.TargetProduct) (*connector.TargetProduct, error) {
	args := m.Called(ctx, id, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.TargetProduct), args.Error(1)
}

func (m *MockCommercePlatform) ListProducts(ctx context.Context, query connector.ListProductsQuery) ([]connector.TargetProduct, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]connector.TargetProduct), args.Error(1)
}

func (m *MockCommercePlatform) ListCategories(ctx context.Context) ([]connector.PlatformCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]connector.PlatformCategory), args.Error(1)
}

func (m *MockCommercePlatform) ListTags(ctx context.Context) ([]connector.PlatformTag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]connector.PlatformTag), args.Error(1)
}

func (m *MockCommercePlatform) ListAttributes(ctx context.Context) ([]connector.PlatformAttribute, error) {
	args := m.Called(ctx)
	return args.Get(0).([]connector.PlatformAttribute), args.Error(1)
}

func (m *MockCommercePlatform) ListAttributeTerms(ctx context.Context, attributeID int64) ([]connector.PlatformTerm, error) {
	args := m.Called(ctx, attributeID)
	return args.Get(0).([]connector.PlatformTerm), args.Error(1)
}

func (m *MockCommercePlatform) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupDiscoveryRouter(gateway appconnector.GatewayProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewDiscoveryHandler(appconnector.NewDiscoveryService(gateway)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestDiscoveryHandler_DiscoverFields(t *testing.T) {
	platform := new(MockCommercePlatform)
	platform.On("ListAttributes", mock.Anything).Return([]connector.PlatformAttribute{
		{ID: 1, Name: "Color", Slug: "pa_color"},
		{ID: 2, Name: "Size", Slug: "pa_size"},
	}, nil)

	router := setupDiscoveryRouter(func(ctx context.Context) (connector.CommercePlatform, error) {
		return platform, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discovery/fields", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	fields := data["fields"].([]interface{})

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.(map[string]interface{})["target_field"].(string))
	}
	assert.Contains(t, names, "regular_price")
	assert.Contains(t, names, "taxonomy_category")
	assert.Contains(t, names, "attribute_Color")
	assert.Contains(t, names, "attribute_Size")
}

func TestDiscoveryHandler_DiscoverFields_ConnectionIncomplete(t *testing.T) {
	router := setupDiscoveryRouter(func(ctx context.Context) (connector.CommercePlatform, error) {
		return nil, connector.ErrConnectionIncomplete
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discovery/fields", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, httpdto.ErrCodeInvalidState, resp.Error.Code)
}

func TestDiscoveryHandler_DiscoverFields_UpstreamError(t *testing.T) {
	platform := new(MockCommercePlatform)
	platform.On("ListAttributes", mock.Anything).
		Return([]connector.PlatformAttribute(nil), &connector.RemoteAPIError{StatusCode: 500, Message: "boom"})

	router := setupDiscoveryRouter(func(ctx context.Context) (connector.CommercePlatform, error) {
		return platform, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discovery/fields", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp httpdto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, httpdto.ErrCodeUpstream, resp.Error.Code)
}
