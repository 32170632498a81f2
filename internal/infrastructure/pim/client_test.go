package pim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPIMClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.PIMConfig{
		BaseURL:  server.URL,
		Token:    "token-123",
		Timeout:  5 * time.Second,
		PageSize: 2,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("rejects missing base URL or token", func(t *testing.T) {
		_, err := NewClient(config.PIMConfig{BaseURL: "https://pim.example.com"})
		assert.ErrorIs(t, err, ErrPIMConfigIncomplete)

		_, err = NewClient(config.PIMConfig{Token: "token"})
		assert.ErrorIs(t, err, ErrPIMConfigIncomplete)
	})
}

func TestClient_Items(t *testing.T) {
	t.Run("follows cursor pagination", func(t *testing.T) {
		var server *httptest.Server
		calls := 0
		handler := func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")

			switch calls {
			case 1:
				assert.Equal(t, "search_after", r.URL.Query().Get("pagination_type"))
				fmt.Fprintf(w, `{
					"_embedded": {"items": [
						{"identifier": "SKU-1", "values": {"name": [{"locale": null, "scope": null, "data": "One"}]}},
						{"identifier": "SKU-2", "values": {}}
					]},
					"_links": {"next": {"href": %q}}
				}`, server.URL+"/api/rest/v1/products?search_after=SKU-2")
			default:
				_, _ = w.Write([]byte(`{"_embedded": {"items": [{"identifier": "SKU-3", "values": {}}]}, "_links": {}}`))
			}
		}
		server = httptest.NewServer(http.HandlerFunc(handler))
		t.Cleanup(server.Close)

		client, err := NewClient(config.PIMConfig{BaseURL: server.URL, Token: "token-123", PageSize: 2})
		require.NoError(t, err)

		items, err := client.Items(context.Background(), connector.ItemFilter{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "SKU-1", items[0].Identifier)

		value, ok := items[0].Value("name")
		require.True(t, ok)
		assert.Equal(t, "One", value.Data)
	})

	t.Run("passes the updated-since filter and honors the limit", func(t *testing.T) {
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			var search map[string][]map[string]any
			require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("search")), &search))
			require.Len(t, search["updated"], 1)
			assert.Equal(t, "SINCE LAST N DAYS", search["updated"][0]["operator"])
			assert.Equal(t, float64(7), search["updated"][0]["value"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"_embedded": {"items": [
					{"identifier": "SKU-1", "values": {}},
					{"identifier": "SKU-2", "values": {}}
				]},
				"_links": {"next": {"href": "https://never-followed.example.com"}}
			}`))
		})

		items, err := client.Items(context.Background(), connector.ItemFilter{UpdatedSinceDays: 7, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("omits the search filter when no window is set", func(t *testing.T) {
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, r.URL.Query().Has("search"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"_embedded": {"items": []}, "_links": {}}`))
		})

		items, err := client.Items(context.Background(), connector.ItemFilter{})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestClient_FindByIdentifier(t *testing.T) {
	t.Run("finds an existing item", func(t *testing.T) {
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/rest/v1/products/SKU-1", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"identifier": "SKU-1", "values": {"name": [{"locale": null, "scope": null, "data": "One"}]}}`))
		})

		item, err := client.FindByIdentifier(context.Background(), "SKU-1")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "SKU-1", item.Identifier)
	})

	t.Run("returns nil without error on 404", func(t *testing.T) {
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code": 404, "message": "Product \"MISSING\" does not exist."}`))
		})

		item, err := client.FindByIdentifier(context.Background(), "MISSING")
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("other statuses surface as errors", func(t *testing.T) {
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code": 403, "message": "Access forbidden."}`))
		})

		_, err := client.FindByIdentifier(context.Background(), "SKU-1")
		require.Error(t, err)

		var apiErr *connector.RemoteAPIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		assert.Equal(t, "Access forbidden.", apiErr.Message)
	})
}

func TestClient_Apply(t *testing.T) {
	t.Run("patches values onto the item", func(t *testing.T) {
		var received map[string]any
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/api/rest/v1/products/SKU-1", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusNoContent)
		})

		values := map[string][]connector.AttributeValue{
			"name": {{Data: "Renamed"}},
		}
		err := client.Apply(context.Background(), "SKU-1", values)
		require.NoError(t, err)

		assert.Equal(t, "SKU-1", received["identifier"])
		assert.Contains(t, received["values"], "name")
	})

	t.Run("non-2xx surfaces as RemoteAPIError", func(t *testing.T) {
		client := newTestPIMClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code": 422, "message": "Invalid data."}`))
		})

		err := client.Apply(context.Background(), "SKU-1", nil)
		require.Error(t, err)
		assert.True(t, connector.IsRemoteAPIError(err))
	})
}
