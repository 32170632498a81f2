package pim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the catalog (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultPageSize is the listing page size when none is configured
const defaultPageSize = 100

// apiBasePath is the catalog REST API prefix
const apiBasePath = "/api/rest/v1"

// ErrPIMConfigIncomplete indicates missing catalog connection settings
var ErrPIMConfigIncomplete = errors.New("pim: base URL and token are required")

// Client implements the catalog ports (ItemProducer, ItemFinder, ItemWriter)
// against a PIM-style REST API with bearer token auth and cursor pagination.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a new catalog client from the PIM configuration.
func NewClient(cfg config.PIMConfig) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, ErrPIMConfigIncomplete
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// itemDocument is the wire shape of one catalog product.
type itemDocument struct {
	Identifier string                                `json:"identifier"`
	Values     map[string][]connector.AttributeValue `json:"values"`
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Embedded struct {
		Items []itemDocument `json:"items"`
	} `json:"_embedded"`
	Links struct {
		Next *struct {
			Href string `json:"href"`
		} `json:"next"`
	} `json:"_links"`
}

// ---------------------------------------------------------------------------
// ItemProducer
// ---------------------------------------------------------------------------

// Items returns the catalog items matching the filter, following cursor
// pagination until the listing is exhausted or the filter limit is reached.
func (c *Client) Items(ctx context.Context, filter connector.ItemFilter) ([]connector.CatalogItem, error) {
	query := url.Values{}
	query.Set("pagination_type", "search_after")
	query.Set("limit", strconv.Itoa(c.pageSize))
	if filter.UpdatedSinceDays > 0 {
		search := fmt.Sprintf(`{"updated":[{"operator":"SINCE LAST N DAYS","value":%d}]}`, filter.UpdatedSinceDays)
		query.Set("search", search)
	}

	endpoint := c.baseURL + apiBasePath + "/products?" + query.Encode()
	items := make([]connector.CatalogItem, 0)

	for endpoint != "" {
		body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("pim: failed to parse product listing: %w", err)
		}

		for _, doc := range page.Embedded.Items {
			items = append(items, toCatalogItem(doc))
			if filter.Limit > 0 && len(items) >= filter.Limit {
				return items, nil
			}
		}

		endpoint = ""
		if page.Links.Next != nil {
			endpoint = page.Links.Next.Href
		}
	}

	return items, nil
}

// ---------------------------------------------------------------------------
// ItemFinder
// ---------------------------------------------------------------------------

// FindByIdentifier returns the catalog item with the given identifier.
// A missing item is not an error: it returns (nil, nil).
func (c *Client) FindByIdentifier(ctx context.Context, identifier string) (*connector.CatalogItem, error) {
	endpoint := c.baseURL + apiBasePath + "/products/" + url.PathEscape(identifier)
	body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		var apiErr *connector.RemoteAPIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc itemDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("pim: failed to parse product document: %w", err)
	}

	item := toCatalogItem(doc)
	return &item, nil
}

// ---------------------------------------------------------------------------
// ItemWriter
// ---------------------------------------------------------------------------

// Apply upserts the given attribute values onto the item.
func (c *Client) Apply(ctx context.Context, identifier string, values map[string][]connector.AttributeValue) error {
	payload := map[string]any{
		"identifier": identifier,
		"values":     values,
	}
	endpoint := c.baseURL + apiBasePath + "/products/" + url.PathEscape(identifier)
	_, err := c.doRequest(ctx, http.MethodPatch, endpoint, payload)
	return err
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doRequest performs one authenticated HTTP request against the catalog.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("pim: failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("pim: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pim: catalog unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("pim: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &connector.RemoteAPIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body),
		}
	}

	return body, nil
}

func extractErrorMessage(body []byte) string {
	var doc struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return doc.Message
}

func toCatalogItem(doc itemDocument) connector.CatalogItem {
	item := connector.NewCatalogItem(doc.Identifier)
	if doc.Values != nil {
		item.Values = doc.Values
	}
	return *item
}

// Ensure Client implements the catalog ports
var (
	_ connector.ItemProducer = (*Client)(nil)
	_ connector.ItemFinder   = (*Client)(nil)
	_ connector.ItemWriter   = (*Client)(nil)
)
