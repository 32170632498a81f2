package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// maxResponseSize is the maximum allowed response size from the store (10MB)
const maxResponseSize = 10 * 1024 * 1024

// metadataPageSize is the page size used when listing categories, tags,
// attributes and terms
const metadataPageSize = 100

// Client implements the CommercePlatform port against the WooCommerce REST
// API v3. Every call authenticates with consumer key/secret basic auth,
// honors the configured per-call timeout and performs no retries.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new WooCommerce client for the given config.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// FindProductBySKU looks a product up by its natural key. A missing product
// is not an error: it returns (nil, nil).
func (c *Client) FindProductBySKU(ctx context.Context, sku string) (*connector.TargetProduct, error) {
	query := url.Values{}
	query.Set("sku", sku)

	body, err := c.doRequest(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse product list: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeProduct(docs[0])
}

// CreateProduct creates a product and returns the created document.
func (c *Client) CreateProduct(ctx context.Context, product *connector.TargetProduct) (*connector.TargetProduct, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/products", nil, productPayload(product))
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

// UpdateProduct updates the product with the given platform ID.
func (c *Client) UpdateProduct(ctx context.Context, id int64, product *connector.TargetProduct) (*connector.TargetProduct, error) {
	path := "/products/" + strconv.FormatInt(id, 10)
	body, err := c.doRequest(ctx, http.MethodPut, path, nil, productPayload(product))
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

// ListProducts returns one page of products matching the query.
func (c *Client) ListProducts(ctx context.Context, query connector.ListProductsQuery) ([]connector.TargetProduct, error) {
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(query.PerPage))
	}
	if query.UpdatedAfter != nil {
		values.Set("modified_after", query.UpdatedAfter.UTC().Format(time.RFC3339))
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/products", values, nil)
	if err != nil {
		return nil, err
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse product list: %w", err)
	}

	products := make([]connector.TargetProduct, 0, len(docs))
	for _, doc := range docs {
		product, err := decodeProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

// ---------------------------------------------------------------------------
// Catalog Metadata Operations
// ---------------------------------------------------------------------------

// ListCategories returns the platform's product categories.
func (c *Client) ListCategories(ctx context.Context) ([]connector.PlatformCategory, error) {
	var docs []termDocument
	if err := c.getMetadata(ctx, "/products/categories", &docs); err != nil {
		return nil, err
	}

	categories := make([]connector.PlatformCategory, len(docs))
	for i, doc := range docs {
		categories[i] = connector.PlatformCategory{ID: doc.ID, Name: doc.Name, Slug: doc.Slug}
	}
	return categories, nil
}

// ListTags returns the platform's product tags.
func (c *Client) ListTags(ctx context.Context) ([]connector.PlatformTag, error) {
	var docs []termDocument
	if err := c.getMetadata(ctx, "/products/tags", &docs); err != nil {
		return nil, err
	}

	tags := make([]connector.PlatformTag, len(docs))
	for i, doc := range docs {
		tags[i] = connector.PlatformTag{ID: doc.ID, Name: doc.Name, Slug: doc.Slug}
	}
	return tags, nil
}

// ListAttributes returns the platform's global product attributes.
func (c *Client) ListAttributes(ctx context.Context) ([]connector.PlatformAttribute, error) {
	var docs []termDocument
	if err := c.getMetadata(ctx, "/products/attributes", &docs); err != nil {
		return nil, err
	}

	attributes := make([]connector.PlatformAttribute, len(docs))
	for i, doc := range docs {
		attributes[i] = connector.PlatformAttribute{ID: doc.ID, Name: doc.Name, Slug: doc.Slug}
	}
	return attributes, nil
}

// ListAttributeTerms returns the terms of one global attribute.
func (c *Client) ListAttributeTerms(ctx context.Context, attributeID int64) ([]connector.PlatformTerm, error) {
	path := "/products/attributes/" + strconv.FormatInt(attributeID, 10) + "/terms"
	var docs []termDocument
	if err := c.getMetadata(ctx, path, &docs); err != nil {
		return nil, err
	}

	terms := make([]connector.PlatformTerm, len(docs))
	for i, doc := range docs {
		terms[i] = connector.PlatformTerm{ID: doc.ID, Name: doc.Name, Slug: doc.Slug}
	}
	return terms, nil
}

// Ping probes connectivity and credentials with a cheap authenticated call.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/system_status", nil, nil)
	return err
}

// getMetadata fetches one metadata listing with the standard page size.
func (c *Client) getMetadata(ctx context.Context, path string, out any) error {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(metadataPageSize))

	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("woocommerce: failed to parse %s response: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doRequest performs one authenticated HTTP request against the store.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.config.BaseURL + apiBasePath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.config.ConsumerKey, c.config.ConsumerSecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", connector.ErrPlatformUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &connector.RemoteAPIError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(body),
		}
	}

	return body, nil
}

// extractErrorMessage pulls the message out of a WooCommerce error body
// ({"code": ..., "message": ...}). An unparseable body yields an empty
// message; the status code alone still identifies the failure.
func extractErrorMessage(body []byte) string {
	var doc struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return doc.Message
}

// Ensure Client implements CommercePlatform
var _ connector.CommercePlatform = (*Client)(nil)
