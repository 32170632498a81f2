package connector

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Connector Errors
// ---------------------------------------------------------------------------

var (
	// Run errors
	ErrNoActiveMappings = errors.New("connector: no active field mappings for direction")
	ErrRunInProgress    = errors.New("connector: a sync run is already in progress for this catalog")
	ErrRunTerminal      = errors.New("connector: sync run already reached a terminal status")
	ErrHistoryNotFound  = errors.New("connector: sync history not found")
	ErrInvalidRunKind   = errors.New("connector: invalid run kind")

	// Mapping errors
	ErrMappingNotFound         = errors.New("connector: field mapping not found")
	ErrMappingInvalidSource    = errors.New("connector: mapping source field is required")
	ErrMappingInvalidTarget    = errors.New("connector: mapping target field is required")
	ErrMappingInvalidType      = errors.New("connector: invalid mapping source type")
	ErrMappingInvalidDirection = errors.New("connector: invalid mapping direction")

	// Settings errors
	ErrSettingNotFound      = errors.New("connector: setting not found")
	ErrConnectionIncomplete = errors.New("connector: connection settings are incomplete")

	// Platform errors
	ErrPlatformUnreachable = errors.New("connector: commerce platform unreachable")
)

// RemoteAPIError is returned by the gateway when the commerce platform
// answered with a non-2xx status. It carries the HTTP status and any
// structured error message extracted from the response body.
type RemoteAPIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *RemoteAPIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("connector: remote API error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("connector: remote API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// IsRemoteAPIError reports whether err is (or wraps) a RemoteAPIError.
func IsRemoteAPIError(err error) bool {
	var apiErr *RemoteAPIError
	return errors.As(err, &apiErr)
}

// ---------------------------------------------------------------------------
// Target Product Value Objects
// ---------------------------------------------------------------------------

// TargetAttribute is one structural variation attribute on a target product.
type TargetAttribute struct {
	// Name is the attribute display name on the platform
	Name string `json:"name"`
	// Options holds the attribute's option values (single-element for scalars)
	Options []string `json:"options"`
	// Visible controls whether the attribute is shown on the product page
	Visible bool `json:"visible"`
	// Variation controls whether the attribute is used for variations
	Variation bool `json:"variation"`
}

// TermRef is one taxonomy term reference ({name} entry) on a target product.
type TermRef struct {
	Name string `json:"name"`
}

// TargetProduct is the flat product document exchanged with the commerce
// platform. Scalar fields that have no structural meaning live in Fields;
// attributes and taxonomies are kept in their structural shape.
type TargetProduct struct {
	// ID is the product's identifier on the platform (0 when not yet created)
	ID int64
	// SKU is the natural key shared with the catalog
	SKU string
	// Name is the product display name
	Name string
	// Type is the platform product kind (e.g. "simple")
	Type string
	// Fields holds the remaining scalar/array fields keyed by field name
	Fields map[string]any
	// Attributes holds structural variation attributes
	Attributes []TargetAttribute
	// Categories holds category term references
	Categories []TermRef
	// Tags holds tag term references
	Tags []TermRef
	// Taxonomies holds term references for any other taxonomy, keyed by taxonomy name
	Taxonomies map[string][]TermRef
}

// NewTargetProduct creates an empty target product for the given natural key.
func NewTargetProduct(sku string) *TargetProduct {
	return &TargetProduct{
		SKU:        sku,
		Fields:     make(map[string]any),
		Attributes: make([]TargetAttribute, 0),
		Categories: make([]TermRef, 0),
		Tags:       make([]TermRef, 0),
		Taxonomies: make(map[string][]TermRef),
	}
}

// Attribute returns the structural attribute with the given name, if present.
func (p *TargetProduct) Attribute(name string) (TargetAttribute, bool) {
	for _, attr := range p.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return TargetAttribute{}, false
}

// AppendAttribute appends a structural attribute. Later mappings targeting
// the same bucket append rather than overwrite, preserving mapping order.
func (p *TargetProduct) AppendAttribute(attr TargetAttribute) {
	p.Attributes = append(p.Attributes, attr)
}

// TaxonomyTerms returns the term references for the given taxonomy name.
// The names "category" and "tag" address the dedicated lists.
func (p *TargetProduct) TaxonomyTerms(name string) []TermRef {
	switch name {
	case TaxonomyCategory:
		return p.Categories
	case TaxonomyTag:
		return p.Tags
	default:
		return p.Taxonomies[name]
	}
}

// AppendTaxonomyTerms appends term references to the named taxonomy list.
func (p *TargetProduct) AppendTaxonomyTerms(name string, terms []TermRef) {
	switch name {
	case TaxonomyCategory:
		p.Categories = append(p.Categories, terms...)
	case TaxonomyTag:
		p.Tags = append(p.Tags, terms...)
	default:
		if p.Taxonomies == nil {
			p.Taxonomies = make(map[string][]TermRef)
		}
		p.Taxonomies[name] = append(p.Taxonomies[name], terms...)
	}
}

// Well-known taxonomy names with dedicated lists on the platform
const (
	TaxonomyCategory = "category"
	TaxonomyTag      = "tag"
)

// ProductTypeSimple is the default product kind when no mapping sets one.
const ProductTypeSimple = "simple"

// ---------------------------------------------------------------------------
// Platform Catalog Metadata Value Objects
// ---------------------------------------------------------------------------

// PlatformCategory is one product category on the commerce platform.
type PlatformCategory struct {
	ID   int64
	Name string
	Slug string
}

// PlatformTag is one product tag on the commerce platform.
type PlatformTag struct {
	ID   int64
	Name string
	Slug string
}

// PlatformAttribute is one global product attribute on the commerce platform.
type PlatformAttribute struct {
	ID   int64
	Name string
	Slug string
}

// PlatformTerm is one term of a global product attribute.
type PlatformTerm struct {
	ID   int64
	Name string
	Slug string
}

// ---------------------------------------------------------------------------
// Gateway Query DTOs
// ---------------------------------------------------------------------------

// ListProductsQuery narrows a product listing call against the platform.
type ListProductsQuery struct {
	// Page is the 1-indexed page number
	Page int
	// PerPage is the page size (platform maximum applies)
	PerPage int
	// UpdatedAfter restricts results to products modified after this instant (optional)
	UpdatedAfter *time.Time
}

// ---------------------------------------------------------------------------
// CommercePlatform Port Interface
// ---------------------------------------------------------------------------

// CommercePlatform defines the port interface for the remote commerce
// platform's product REST surface. Implementations authenticate every call,
// enforce a bounded per-call timeout and perform no retries; a failed call
// surfaces as *RemoteAPIError (non-2xx) or wraps ErrPlatformUnreachable
// (transport failure).
type CommercePlatform interface {
	// FindProductBySKU looks a product up by its natural key.
	// A missing product is not an error: it returns (nil, nil).
	FindProductBySKU(ctx context.Context, sku string) (*TargetProduct, error)

	// CreateProduct creates a product and returns the created document.
	CreateProduct(ctx context.Context, product *TargetProduct) (*TargetProduct, error)

	// UpdateProduct updates the product with the given platform ID.
	UpdateProduct(ctx context.Context, id int64, product *TargetProduct) (*TargetProduct, error)

	// ListProducts returns one page of products matching the query.
	ListProducts(ctx context.Context, query ListProductsQuery) ([]TargetProduct, error)

	// ListCategories returns the platform's product categories.
	ListCategories(ctx context.Context) ([]PlatformCategory, error)

	// ListTags returns the platform's product tags.
	ListTags(ctx context.Context) ([]PlatformTag, error)

	// ListAttributes returns the platform's global product attributes.
	ListAttributes(ctx context.Context) ([]PlatformAttribute, error)

	// ListAttributeTerms returns the terms of one global attribute.
	ListAttributeTerms(ctx context.Context, attributeID int64) ([]PlatformTerm, error)

	// Ping probes connectivity and credentials with a cheap authenticated call.
	Ping(ctx context.Context) error
}
