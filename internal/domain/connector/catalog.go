package connector

import (
	"context"

	"github.com/shopspring/decimal"
)

// IdentifierField is the catalog attribute carrying the item's natural key.
// It is matched to the platform SKU and never flows through the mapping table.
const IdentifierField = "sku"

// ---------------------------------------------------------------------------
// Catalog Value Objects
// ---------------------------------------------------------------------------

// AttributeValue is one localized, scoped value of a catalog attribute.
// Nil Locale and Scope mean the value applies everywhere.
type AttributeValue struct {
	// Locale is the value's locale code, nil for all locales
	Locale *string `json:"locale"`
	// Scope is the value's channel code, nil for all channels
	Scope *string `json:"scope"`
	// Data is the raw attribute payload; its shape depends on the
	// attribute's source type
	Data any `json:"data"`
}

// Price is one currency amount within a price collection.
type Price struct {
	// Amount is the monetary amount
	Amount decimal.Decimal `json:"amount"`
	// Currency is the ISO 4217 currency code
	Currency string `json:"currency"`
}

// Option is one choice of a select attribute.
type Option struct {
	// Code is the option's stable code
	Code string `json:"code"`
	// Label is the option's display label
	Label string `json:"label"`
}

// ---------------------------------------------------------------------------
// CatalogItem
// ---------------------------------------------------------------------------

// CatalogItem is one product as the catalog side represents it: an
// identifier plus a bag of attribute values keyed by attribute code.
type CatalogItem struct {
	// Identifier is the item's natural key (SKU)
	Identifier string
	// Values holds the item's attribute values keyed by attribute code.
	// Each attribute may carry several values differing by locale and scope.
	Values map[string][]AttributeValue
}

// NewCatalogItem creates a catalog item with an empty value bag.
func NewCatalogItem(identifier string) *CatalogItem {
	return &CatalogItem{
		Identifier: identifier,
		Values:     make(map[string][]AttributeValue),
	}
}

// Value returns the item's value for the given attribute, preferring an
// entry with neither locale nor scope set. Returns nil and false when the
// attribute is absent from the item.
func (i *CatalogItem) Value(field string) (*AttributeValue, bool) {
	values, ok := i.Values[field]
	if !ok || len(values) == 0 {
		return nil, false
	}
	for idx := range values {
		if values[idx].Locale == nil && values[idx].Scope == nil {
			return &values[idx], true
		}
	}
	return &values[0], true
}

// SetValue replaces the attribute's values with a single unscoped entry.
func (i *CatalogItem) SetValue(field string, data any) {
	i.Values[field] = []AttributeValue{{Data: data}}
}

// ---------------------------------------------------------------------------
// Catalog Ports
// ---------------------------------------------------------------------------

// ItemProducer enumerates catalog items for a push run.
type ItemProducer interface {
	// Items returns the catalog items matching the filter
	Items(ctx context.Context, filter ItemFilter) ([]CatalogItem, error)
}

// ItemFinder resolves a single catalog item by its natural key during a
// pull run. No match is reported as (nil, nil), distinct from failure.
type ItemFinder interface {
	// FindByIdentifier returns the catalog item with the given identifier
	FindByIdentifier(ctx context.Context, identifier string) (*CatalogItem, error)
}

// ItemWriter applies values pulled from the platform back onto catalog items.
type ItemWriter interface {
	// Apply upserts the given attribute values onto the item with the
	// given identifier
	Apply(ctx context.Context, identifier string, values map[string][]AttributeValue) error
}
