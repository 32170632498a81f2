package connector

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Transform Options & Issues
// ---------------------------------------------------------------------------

// DefaultCurrency is used when no preferred currency is configured.
const DefaultCurrency = "USD"

// currencyOptionKey selects the preferred currency in a mapping's
// transformation options.
const currencyOptionKey = "currency"

// dateLayout is the ISO 8601 date-only layout used for date coercion.
const dateLayout = "2006-01-02"

// TransformOptions tunes how attribute values are coerced.
type TransformOptions struct {
	// PreferredCurrency selects which price of a price collection wins;
	// empty falls back to DefaultCurrency
	PreferredCurrency string
}

func (o TransformOptions) currencyFor(m *ResolvedMapping) string {
	if c := m.Mapping.Option(currencyOptionKey, ""); c != "" {
		return c
	}
	if o.PreferredCurrency != "" {
		return o.PreferredCurrency
	}
	return DefaultCurrency
}

// MappingIssue reports that one mapping could not be applied to one item.
// Issues are collected, never raised: a partial transform is a normal outcome
// and the caller decides whether the item as a whole failed.
type MappingIssue struct {
	// SourceField is the mapping's source attribute
	SourceField string
	// TargetField is the mapping's target field
	TargetField string
	// Reason names why the mapping was skipped
	Reason string
}

// Error-like string form, used when the caller joins issues into a detail message.
func (i MappingIssue) String() string {
	return fmt.Sprintf("%s -> %s: %s", i.SourceField, i.TargetField, i.Reason)
}

// JoinIssues renders a set of issues as a single message.
func JoinIssues(issues []MappingIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}

// ---------------------------------------------------------------------------
// Forward Transform (catalog -> platform)
// ---------------------------------------------------------------------------

// ToTarget converts one catalog item into the platform's flat representation
// by applying the resolved mappings in order. Mappings whose source attribute
// is absent on the item are skipped silently; mappings whose data cannot be
// coerced are skipped and reported as issues. The identifier never flows
// through the table, it is carried as the product SKU.
func ToTarget(item *CatalogItem, mappings []ResolvedMapping, opts TransformOptions) (*TargetProduct, []MappingIssue) {
	product := NewTargetProduct(item.Identifier)
	var issues []MappingIssue

	for idx := range mappings {
		m := &mappings[idx]
		if m.Mapping.SourceField == IdentifierField {
			continue
		}
		value, ok := item.Value(m.Mapping.SourceField)
		if !ok {
			continue
		}
		coerced, err := coerceForward(value.Data, m.Mapping.SourceType, opts.currencyFor(m))
		if err != nil {
			issues = append(issues, MappingIssue{
				SourceField: m.Mapping.SourceField,
				TargetField: m.Mapping.TargetField,
				Reason:      err.Error(),
			})
			continue
		}
		placeValue(product, m.Target, coerced)
	}

	applyTargetDefaults(product)
	return product, issues
}

// coerceForward applies the per-type coercion rules for the push direction.
func coerceForward(data any, sourceType SourceType, currency string) (any, error) {
	if data == nil {
		return nil, fmt.Errorf("attribute data is null")
	}
	switch sourceType {
	case SourceTypeText, SourceTypeTextarea:
		return stringify(data), nil
	case SourceTypeNumber:
		return coerceNumber(data)
	case SourceTypeBoolean:
		return coerceBoolean(data)
	case SourceTypePriceCollection:
		return coercePrice(data, currency)
	case SourceTypeSimpleSelect:
		return coerceOption(data)
	case SourceTypeMultiSelect:
		return coerceOptionList(data)
	case SourceTypeDate:
		return coerceDate(data)
	case SourceTypeImage:
		return stringify(data), nil
	default:
		return stringify(data), nil
	}
}

// placeValue routes a coerced value into the product per the target field's
// resolved kind.
func placeValue(product *TargetProduct, target TargetFieldRef, value any) {
	switch target.Kind {
	case TargetFieldAttribute:
		product.AppendAttribute(TargetAttribute{
			Name:      target.Name,
			Options:   asStringList(value),
			Visible:   true,
			Variation: true,
		})
	case TargetFieldTaxonomy:
		product.AppendTaxonomyTerms(target.Name, asTermList(value))
	default:
		product.Fields[target.Name] = value
	}
}

// applyTargetDefaults enforces the display name and product kind when the
// mappings left them unset.
func applyTargetDefaults(product *TargetProduct) {
	if product.Name == "" {
		if name, ok := product.Fields["name"]; ok {
			product.Name = stringify(name)
			delete(product.Fields, "name")
		} else {
			product.Name = product.SKU
		}
	}
	if product.Type == "" {
		product.Type = ProductTypeSimple
	}
}

// ---------------------------------------------------------------------------
// Inverse Transform (platform -> catalog)
// ---------------------------------------------------------------------------

// ToCatalogValues converts a platform product back into catalog attribute
// values by applying the resolved mappings in reverse. Target fields absent
// from the product are skipped silently. Every produced value is wrapped as a
// single unscoped entry so it applies to all locales and channels.
func ToCatalogValues(product *TargetProduct, mappings []ResolvedMapping, opts TransformOptions) (map[string][]AttributeValue, []MappingIssue) {
	values := make(map[string][]AttributeValue)
	var issues []MappingIssue

	for idx := range mappings {
		m := &mappings[idx]
		if m.Mapping.SourceField == IdentifierField {
			continue
		}
		raw, ok := extractValue(product, m.Target)
		if !ok {
			continue
		}
		coerced, err := coerceInverse(raw, m.Mapping.SourceType, opts.currencyFor(m))
		if err != nil {
			issues = append(issues, MappingIssue{
				SourceField: m.Mapping.SourceField,
				TargetField: m.Mapping.TargetField,
				Reason:      err.Error(),
			})
			continue
		}
		values[m.Mapping.SourceField] = []AttributeValue{{Data: coerced}}
	}

	return values, issues
}

// extractValue unwraps the target field back into a plain scalar or list. An
// attribute's option list collapses to a scalar when it has exactly one
// element; taxonomy term lists collapse to bare names.
func extractValue(product *TargetProduct, target TargetFieldRef) (any, bool) {
	switch target.Kind {
	case TargetFieldAttribute:
		attr, ok := product.Attribute(target.Name)
		if !ok {
			return nil, false
		}
		if len(attr.Options) == 1 {
			return attr.Options[0], true
		}
		return attr.Options, true
	case TargetFieldTaxonomy:
		terms := product.TaxonomyTerms(target.Name)
		if len(terms) == 0 {
			return nil, false
		}
		names := make([]string, 0, len(terms))
		for _, t := range terms {
			names = append(names, t.Name)
		}
		if len(names) == 1 {
			return names[0], true
		}
		return names, true
	default:
		if target.Name == "name" {
			if product.Name == "" {
				return nil, false
			}
			return product.Name, true
		}
		value, ok := product.Fields[target.Name]
		return value, ok
	}
}

// coerceInverse shapes an unwrapped platform value the way the catalog
// schema expects for the attribute's type.
func coerceInverse(raw any, sourceType SourceType, currency string) (any, error) {
	if raw == nil {
		return nil, fmt.Errorf("target value is null")
	}
	switch sourceType {
	case SourceTypeText, SourceTypeTextarea:
		return stringify(raw), nil
	case SourceTypeNumber:
		return coerceNumber(raw)
	case SourceTypeBoolean:
		return coerceBoolean(raw)
	case SourceTypePriceCollection:
		amount, err := coerceNumber(raw)
		if err != nil {
			return nil, err
		}
		return []Price{{Amount: decimal.NewFromFloat(amount), Currency: currency}}, nil
	case SourceTypeSimpleSelect:
		return stringify(raw), nil
	case SourceTypeMultiSelect:
		return asStringList(raw), nil
	case SourceTypeDate:
		return coerceDate(raw)
	case SourceTypeImage:
		return stringify(raw), nil
	default:
		return stringify(raw), nil
	}
}

// ---------------------------------------------------------------------------
// Coercion Helpers
// ---------------------------------------------------------------------------

func stringify(data any) string {
	switch v := data.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		// opaque structures keep their JSON shape
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceNumber(data any) (float64, error) {
	switch v := data.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", data)
	}
}

func coerceBoolean(data any) (bool, error) {
	switch v := data.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0", "":
			return false, nil
		default:
			return false, fmt.Errorf("not a boolean: %q", v)
		}
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("not a boolean: %T", data)
	}
}

// coercePrice selects the preferred currency's amount, or the first price
// when the preferred currency is absent. A collection with no entries is
// malformed.
func coercePrice(data any, currency string) (any, error) {
	prices, err := asPriceList(data)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("price collection has no entries")
	}
	for _, p := range prices {
		if strings.EqualFold(p.Currency, currency) {
			return p.Amount.String(), nil
		}
	}
	return prices[0].Amount.String(), nil
}

func asPriceList(data any) ([]Price, error) {
	switch v := data.(type) {
	case []Price:
		return v, nil
	case []any:
		prices := make([]Price, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("malformed price entry: %T", entry)
			}
			amount, err := coerceNumber(m["amount"])
			if err != nil {
				return nil, fmt.Errorf("malformed price amount: %v", err)
			}
			currency, _ := m["currency"].(string)
			prices = append(prices, Price{Amount: decimal.NewFromFloat(amount), Currency: currency})
		}
		return prices, nil
	default:
		return nil, fmt.Errorf("malformed price collection: %T", data)
	}
}

// coerceOption resolves a select value to the option's stable code.
func coerceOption(data any) (any, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case Option:
		return v.Code, nil
	case map[string]any:
		if code, ok := v["code"].(string); ok {
			return code, nil
		}
		return nil, fmt.Errorf("option has no code")
	default:
		return nil, fmt.Errorf("malformed option: %T", data)
	}
}

func coerceOptionList(data any) (any, error) {
	switch v := data.(type) {
	case []string:
		return v, nil
	case []Option:
		codes := make([]string, 0, len(v))
		for _, opt := range v {
			codes = append(codes, opt.Code)
		}
		return codes, nil
	case []any:
		codes := make([]string, 0, len(v))
		for _, entry := range v {
			code, err := coerceOption(entry)
			if err != nil {
				return nil, err
			}
			codes = append(codes, code.(string))
		}
		return codes, nil
	default:
		return nil, fmt.Errorf("malformed option list: %T", data)
	}
}

func coerceDate(data any) (any, error) {
	switch v := data.(type) {
	case time.Time:
		return v.Format(dateLayout), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return t.Format(dateLayout), nil
		}
		if t, err := time.Parse(dateLayout, trimmed); err == nil {
			return t.Format(dateLayout), nil
		}
		return nil, fmt.Errorf("not a date: %q", v)
	default:
		return nil, fmt.Errorf("not a date: %T", data)
	}
}

// asStringList renders any scalar or list value as a list of strings.
func asStringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			out = append(out, stringify(entry))
		}
		return out
	default:
		return []string{stringify(value)}
	}
}

// asTermList renders any scalar or list value as taxonomy term entries.
func asTermList(value any) []TermRef {
	names := asStringList(value)
	terms := make([]TermRef, 0, len(names))
	for _, name := range names {
		terms = append(terms, TermRef{Name: name})
	}
	return terms
}
