package woocommerce

import (
	"encoding/json"
	"fmt"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// termDocument is the wire shape shared by categories, tags, attributes and
// attribute terms.
type termDocument struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// attributeDocument is the wire shape of one product attribute entry.
type attributeDocument struct {
	Name      string   `json:"name"`
	Options   []string `json:"options"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}

// termRefPayload is the {name} shape WooCommerce accepts for category and
// tag assignment.
type termRefPayload struct {
	Name string `json:"name"`
}

// structuralKeys are product document keys with structural meaning; every
// other key round-trips through TargetProduct.Fields untouched.
var structuralKeys = map[string]bool{
	"id":         true,
	"sku":        true,
	"name":       true,
	"type":       true,
	"attributes": true,
	"categories": true,
	"tags":       true,
}

// productPayload converts a target product into the JSON document sent to
// the store.
func productPayload(p *connector.TargetProduct) map[string]any {
	payload := make(map[string]any, len(p.Fields)+6)
	for key, value := range p.Fields {
		payload[key] = value
	}

	payload["sku"] = p.SKU
	if p.Name != "" {
		payload["name"] = p.Name
	}
	if p.Type != "" {
		payload["type"] = p.Type
	}
	if len(p.Attributes) > 0 {
		attributes := make([]attributeDocument, len(p.Attributes))
		for i, attr := range p.Attributes {
			attributes[i] = attributeDocument{
				Name:      attr.Name,
				Options:   attr.Options,
				Visible:   attr.Visible,
				Variation: attr.Variation,
			}
		}
		payload["attributes"] = attributes
	}
	if len(p.Categories) > 0 {
		payload["categories"] = termRefs(p.Categories)
	}
	if len(p.Tags) > 0 {
		payload["tags"] = termRefs(p.Tags)
	}
	for taxonomy, terms := range p.Taxonomies {
		if len(terms) > 0 {
			payload[taxonomy] = termRefs(terms)
		}
	}

	return payload
}

func termRefs(terms []connector.TermRef) []termRefPayload {
	refs := make([]termRefPayload, len(terms))
	for i, term := range terms {
		refs[i] = termRefPayload{Name: term.Name}
	}
	return refs
}

// decodeProduct converts a product document from the store into a target
// product. Structural keys land in their dedicated fields; everything else
// is kept verbatim in Fields.
func decodeProduct(doc []byte) (*connector.TargetProduct, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("woocommerce: failed to parse product document: %w", err)
	}

	product := connector.NewTargetProduct("")

	if data, ok := raw["id"]; ok {
		if err := json.Unmarshal(data, &product.ID); err != nil {
			return nil, fmt.Errorf("woocommerce: failed to parse product id: %w", err)
		}
	}
	if data, ok := raw["sku"]; ok {
		_ = json.Unmarshal(data, &product.SKU)
	}
	if data, ok := raw["name"]; ok {
		_ = json.Unmarshal(data, &product.Name)
	}
	if data, ok := raw["type"]; ok {
		_ = json.Unmarshal(data, &product.Type)
	}

	if data, ok := raw["attributes"]; ok {
		var attributes []attributeDocument
		if err := json.Unmarshal(data, &attributes); err != nil {
			return nil, fmt.Errorf("woocommerce: failed to parse product attributes: %w", err)
		}
		for _, attr := range attributes {
			product.AppendAttribute(connector.TargetAttribute{
				Name:      attr.Name,
				Options:   attr.Options,
				Visible:   attr.Visible,
				Variation: attr.Variation,
			})
		}
	}

	if terms, err := decodeTermRefs(raw["categories"]); err == nil && terms != nil {
		product.Categories = terms
	}
	if terms, err := decodeTermRefs(raw["tags"]); err == nil && terms != nil {
		product.Tags = terms
	}

	for key, data := range raw {
		if structuralKeys[key] {
			continue
		}
		// Custom taxonomies arrive as top-level term lists under the
		// taxonomy name. Term-shaped arrays also land in the taxonomy
		// buckets so pull mappings can collapse them to bare names.
		if terms, ok := decodeTaxonomyTerms(data); ok {
			product.AppendTaxonomyTerms(key, terms)
		}
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			continue
		}
		product.Fields[key] = value
	}

	return product, nil
}

// decodeTaxonomyTerms reports whether data is a non-empty array of term
// documents, each carrying a name.
func decodeTaxonomyTerms(data json.RawMessage) ([]connector.TermRef, bool) {
	var docs []termDocument
	if err := json.Unmarshal(data, &docs); err != nil || len(docs) == 0 {
		return nil, false
	}
	terms := make([]connector.TermRef, len(docs))
	for i, doc := range docs {
		if doc.Name == "" {
			return nil, false
		}
		terms[i] = connector.TermRef{Name: doc.Name}
	}
	return terms, true
}

func decodeTermRefs(data json.RawMessage) ([]connector.TermRef, error) {
	if data == nil {
		return nil, nil
	}
	var docs []termDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	terms := make([]connector.TermRef, len(docs))
	for i, doc := range docs {
		terms[i] = connector.TermRef{Name: doc.Name}
	}
	return terms, nil
}
