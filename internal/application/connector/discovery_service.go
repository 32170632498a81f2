package connector

import (
	"context"
	"fmt"
)

// standardFields are the platform's built-in scalar product fields a
// mapping can always target.
var standardFields = []DiscoveredField{
	{TargetField: "name", Kind: "scalar", Label: "Name"},
	{TargetField: "description", Kind: "scalar", Label: "Description"},
	{TargetField: "short_description", Kind: "scalar", Label: "Short description"},
	{TargetField: "regular_price", Kind: "scalar", Label: "Regular price"},
	{TargetField: "sale_price", Kind: "scalar", Label: "Sale price"},
	{TargetField: "weight", Kind: "scalar", Label: "Weight"},
	{TargetField: "taxonomy_category", Kind: "taxonomy", Label: "Categories"},
	{TargetField: "taxonomy_tag", Kind: "taxonomy", Label: "Tags"},
}

// DiscoveryService lists the platform fields a mapping can target: the
// built-in product fields plus the attributes configured on the platform.
type DiscoveryService struct {
	gateway GatewayProvider
}

// NewDiscoveryService creates a new DiscoveryService
func NewDiscoveryService(gateway GatewayProvider) *DiscoveryService {
	return &DiscoveryService{gateway: gateway}
}

// DiscoverFields queries the platform for its configured attributes and
// returns them merged with the standard field list.
func (s *DiscoveryService) DiscoverFields(ctx context.Context) (*DiscoveredFieldsResponse, error) {
	gateway, err := s.gateway(ctx)
	if err != nil {
		return nil, err
	}

	attributes, err := gateway.ListAttributes(ctx)
	if err != nil {
		return nil, err
	}

	fields := make([]DiscoveredField, 0, len(standardFields)+len(attributes))
	fields = append(fields, standardFields...)
	for _, attr := range attributes {
		fields = append(fields, DiscoveredField{
			TargetField: fmt.Sprintf("attribute_%s", attr.Name),
			Kind:        "attribute",
			Label:       attr.Name,
		})
	}

	return &DiscoveredFieldsResponse{Fields: fields}, nil
}
