// Package connector contains the Connector bounded context.
// This context synchronizes product data between the local catalog (typed,
// localizable attribute values) and an external commerce platform (flat
// product documents), driven by user-configured field mappings.
//
// Key concepts:
//   - FieldMapping: Entity describing one source-field -> target-field correspondence
//   - SyncHistory / SyncDetail: Aggregate recording one push or pull run and its per-item outcomes
//   - CatalogItem: Value object for one source product with its typed attribute values
//   - TargetProduct: Value object for one product document on the commerce platform
//   - CommercePlatform: Port interface for the remote platform's REST surface
//   - ItemProducer / ItemWriter: Ports for enumerating and writing back catalog items
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (WooCommerce client, PIM client, GORM repositories) are in the infrastructure layer
package connector
