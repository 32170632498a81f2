package connector

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Direction
// ---------------------------------------------------------------------------

// Direction scopes a field mapping to push runs, pull runs, or both.
type Direction string

const (
	// DirectionBoth applies the mapping to push and pull runs
	DirectionBoth Direction = "both"
	// DirectionPush applies the mapping to push runs only
	DirectionPush Direction = "push"
	// DirectionPull applies the mapping to pull runs only
	DirectionPull Direction = "pull"
)

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	switch d {
	case DirectionBoth, DirectionPush, DirectionPull:
		return true
	default:
		return false
	}
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// ---------------------------------------------------------------------------
// SourceType
// ---------------------------------------------------------------------------

// SourceType tags the semantic type of the source attribute a mapping reads.
// It selects the coercion rule applied by the transformation engine.
type SourceType string

const (
	// SourceTypeText is a plain text attribute
	SourceTypeText SourceType = "text"
	// SourceTypeTextarea is a long text attribute
	SourceTypeTextarea SourceType = "textarea"
	// SourceTypeNumber is a numeric attribute
	SourceTypeNumber SourceType = "number"
	// SourceTypeBoolean is a boolean attribute
	SourceTypeBoolean SourceType = "boolean"
	// SourceTypePriceCollection is a per-currency price collection
	SourceTypePriceCollection SourceType = "price_collection"
	// SourceTypeSimpleSelect is a single-select option attribute
	SourceTypeSimpleSelect SourceType = "simple_select"
	// SourceTypeMultiSelect is a multi-select option attribute
	SourceTypeMultiSelect SourceType = "multi_select"
	// SourceTypeDate is a calendar date attribute
	SourceTypeDate SourceType = "date"
	// SourceTypeImage is an opaque image reference attribute
	SourceTypeImage SourceType = "image"
)

// IsValid returns true if the source type is one of the known tags.
// Unknown tags still transform (best-effort stringification), so validity
// is only enforced where mappings are created.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeText, SourceTypeTextarea, SourceTypeNumber, SourceTypeBoolean,
		SourceTypePriceCollection, SourceTypeSimpleSelect, SourceTypeMultiSelect,
		SourceTypeDate, SourceTypeImage:
		return true
	default:
		return false
	}
}

// String returns the string representation of SourceType
func (t SourceType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// Target Field Resolution
// ---------------------------------------------------------------------------

// Target field name prefixes carrying structural meaning
const (
	attributePrefix = "attribute_"
	taxonomyPrefix  = "taxonomy_"
)

// TargetFieldKind discriminates how a mapped value is shaped on the target.
type TargetFieldKind string

const (
	// TargetFieldScalar places the value directly on the product document
	TargetFieldScalar TargetFieldKind = "scalar"
	// TargetFieldAttribute appends the value to the variation attribute list
	TargetFieldAttribute TargetFieldKind = "attribute"
	// TargetFieldTaxonomy appends the value to a named taxonomy term list
	TargetFieldTaxonomy TargetFieldKind = "taxonomy"
)

// TargetFieldRef is the resolved form of a target field name: its structural
// kind plus the bare name with any prefix stripped. It is resolved once when
// mappings are loaded, not re-parsed per item.
type TargetFieldRef struct {
	Kind TargetFieldKind
	Name string
}

// ---------------------------------------------------------------------------
// FieldMapping Entity
// ---------------------------------------------------------------------------

// FieldMapping is one configured correspondence between a catalog field and
// a commerce platform field. Mappings are created and edited by configuration
// management; the sync engine only reads them.
type FieldMapping struct {
	// ID is the unique identifier of this mapping
	ID uuid.UUID
	// SourceField is the catalog attribute code
	SourceField string
	// TargetField is the platform field name (may carry a structural prefix)
	TargetField string
	// SourceType selects the coercion rule for the source attribute
	SourceType SourceType
	// TargetType is the platform-side type tag (informational)
	TargetType string
	// TransformationOptions holds mapping-specific configuration (e.g. currency)
	TransformationOptions map[string]string
	// IsActive indicates whether the mapping participates in runs
	IsActive bool
	// Direction scopes the mapping to push, pull, or both
	Direction Direction
	// Position orders mappings; it determines target assembly order
	Position int
	// CreatedAt is when this mapping was created
	CreatedAt time.Time
	// UpdatedAt is when this mapping was last edited
	UpdatedAt time.Time
}

// NewFieldMapping creates an active field mapping for both directions.
func NewFieldMapping(sourceField, targetField string, sourceType SourceType) (*FieldMapping, error) {
	m := &FieldMapping{
		ID:                    uuid.New(),
		SourceField:           sourceField,
		TargetField:           targetField,
		SourceType:            sourceType,
		TransformationOptions: make(map[string]string),
		IsActive:              true,
		Direction:             DirectionBoth,
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate validates the field mapping
func (m *FieldMapping) Validate() error {
	if strings.TrimSpace(m.SourceField) == "" {
		return ErrMappingInvalidSource
	}
	if strings.TrimSpace(m.TargetField) == "" {
		return ErrMappingInvalidTarget
	}
	if !m.SourceType.IsValid() {
		return ErrMappingInvalidType
	}
	if !m.Direction.IsValid() {
		return ErrMappingInvalidDirection
	}
	return nil
}

// ParticipatesIn reports whether the mapping is part of a run of the given
// kind: it must be active and its direction must cover the kind.
func (m *FieldMapping) ParticipatesIn(kind SyncKind) bool {
	if !m.IsActive {
		return false
	}
	switch kind {
	case SyncKindPush:
		return m.Direction == DirectionBoth || m.Direction == DirectionPush
	case SyncKindPull:
		return m.Direction == DirectionBoth || m.Direction == DirectionPull
	default:
		return false
	}
}

// ResolveTarget parses the target field name into its structural reference.
func (m *FieldMapping) ResolveTarget() TargetFieldRef {
	switch {
	case strings.HasPrefix(m.TargetField, attributePrefix):
		return TargetFieldRef{Kind: TargetFieldAttribute, Name: m.TargetField[len(attributePrefix):]}
	case strings.HasPrefix(m.TargetField, taxonomyPrefix):
		return TargetFieldRef{Kind: TargetFieldTaxonomy, Name: m.TargetField[len(taxonomyPrefix):]}
	default:
		return TargetFieldRef{Kind: TargetFieldScalar, Name: m.TargetField}
	}
}

// Option returns a transformation option value with a default.
func (m *FieldMapping) Option(key, def string) string {
	if v, ok := m.TransformationOptions[key]; ok && v != "" {
		return v
	}
	return def
}

// Touch bumps the edit timestamp.
func (m *FieldMapping) Touch() {
	m.UpdatedAt = time.Now()
}

// Activate activates this mapping
func (m *FieldMapping) Activate() {
	m.IsActive = true
	m.Touch()
}

// Deactivate deactivates this mapping
func (m *FieldMapping) Deactivate() {
	m.IsActive = false
	m.Touch()
}

// ---------------------------------------------------------------------------
// ResolvedMapping
// ---------------------------------------------------------------------------

// ResolvedMapping pairs a mapping with its pre-parsed target reference.
// The orchestrator resolves mappings once per run and hands the resolved set
// to the transformation engine.
type ResolvedMapping struct {
	Mapping FieldMapping
	Target  TargetFieldRef
}

// ResolveMappings resolves the target reference of every mapping, preserving
// order.
func ResolveMappings(mappings []FieldMapping) []ResolvedMapping {
	resolved := make([]ResolvedMapping, len(mappings))
	for i, m := range mappings {
		resolved[i] = ResolvedMapping{Mapping: m, Target: m.ResolveTarget()}
	}
	return resolved
}

// ---------------------------------------------------------------------------
// FieldMappingRepository Interface
// ---------------------------------------------------------------------------

// FieldMappingReader defines the interface for reading field mappings
type FieldMappingReader interface {
	// FindByID finds a mapping by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*FieldMapping, error)

	// FindAll returns all mappings in storage order
	FindAll(ctx context.Context) ([]FieldMapping, error)

	// FindActiveForKind returns the active mappings participating in runs of
	// the given kind, in storage order. An empty result is not an error; the
	// caller decides whether zero mappings is fatal.
	FindActiveForKind(ctx context.Context, kind SyncKind) ([]FieldMapping, error)
}

// FieldMappingWriter defines the interface for persisting field mappings
type FieldMappingWriter interface {
	// Save creates or updates a mapping
	Save(ctx context.Context, mapping *FieldMapping) error

	// Delete deletes a mapping
	Delete(ctx context.Context, id uuid.UUID) error
}

// FieldMappingRepository defines the full interface for field mapping persistence
type FieldMappingRepository interface {
	FieldMappingReader
	FieldMappingWriter
}
