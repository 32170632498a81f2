package connector

import (
	"time"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// StartSyncRequest represents a request to start a sync run
type StartSyncRequest struct {
	UpdatedSinceDays int    `json:"updated_since_days" binding:"omitempty,min=0"`
	Limit            int    `json:"limit" binding:"omitempty,min=0"`
	InitiatedBy      string `json:"initiated_by"`
}

// CreateMappingRequest represents a request to create a field mapping
type CreateMappingRequest struct {
	SourceField           string            `json:"source_field" binding:"required"`
	TargetField           string            `json:"target_field" binding:"required"`
	SourceType            string            `json:"source_type" binding:"required"`
	TargetType            string            `json:"target_type"`
	TransformationOptions map[string]string `json:"transformation_options"`
	Direction             string            `json:"direction"`
	Position              int               `json:"position"`
}

// UpdateMappingRequest represents a request to update a field mapping
type UpdateMappingRequest struct {
	SourceField           string            `json:"source_field" binding:"required"`
	TargetField           string            `json:"target_field" binding:"required"`
	SourceType            string            `json:"source_type" binding:"required"`
	TargetType            string            `json:"target_type"`
	TransformationOptions map[string]string `json:"transformation_options"`
	Direction             string            `json:"direction"`
	IsActive              *bool             `json:"is_active"`
	Position              *int              `json:"position"`
}

// MappingResponse represents a field mapping in API responses
type MappingResponse struct {
	ID                    uuid.UUID         `json:"id"`
	SourceField           string            `json:"source_field"`
	TargetField           string            `json:"target_field"`
	SourceType            string            `json:"source_type"`
	TargetType            string            `json:"target_type,omitempty"`
	TransformationOptions map[string]string `json:"transformation_options,omitempty"`
	IsActive              bool              `json:"is_active"`
	Direction             string            `json:"direction"`
	Position              int               `json:"position"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// ToMappingResponse converts a field mapping to its response representation
func ToMappingResponse(m *connector.FieldMapping) MappingResponse {
	return MappingResponse{
		ID:                    m.ID,
		SourceField:           m.SourceField,
		TargetField:           m.TargetField,
		SourceType:            m.SourceType.String(),
		TargetType:            m.TargetType,
		TransformationOptions: m.TransformationOptions,
		IsActive:              m.IsActive,
		Direction:             m.Direction.String(),
		Position:              m.Position,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// SyncDetailResponse represents one item outcome in API responses
type SyncDetailResponse struct {
	ID           uuid.UUID `json:"id"`
	Identifier   string    `json:"identifier"`
	Action       string    `json:"action"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SyncHistoryResponse represents a sync run in API responses
type SyncHistoryResponse struct {
	ID           uuid.UUID            `json:"id"`
	Kind         string               `json:"kind"`
	Status       string               `json:"status"`
	Filters      connector.ItemFilter `json:"filters"`
	StartedAt    time.Time            `json:"started_at"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	DurationMS   int64                `json:"duration_ms"`
	TotalItems   int                  `json:"total_items"`
	SuccessCount int                  `json:"success_count"`
	ErrorCount   int                  `json:"error_count"`
	InitiatedBy  string               `json:"initiated_by,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Details      []SyncDetailResponse `json:"details,omitempty"`
}

// ToSyncHistoryResponse converts a sync run to its response representation.
// Details are included only when withDetails is set; run listings stay light.
func ToSyncHistoryResponse(h *connector.SyncHistory, withDetails bool) SyncHistoryResponse {
	resp := SyncHistoryResponse{
		ID:           h.ID,
		Kind:         h.Kind.String(),
		Status:       h.Status.String(),
		Filters:      h.Filters,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
		DurationMS:   h.Duration().Milliseconds(),
		TotalItems:   h.TotalItems,
		SuccessCount: h.SuccessCount,
		ErrorCount:   h.ErrorCount,
		InitiatedBy:  h.InitiatedBy,
		ErrorMessage: h.ErrorMessage,
	}
	if withDetails {
		resp.Details = make([]SyncDetailResponse, 0, len(h.Details))
		for _, d := range h.Details {
			resp.Details = append(resp.Details, SyncDetailResponse{
				ID:           d.ID,
				Identifier:   d.Identifier,
				Action:       string(d.Action),
				Status:       string(d.Status),
				ErrorMessage: d.ErrorMessage,
				CreatedAt:    d.CreatedAt,
			})
		}
	}
	return resp
}

// UpdateSettingsRequest represents a request to update connection settings
type UpdateSettingsRequest struct {
	PlatformURL    string `json:"platform_url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	Currency       string `json:"currency"`
}

// SettingsResponse represents the stored connection settings. The consumer
// secret is never echoed back, only whether one is set.
type SettingsResponse struct {
	PlatformURL string `json:"platform_url"`
	ConsumerKey string `json:"consumer_key"`
	HasSecret   bool   `json:"has_secret"`
	Currency    string `json:"currency"`
}

// TestConnectionRequest carries credentials to probe before they are saved.
// Blank fields fall back to the stored values, so a secret does not need to
// round-trip through the client to re-test a connection.
type TestConnectionRequest struct {
	PlatformURL    string `json:"platform_url"`
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

// Empty reports whether no credentials were submitted.
func (r TestConnectionRequest) Empty() bool {
	return r.PlatformURL == "" && r.ConsumerKey == "" && r.ConsumerSecret == ""
}

// ConnectionTestResponse represents the outcome of a connectivity probe
type ConnectionTestResponse struct {
	Reachable bool   `json:"reachable"`
	Message   string `json:"message,omitempty"`
}

// DiscoveredField is one platform field a mapping could target
type DiscoveredField struct {
	TargetField string `json:"target_field"`
	Kind        string `json:"kind"`
	Label       string `json:"label"`
}

// DiscoveredFieldsResponse groups the mappable platform fields
type DiscoveredFieldsResponse struct {
	Fields []DiscoveredField `json:"fields"`
}
