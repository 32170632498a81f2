package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// FieldMappingModel is the persistence model for the FieldMapping domain entity.
type FieldMappingModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	SourceField string    `gorm:"type:varchar(100);not null;index"`
	TargetField string    `gorm:"type:varchar(100);not null"`
	SourceType  string    `gorm:"type:varchar(30);not null"`
	TargetType  string    `gorm:"type:varchar(30)"`
	OptionsJSON string    `gorm:"column:transformation_options;type:jsonb"`
	IsActive    bool      `gorm:"not null;default:true;index"`
	Direction   string    `gorm:"type:varchar(10);not null;default:'both'"`
	Position    int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FieldMappingModel) TableName() string {
	return "field_mappings"
}

// ToDomain converts the persistence model to a domain FieldMapping entity.
func (m *FieldMappingModel) ToDomain() *connector.FieldMapping {
	options := make(map[string]string)
	if m.OptionsJSON != "" {
		// a corrupt row degrades to empty options rather than failing the read
		_ = json.Unmarshal([]byte(m.OptionsJSON), &options)
	}
	return &connector.FieldMapping{
		ID:                    m.ID,
		SourceField:           m.SourceField,
		TargetField:           m.TargetField,
		SourceType:            connector.SourceType(m.SourceType),
		TargetType:            m.TargetType,
		TransformationOptions: options,
		IsActive:              m.IsActive,
		Direction:             connector.Direction(m.Direction),
		Position:              m.Position,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain FieldMapping entity.
func (m *FieldMappingModel) FromDomain(f *connector.FieldMapping) {
	m.ID = f.ID
	m.SourceField = f.SourceField
	m.TargetField = f.TargetField
	m.SourceType = f.SourceType.String()
	m.TargetType = f.TargetType
	if len(f.TransformationOptions) > 0 {
		if data, err := json.Marshal(f.TransformationOptions); err == nil {
			m.OptionsJSON = string(data)
		}
	} else {
		m.OptionsJSON = "{}"
	}
	m.IsActive = f.IsActive
	m.Direction = f.Direction.String()
	m.Position = f.Position
	m.CreatedAt = f.CreatedAt
	m.UpdatedAt = f.UpdatedAt
}

// FieldMappingModelFromDomain creates a new persistence model from a domain FieldMapping entity.
func FieldMappingModelFromDomain(f *connector.FieldMapping) *FieldMappingModel {
	m := &FieldMappingModel{}
	m.FromDomain(f)
	return m
}

// SyncHistoryModel is the persistence model for the SyncHistory aggregate root.
type SyncHistoryModel struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key"`
	Kind         string            `gorm:"type:varchar(10);not null;index"`
	Status       string            `gorm:"type:varchar(20);not null;index"`
	FiltersJSON  string            `gorm:"column:filters;type:jsonb"`
	StartedAt    time.Time         `gorm:"not null;index"`
	CompletedAt  *time.Time        `gorm:""`
	TotalItems   int               `gorm:"not null;default:0"`
	SuccessCount int               `gorm:"not null;default:0"`
	ErrorCount   int               `gorm:"not null;default:0"`
	InitiatedBy  string            `gorm:"type:varchar(100)"`
	ErrorMessage string            `gorm:"type:text"`
	Details      []SyncDetailModel `gorm:"foreignKey:HistoryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SyncHistoryModel) TableName() string {
	return "sync_histories"
}

// ToDomain converts the persistence model to a domain SyncHistory aggregate.
func (m *SyncHistoryModel) ToDomain() *connector.SyncHistory {
	var filters connector.ItemFilter
	if m.FiltersJSON != "" {
		_ = json.Unmarshal([]byte(m.FiltersJSON), &filters)
	}
	history := &connector.SyncHistory{
		ID:           m.ID,
		Kind:         connector.SyncKind(m.Kind),
		Status:       connector.RunStatus(m.Status),
		Filters:      filters,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
		TotalItems:   m.TotalItems,
		SuccessCount: m.SuccessCount,
		ErrorCount:   m.ErrorCount,
		InitiatedBy:  m.InitiatedBy,
		ErrorMessage: m.ErrorMessage,
		Details:      make([]connector.SyncDetail, 0, len(m.Details)),
	}
	for i := range m.Details {
		history.Details = append(history.Details, *m.Details[i].ToDomain())
	}
	return history
}

// FromDomain populates the persistence model from a domain SyncHistory aggregate.
// Details are persisted separately, append-only, and are not mirrored here.
func (m *SyncHistoryModel) FromDomain(h *connector.SyncHistory) {
	m.ID = h.ID
	m.Kind = h.Kind.String()
	m.Status = h.Status.String()
	if data, err := json.Marshal(h.Filters); err == nil {
		m.FiltersJSON = string(data)
	}
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt
	m.TotalItems = h.TotalItems
	m.SuccessCount = h.SuccessCount
	m.ErrorCount = h.ErrorCount
	m.InitiatedBy = h.InitiatedBy
	m.ErrorMessage = h.ErrorMessage
}

// SyncHistoryModelFromDomain creates a new persistence model from a domain SyncHistory aggregate.
func SyncHistoryModelFromDomain(h *connector.SyncHistory) *SyncHistoryModel {
	m := &SyncHistoryModel{}
	m.FromDomain(h)
	return m
}

// SyncDetailModel is the persistence model for the SyncDetail entity.
type SyncDetailModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	HistoryID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Identifier   string    `gorm:"type:varchar(100);not null"`
	Action       string    `gorm:"type:varchar(10);not null"`
	Status       string    `gorm:"type:varchar(10);not null"`
	ErrorMessage string    `gorm:"type:text"`
	Position     int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncDetailModel) TableName() string {
	return "sync_details"
}

// ToDomain converts the persistence model to a domain SyncDetail entity.
func (m *SyncDetailModel) ToDomain() *connector.SyncDetail {
	return &connector.SyncDetail{
		ID:           m.ID,
		HistoryID:    m.HistoryID,
		Identifier:   m.Identifier,
		Action:       connector.DetailAction(m.Action),
		Status:       connector.DetailStatus(m.Status),
		ErrorMessage: m.ErrorMessage,
		Position:     m.Position,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncDetail entity.
func (m *SyncDetailModel) FromDomain(d *connector.SyncDetail) {
	m.ID = d.ID
	m.HistoryID = d.HistoryID
	m.Identifier = d.Identifier
	m.Action = string(d.Action)
	m.Status = string(d.Status)
	m.ErrorMessage = d.ErrorMessage
	m.Position = d.Position
	m.CreatedAt = d.CreatedAt
}

// SyncDetailModelFromDomain creates a new persistence model from a domain SyncDetail entity.
func SyncDetailModelFromDomain(d *connector.SyncDetail) *SyncDetailModel {
	m := &SyncDetailModel{}
	m.FromDomain(d)
	return m
}

// SettingModel is the persistence model for the Setting entity.
type SettingModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Setting.
func (m *SettingModel) ToDomain() *connector.Setting {
	return &connector.Setting{
		Key:       m.Key,
		Value:     m.Value,
		UpdatedAt: m.UpdatedAt,
	}
}

// SettingModelFromDomain creates a new persistence model from a domain Setting.
func SettingModelFromDomain(s *connector.Setting) *SettingModel {
	return &SettingModel{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
}
