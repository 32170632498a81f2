package connector

import (
	"context"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
)

// MappingService handles field mapping configuration operations
type MappingService struct {
	repo connector.FieldMappingRepository
}

// NewMappingService creates a new MappingService
func NewMappingService(repo connector.FieldMappingRepository) *MappingService {
	return &MappingService{repo: repo}
}

// Create creates a new field mapping
func (s *MappingService) Create(ctx context.Context, req CreateMappingRequest) (*MappingResponse, error) {
	mapping, err := connector.NewFieldMapping(req.SourceField, req.TargetField, connector.SourceType(req.SourceType))
	if err != nil {
		return nil, err
	}

	mapping.TargetType = req.TargetType
	mapping.Position = req.Position
	if req.TransformationOptions != nil {
		mapping.TransformationOptions = req.TransformationOptions
	}
	if req.Direction != "" {
		mapping.Direction = connector.Direction(req.Direction)
		if err := mapping.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, mapping); err != nil {
		return nil, err
	}

	resp := ToMappingResponse(mapping)
	return &resp, nil
}

// Update edits an existing field mapping
func (s *MappingService) Update(ctx context.Context, id uuid.UUID, req UpdateMappingRequest) (*MappingResponse, error) {
	mapping, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mapping.SourceField = req.SourceField
	mapping.TargetField = req.TargetField
	mapping.SourceType = connector.SourceType(req.SourceType)
	mapping.TargetType = req.TargetType
	if req.TransformationOptions != nil {
		mapping.TransformationOptions = req.TransformationOptions
	}
	if req.Direction != "" {
		mapping.Direction = connector.Direction(req.Direction)
	}
	if req.IsActive != nil {
		mapping.IsActive = *req.IsActive
	}
	if req.Position != nil {
		mapping.Position = *req.Position
	}

	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	mapping.Touch()

	if err := s.repo.Save(ctx, mapping); err != nil {
		return nil, err
	}

	resp := ToMappingResponse(mapping)
	return &resp, nil
}

// GetByID retrieves a field mapping by ID
func (s *MappingService) GetByID(ctx context.Context, id uuid.UUID) (*MappingResponse, error) {
	mapping, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMappingResponse(mapping)
	return &resp, nil
}

// List returns all field mappings in storage order
func (s *MappingService) List(ctx context.Context) ([]MappingResponse, error) {
	mappings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]MappingResponse, 0, len(mappings))
	for i := range mappings {
		responses = append(responses, ToMappingResponse(&mappings[i]))
	}
	return responses, nil
}

// Delete removes a field mapping
func (s *MappingService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetActive activates or deactivates a field mapping
func (s *MappingService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*MappingResponse, error) {
	mapping, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		mapping.Activate()
	} else {
		mapping.Deactivate()
	}
	if err := s.repo.Save(ctx, mapping); err != nil {
		return nil, err
	}
	resp := ToMappingResponse(mapping)
	return &resp, nil
}
