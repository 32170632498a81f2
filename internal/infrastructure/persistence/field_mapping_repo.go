package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFieldMappingRepository implements FieldMappingRepository using GORM
type GormFieldMappingRepository struct {
	db *gorm.DB
}

// NewGormFieldMappingRepository creates a new GormFieldMappingRepository
func NewGormFieldMappingRepository(db *gorm.DB) *GormFieldMappingRepository {
	return &GormFieldMappingRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormFieldMappingRepository) WithTx(tx *gorm.DB) *GormFieldMappingRepository {
	return &GormFieldMappingRepository{db: tx}
}

// Save creates or updates a mapping
func (r *GormFieldMappingRepository) Save(ctx context.Context, mapping *connector.FieldMapping) error {
	model := models.FieldMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID finds a mapping by its ID
func (r *GormFieldMappingRepository) FindByID(ctx context.Context, id uuid.UUID) (*connector.FieldMapping, error) {
	var model models.FieldMappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connector.ErrMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all mappings ordered by position
func (r *GormFieldMappingRepository) FindAll(ctx context.Context) ([]connector.FieldMapping, error) {
	var mappingModels []models.FieldMappingModel
	if err := r.db.WithContext(ctx).
		Order("position ASC, created_at ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]connector.FieldMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// FindActiveForKind returns the active mappings whose direction admits the
// given run kind, ordered by position. Ordering here fixes the target
// assembly order for the whole run.
func (r *GormFieldMappingRepository) FindActiveForKind(ctx context.Context, kind connector.SyncKind) ([]connector.FieldMapping, error) {
	direction := connector.DirectionPush
	if kind == connector.SyncKindPull {
		direction = connector.DirectionPull
	}

	var mappingModels []models.FieldMappingModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("direction IN ?", []string{connector.DirectionBoth.String(), direction.String()}).
		Order("position ASC, created_at ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]connector.FieldMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// Delete deletes a mapping
func (r *GormFieldMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FieldMappingModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return connector.ErrMappingNotFound
	}
	return nil
}

// Ensure GormFieldMappingRepository implements FieldMappingRepository
var _ connector.FieldMappingRepository = (*GormFieldMappingRepository)(nil)
