package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormSettingRepository) WithTx(tx *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: tx}
}

// Get returns the setting for the key
func (r *GormSettingRepository) Get(ctx context.Context, key string) (*connector.Setting, error) {
	var model models.SettingModel
	if err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connector.ErrSettingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrDefault returns the stored value or the default when absent
func (r *GormSettingRepository) GetOrDefault(ctx context.Context, key, def string) (string, error) {
	setting, err := r.Get(ctx, key)
	if err != nil {
		if errors.Is(err, connector.ErrSettingNotFound) {
			return def, nil
		}
		return "", err
	}
	return setting.Value, nil
}

// Set creates or replaces the setting
func (r *GormSettingRepository) Set(ctx context.Context, key, value string) error {
	model := &models.SettingModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(model).Error
}

// All returns every stored setting ordered by key
func (r *GormSettingRepository) All(ctx context.Context) ([]connector.Setting, error) {
	var settingModels []models.SettingModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&settingModels).Error; err != nil {
		return nil, err
	}

	settings := make([]connector.Setting, len(settingModels))
	for i, model := range settingModels {
		settings[i] = *model.ToDomain()
	}
	return settings, nil
}

// Ensure GormSettingRepository implements SettingRepository
var _ connector.SettingRepository = (*GormSettingRepository)(nil)
