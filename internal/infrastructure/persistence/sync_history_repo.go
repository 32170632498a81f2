package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mugfulmuse/woo-connector/internal/domain/connector"
	"github.com/mugfulmuse/woo-connector/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// DefaultHistoryLimit caps history listings when the caller passes no limit
const DefaultHistoryLimit = 50

// GormSyncHistoryRepository implements SyncHistoryRepository using GORM
type GormSyncHistoryRepository struct {
	db *gorm.DB
}

// NewGormSyncHistoryRepository creates a new GormSyncHistoryRepository
func NewGormSyncHistoryRepository(db *gorm.DB) *GormSyncHistoryRepository {
	return &GormSyncHistoryRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormSyncHistoryRepository) WithTx(tx *gorm.DB) *GormSyncHistoryRepository {
	return &GormSyncHistoryRepository{db: tx}
}

// Create persists a new run record
func (r *GormSyncHistoryRepository) Create(ctx context.Context, history *connector.SyncHistory) error {
	model := models.SyncHistoryModelFromDomain(history)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists the run's mutable fields
func (r *GormSyncHistoryRepository) Update(ctx context.Context, history *connector.SyncHistory) error {
	model := models.SyncHistoryModelFromDomain(history)
	result := r.db.WithContext(ctx).
		Model(&models.SyncHistoryModel{}).
		Where("id = ?", history.ID).
		Updates(map[string]any{
			"status":        model.Status,
			"completed_at":  model.CompletedAt,
			"total_items":   model.TotalItems,
			"success_count": model.SuccessCount,
			"error_count":   model.ErrorCount,
			"error_message": model.ErrorMessage,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return connector.ErrHistoryNotFound
	}
	return nil
}

// AppendDetail persists one finished detail for the run
func (r *GormSyncHistoryRepository) AppendDetail(ctx context.Context, detail *connector.SyncDetail) error {
	model := models.SyncDetailModelFromDomain(detail)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a run with its details in recording order
func (r *GormSyncHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*connector.SyncHistory, error) {
	var model models.SyncHistoryModel
	if err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("sync_details.position ASC, sync_details.created_at ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connector.ErrHistoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns the most recent runs, newest first, without details
func (r *GormSyncHistoryRepository) FindRecent(ctx context.Context, limit int) ([]connector.SyncHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var historyModels []models.SyncHistoryModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	return toHistories(historyModels), nil
}

// FindByKind returns the most recent runs of one kind, newest first
func (r *GormSyncHistoryRepository) FindByKind(ctx context.Context, kind connector.SyncKind, limit int) ([]connector.SyncHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var historyModels []models.SyncHistoryModel
	if err := r.db.WithContext(ctx).
		Where("kind = ?", kind.String()).
		Order("started_at DESC").
		Limit(limit).
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	return toHistories(historyModels), nil
}

func toHistories(historyModels []models.SyncHistoryModel) []connector.SyncHistory {
	histories := make([]connector.SyncHistory, len(historyModels))
	for i, model := range historyModels {
		histories[i] = *model.ToDomain()
	}
	return histories
}

// Ensure GormSyncHistoryRepository implements SyncHistoryRepository
var _ connector.SyncHistoryRepository = (*GormSyncHistoryRepository)(nil)
