package persistence

import (
	"context"
	"time"

	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository reads and writes system_settings
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindByPrefix returns every setting whose key starts with prefix
func (r *GormSettingsRepository) FindByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	var rows []models.SystemSettingModel
	if err := r.db.WithContext(ctx).
		Where("setting_key LIKE ?", prefix+"%").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// Set upserts a single setting
func (r *GormSettingsRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).
		Create(&models.SystemSettingModel{Key: key, Value: value, UpdatedAt: time.Now()}).Error
}

// Ensure GormSettingsRepository implements SettingsRepository
var _ pos.SettingsRepository = (*GormSettingsRepository)(nil)
