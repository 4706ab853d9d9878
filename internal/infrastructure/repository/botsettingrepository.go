package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// BotSettingRepository implements setting.Repository on gorm. Get never fails:
// an absent key or a storage error resolves to the caller's default so the
// relay path is not held hostage by the settings table.
type BotSettingRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewBotSettingRepository(db *gorm.DB, logger logger.Interface) *BotSettingRepository {
	return &BotSettingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BotSettingRepository) Get(ctx context.Context, key, def string) string {
	var model models.BotSettingModel

	err := r.db.WithContext(ctx).
		Where("setting_key = ?", key).
		First(&model).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Errorw("failed to read setting, using default", "key", key, "error", err)
		}
		return def
	}

	return model.SettingValue
}

func (r *BotSettingRepository) Set(ctx context.Context, key, value string) error {
	model := &models.BotSettingModel{
		SettingKey:   key,
		SettingValue: value,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}

	return nil
}
