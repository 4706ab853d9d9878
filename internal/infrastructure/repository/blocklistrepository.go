package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/mappers"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
)

// BlockListRepository implements blocklist.Repository on gorm.
type BlockListRepository struct {
	db     *gorm.DB
	mapper mappers.BlockEntryMapper
}

func NewBlockListRepository(db *gorm.DB) *BlockListRepository {
	return &BlockListRepository{
		db:     db,
		mapper: mappers.NewBlockEntryMapper(),
	}
}

func (r *BlockListRepository) IsBlocked(ctx context.Context, userChatID int64) (bool, error) {
	var model models.BlockEntryModel

	err := r.db.WithContext(ctx).
		Where("user_chat_id = ?", userChatID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check block state: %w", err)
	}

	return true, nil
}

// Toggle flips the block state inside a transaction so concurrent toggles for
// the same user cannot both insert or both delete.
func (r *BlockListRepository) Toggle(ctx context.Context, userChatID, operatorID int64) (bool, error) {
	var nowBlocked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_chat_id = ?", userChatID).Delete(&models.BlockEntryModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete block entry: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			nowBlocked = false
			return nil
		}

		entry, err := blocklist.NewBlockEntry(userChatID, operatorID)
		if err != nil {
			return err
		}
		if err := tx.Create(r.mapper.ToModel(entry)).Error; err != nil {
			return fmt.Errorf("failed to create block entry: %w", err)
		}
		nowBlocked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return nowBlocked, nil
}
