package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/mappers"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
)

// MessageLinkRepository implements correlation.Repository on gorm.
type MessageLinkRepository struct {
	db     *gorm.DB
	mapper mappers.MessageLinkMapper
}

func NewMessageLinkRepository(db *gorm.DB) *MessageLinkRepository {
	return &MessageLinkRepository{
		db:     db,
		mapper: mappers.NewMessageLinkMapper(),
	}
}

func (r *MessageLinkRepository) Record(ctx context.Context, link *correlation.MessageLink) error {
	model := r.mapper.ToModel(link)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_chat_id"}, {Name: "user_message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"relayed_message_id", "ticket_id"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to record message link: %w", err)
	}

	return nil
}

func (r *MessageLinkRepository) FindByRelayedID(ctx context.Context, relayedMessageID int64) (*correlation.MessageLink, error) {
	var model models.MessageLinkModel

	err := r.db.WithContext(ctx).
		Where("relayed_message_id = ?", relayedMessageID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, correlation.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find message link: %w", err)
	}

	return r.mapper.ToDomain(&model), nil
}

func (r *MessageLinkRepository) TicketIDByRelayedID(ctx context.Context, relayedMessageID int64) (uint, error) {
	link, err := r.FindByRelayedID(ctx, relayedMessageID)
	if err != nil {
		return 0, err
	}
	return link.TicketID(), nil
}
