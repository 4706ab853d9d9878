package mappers

import (
	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
)

// MessageLinkMapper converts between MessageLink entities and models.
type MessageLinkMapper interface {
	ToModel(l *correlation.MessageLink) *models.MessageLinkModel
	ToDomain(model *models.MessageLinkModel) *correlation.MessageLink
}

type messageLinkMapperImpl struct{}

func NewMessageLinkMapper() MessageLinkMapper {
	return &messageLinkMapperImpl{}
}

func (m *messageLinkMapperImpl) ToModel(l *correlation.MessageLink) *models.MessageLinkModel {
	return &models.MessageLinkModel{
		UserChatID:       l.UserChatID(),
		UserMessageID:    l.UserMessageID(),
		RelayedMessageID: l.RelayedMessageID(),
		TicketID:         l.TicketID(),
	}
}

func (m *messageLinkMapperImpl) ToDomain(model *models.MessageLinkModel) *correlation.MessageLink {
	return correlation.ReconstructMessageLink(
		model.UserChatID,
		model.UserMessageID,
		model.RelayedMessageID,
		model.TicketID,
	)
}
