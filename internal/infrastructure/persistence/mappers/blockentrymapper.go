package mappers

import (
	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
)

// BlockEntryMapper converts between BlockEntry domain entities and models.
type BlockEntryMapper interface {
	ToModel(e *blocklist.BlockEntry) *models.BlockEntryModel
	ToDomain(model *models.BlockEntryModel) *blocklist.BlockEntry
}

type blockEntryMapperImpl struct{}

func NewBlockEntryMapper() BlockEntryMapper {
	return &blockEntryMapperImpl{}
}

func (m *blockEntryMapperImpl) ToModel(e *blocklist.BlockEntry) *models.BlockEntryModel {
	return &models.BlockEntryModel{
		UserChatID: e.UserChatID(),
		OperatorID: e.OperatorID(),
		BlockedAt:  e.BlockedAt().UnixMilli(),
	}
}

func (m *blockEntryMapperImpl) ToDomain(model *models.BlockEntryModel) *blocklist.BlockEntry {
	return blocklist.ReconstructBlockEntry(
		model.UserChatID,
		model.OperatorID,
		millisToTime(model.BlockedAt),
	)
}
