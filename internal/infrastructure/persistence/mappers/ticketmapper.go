package mappers

import (
	"time"

	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/infrastructure/persistence/models"
)

// TicketMapper handles the conversion between Ticket domain entities and
// persistence models.
type TicketMapper interface {
	ToModel(t *ticket.Ticket) *models.TicketModel
	ToDomain(model *models.TicketModel) (*ticket.Ticket, error)
}

type ticketMapperImpl struct{}

// NewTicketMapper creates a new TicketMapper.
func NewTicketMapper() TicketMapper {
	return &ticketMapperImpl{}
}

func (m *ticketMapperImpl) ToModel(t *ticket.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:         t.ID(),
		UserChatID: t.UserChatID(),
		Username:   t.Username(),
		FirstName:  t.FirstName(),
		Status:     t.Status().String(),
		TopicID:    t.TopicID(),
		CreatedAt:  t.CreatedAt().UnixMilli(),
		UpdatedAt:  t.UpdatedAt().UnixMilli(),
	}
}

func (m *ticketMapperImpl) ToDomain(model *models.TicketModel) (*ticket.Ticket, error) {
	status, err := ticket.NewStatus(model.Status)
	if err != nil {
		return nil, err
	}

	return ticket.ReconstructTicket(
		model.ID,
		model.UserChatID,
		model.Username,
		model.FirstName,
		status,
		model.TopicID,
		millisToTime(model.CreatedAt),
		millisToTime(model.UpdatedAt),
	)
}

func millisToTime(millis int64) time.Time {
	return time.Unix(0, millis*int64(time.Millisecond)).UTC()
}
