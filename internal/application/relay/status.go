package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/domain/setting"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// ChangeTicketStatusCommand closes or reopens the ticket owning a relayed
// message. The target ticket is resolved through the correlation index from
// the message the operator replied to.
type ChangeTicketStatusCommand struct {
	RepliedToMessageID int64
	Close              bool
}

// ChangeTicketStatusResult reports the outcome. Ignored means the replied-to
// message is not a relayed message. Unchanged means the ticket was already in
// the requested state.
type ChangeTicketStatusResult struct {
	TicketID  uint
	Status    ticket.Status
	Ignored   bool
	Unchanged bool
}

type ChangeTicketStatusExecutor interface {
	Execute(ctx context.Context, cmd ChangeTicketStatusCommand) (*ChangeTicketStatusResult, error)
}

type ChangeTicketStatusUseCase struct {
	ticketRepo    ticket.Repository
	linkRepo      correlation.Repository
	settings      *Settings
	transport     Transport
	supportChatID int64
	logger        logger.Interface
}

func NewChangeTicketStatusUseCase(
	ticketRepo ticket.Repository,
	linkRepo correlation.Repository,
	settings *Settings,
	transport Transport,
	supportChatID int64,
	logger logger.Interface,
) *ChangeTicketStatusUseCase {
	return &ChangeTicketStatusUseCase{
		ticketRepo:    ticketRepo,
		linkRepo:      linkRepo,
		settings:      settings,
		transport:     transport,
		supportChatID: supportChatID,
		logger:        logger,
	}
}

func (uc *ChangeTicketStatusUseCase) Execute(ctx context.Context, cmd ChangeTicketStatusCommand) (*ChangeTicketStatusResult, error) {
	ticketID, err := uc.linkRepo.TicketIDByRelayedID(ctx, cmd.RepliedToMessageID)
	if err != nil {
		if errors.Is(err, correlation.ErrLinkNotFound) {
			return &ChangeTicketStatusResult{Ignored: true}, nil
		}
		return nil, err
	}

	t, err := uc.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if cmd.Close == t.Status().IsClosed() {
		return &ChangeTicketStatusResult{TicketID: t.ID(), Status: t.Status(), Unchanged: true}, nil
	}

	if cmd.Close {
		t.Close()
	} else {
		t.Reopen()
	}

	if err := uc.ticketRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	uc.syncTopicLabel(ctx, t)

	if cmd.Close {
		uc.notifyClosed(ctx, t)
	}

	return &ChangeTicketStatusResult{TicketID: t.ID(), Status: t.Status()}, nil
}

// syncTopicLabel renames the ticket's topic so its status glyph matches the
// new state. Only per-user mode tickets own a topic; rename failure is logged
// and otherwise ignored, the stored status is already authoritative.
func (uc *ChangeTicketStatusUseCase) syncTopicLabel(ctx context.Context, t *ticket.Ticket) {
	if uc.settings.TopicMode(ctx) != setting.TopicModePerUser || t.TopicID() == nil {
		return
	}

	label := truncateLabel(t.Status().Glyph() + " " + t.DisplayName())
	if err := uc.transport.RenameSubChannel(ctx, uc.supportChatID, *t.TopicID(), label); err != nil {
		uc.logger.Errorw("failed to rename ticket topic",
			"ticket_id", t.ID(), "topic_id", *t.TopicID(), "error", err)
	}
}

// notifyClosed tells the user their request was closed. Reopening is silent
// on the user side. Best effort.
func (uc *ChangeTicketStatusUseCase) notifyClosed(ctx context.Context, t *ticket.Ticket) {
	text := fmt.Sprintf("✅ Your request #%d has been closed.", t.ID())
	if _, err := uc.transport.Send(ctx, Destination{ChatID: t.UserChatID()}, Content{Kind: ContentText, Text: text}); err != nil {
		uc.logger.Errorw("failed to notify user about closed ticket",
			"ticket_id", t.ID(), "user_chat_id", t.UserChatID(), "error", err)
	}
}
