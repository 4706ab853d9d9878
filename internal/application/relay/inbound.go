package relay

import (
	"context"
	"fmt"

	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/domain/setting"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// InboundMessage is a user's message arriving at the bot.
type InboundMessage struct {
	UserChatID int64
	MessageID  int64
	Username   string
	FirstName  string
	Content    Content
}

// RelayInboundResult reports what happened to an inbound message. Dropped
// messages (blocked user, empty content, failed relay) are not errors: the
// triggering event is simply discarded after one log line.
type RelayInboundResult struct {
	TicketID  uint
	NewTicket bool
	Delivered bool
	Dropped   bool
}

type RelayInboundExecutor interface {
	Execute(ctx context.Context, msg InboundMessage) (*RelayInboundResult, error)
}

// RelayInboundUseCase relays a user message into the support chat and records
// the correlation that makes replies routable.
type RelayInboundUseCase struct {
	opener         *TicketOpener
	blockRepo      blocklist.Repository
	linkRepo       correlation.Repository
	settings       *Settings
	transport      Transport
	supportChatID  int64
	supportTopicID int64
	logger         logger.Interface
}

func NewRelayInboundUseCase(
	opener *TicketOpener,
	blockRepo blocklist.Repository,
	linkRepo correlation.Repository,
	settings *Settings,
	transport Transport,
	supportChatID int64,
	supportTopicID int64,
	logger logger.Interface,
) *RelayInboundUseCase {
	return &RelayInboundUseCase{
		opener:         opener,
		blockRepo:      blockRepo,
		linkRepo:       linkRepo,
		settings:       settings,
		transport:      transport,
		supportChatID:  supportChatID,
		supportTopicID: supportTopicID,
		logger:         logger,
	}
}

func (uc *RelayInboundUseCase) Execute(ctx context.Context, msg InboundMessage) (*RelayInboundResult, error) {
	if msg.Content.IsEmpty() {
		return &RelayInboundResult{Dropped: true}, nil
	}

	blocked, err := uc.blockRepo.IsBlocked(ctx, msg.UserChatID)
	if err != nil {
		return nil, err
	}
	if blocked {
		// Blocked users are dropped silently: no relay, no reply.
		return &RelayInboundResult{Dropped: true}, nil
	}

	t, isNew, err := uc.opener.FindOrCreate(ctx, msg.UserChatID, msg.Username, msg.FirstName)
	if err != nil {
		return nil, err
	}

	if isNew {
		uc.acknowledgeNewTicket(ctx, t)
	}

	mode := uc.settings.TopicMode(ctx)
	dest := uc.destination(mode, t)
	header := uc.header(mode, t, isNew)

	content := withHeader(msg.Content, header)
	content.Actions = []Action{blockToggleAction(t.UserChatID())}

	relayedID, err := uc.transport.Send(ctx, dest, content)
	if err != nil {
		uc.logger.Errorw("failed to relay message",
			"user_chat_id", msg.UserChatID, "ticket_id", t.ID(), "error", err)
		return &RelayInboundResult{TicketID: t.ID(), NewTicket: isNew, Dropped: true}, nil
	}

	link, err := correlation.NewMessageLink(msg.UserChatID, msg.MessageID, relayedID, t.ID())
	if err != nil {
		return nil, err
	}
	if err := uc.linkRepo.Record(ctx, link); err != nil {
		return nil, err
	}

	return &RelayInboundResult{TicketID: t.ID(), NewTicket: isNew, Delivered: true}, nil
}

// destination computes the relay target for the current topology mode:
// per-user tickets with a topic go to their topic, single-topic mode goes to
// the configured shared topic, and everything else lands at the chat root.
func (uc *RelayInboundUseCase) destination(mode setting.TopicMode, t *ticket.Ticket) Destination {
	dest := Destination{ChatID: uc.supportChatID}
	switch {
	case mode == setting.TopicModePerUser && t.TopicID() != nil:
		dest.ThreadID = *t.TopicID()
	case mode == setting.TopicModeSingleTopic && uc.supportTopicID != 0:
		dest.ThreadID = uc.supportTopicID
	}
	return dest
}

// header builds the banner prefixed to relayed content. In single-topic mode
// a new ticket gets the verbose banner so operators can tell conversations
// apart; everything else gets the compact one-liner.
func (uc *RelayInboundUseCase) header(mode setting.TopicMode, t *ticket.Ticket, isNew bool) string {
	username := "not set"
	if t.Username() != "" {
		username = "@" + t.Username()
	}

	if mode == setting.TopicModeSingleTopic && isNew {
		name := t.FirstName()
		if name == "" {
			name = "not set"
		}
		return fmt.Sprintf(
			"🎫 NEW TICKET\n\n🎫 Ticket: #%d\n👤 User: %s\n🆔 ID: %d\n📱 Username: %s",
			t.ID(), name, t.UserChatID(), username,
		)
	}

	name := t.FirstName()
	if name == "" {
		name = t.DisplayName()
	}
	if t.Username() != "" && name != t.Username() {
		return fmt.Sprintf("from %s (%s):", name, username)
	}
	return fmt.Sprintf("from %s:", name)
}

// withHeader prefixes the banner to text content, or folds it into the
// caption for attachments.
func withHeader(c Content, header string) Content {
	if c.Kind == ContentText {
		c.Text = header + "\n\n" + c.Text
		return c
	}
	if c.Caption != "" {
		c.Caption = header + "\n\n" + c.Caption
	} else {
		c.Caption = header
	}
	return c
}

// blockToggleAction is the one-tap block button carried on every relayed
// message, so operators can block a user without digging for the ticket card.
func blockToggleAction(userChatID int64) Action {
	return Action{Label: "❌ Block / Unblock", Data: BlockCallbackData(userChatID)}
}

// acknowledgeNewTicket tells the user their ticket was created. Best effort.
func (uc *RelayInboundUseCase) acknowledgeNewTicket(ctx context.Context, t *ticket.Ticket) {
	text := fmt.Sprintf("✅ Your ticket #%d has been created. A support operator will reply soon.", t.ID())
	if _, err := uc.transport.Send(ctx, Destination{ChatID: t.UserChatID()}, Content{Kind: ContentText, Text: text}); err != nil {
		uc.logger.Errorw("failed to acknowledge new ticket",
			"ticket_id", t.ID(), "user_chat_id", t.UserChatID(), "error", err)
	}
}
