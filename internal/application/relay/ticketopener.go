package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/relaydesk/relaydesk/internal/domain/setting"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/shared/keyedmutex"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// TicketOpener finds or creates the open ticket for a user. Creation is
// serialized per user with a keyed mutex, and the partial unique index in the
// ticket store backstops the race: a conflicting insert is retried as a reuse
// of the winner's ticket.
type TicketOpener struct {
	ticketRepo    ticket.Repository
	settings      *Settings
	transport     Transport
	supportChatID int64
	locks         *keyedmutex.KeyedMutex
	logger        logger.Interface
}

func NewTicketOpener(
	ticketRepo ticket.Repository,
	settings *Settings,
	transport Transport,
	supportChatID int64,
	logger logger.Interface,
) *TicketOpener {
	return &TicketOpener{
		ticketRepo:    ticketRepo,
		settings:      settings,
		transport:     transport,
		supportChatID: supportChatID,
		locks:         keyedmutex.New(),
		logger:        logger,
	}
}

// FindOrCreate returns the user's open ticket, creating one when none exists.
// The second return value reports whether the ticket is new.
func (o *TicketOpener) FindOrCreate(ctx context.Context, userChatID int64, username, firstName string) (*ticket.Ticket, bool, error) {
	o.locks.Lock(userChatID)
	defer o.locks.Unlock(userChatID)

	t, err := o.ticketRepo.FindOpenByUser(ctx, userChatID)
	if err == nil {
		return t, false, nil
	}
	if !errors.Is(err, ticket.ErrTicketNotFound) {
		return nil, false, err
	}

	t, err = o.create(ctx, userChatID, username, firstName)
	if err != nil {
		if errors.Is(err, ticket.ErrDuplicateOpenTicket) {
			// Another writer won the race despite the per-user lock
			// (e.g. a second process). Reuse its ticket.
			existing, findErr := o.ticketRepo.FindOpenByUser(ctx, userChatID)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return t, true, nil
}

func (o *TicketOpener) create(ctx context.Context, userChatID int64, username, firstName string) (*ticket.Ticket, error) {
	t, err := ticket.NewTicket(userChatID, username, firstName)
	if err != nil {
		return nil, err
	}

	// A dedicated topic is only created under the per-user mode. Creation
	// failure degrades the ticket to shared-channel delivery; it never
	// aborts ticket creation.
	if o.settings.TopicMode(ctx) == setting.TopicModePerUser {
		label := truncateLabel(ticket.StatusOpen.Glyph() + " " + t.DisplayName())
		topicID, err := o.transport.CreateSubChannel(ctx, o.supportChatID, label)
		if err != nil {
			o.logger.Errorw("failed to create topic for ticket",
				"user_chat_id", userChatID, "error", err)
		} else if err := t.SetTopicID(topicID); err != nil {
			return nil, err
		}
	}

	if err := o.ticketRepo.Save(ctx, t); err != nil {
		return nil, err
	}

	if t.TopicID() != nil {
		o.postProfileCard(ctx, t)
	}

	return t, nil
}

// postProfileCard posts the user info card into the ticket's fresh topic.
// Failure is logged and otherwise ignored.
func (o *TicketOpener) postProfileCard(ctx context.Context, t *ticket.Ticket) {
	username := "not set"
	if t.Username() != "" {
		username = "@" + t.Username()
	}
	name := t.FirstName()
	if name == "" {
		name = "not set"
	}

	card := fmt.Sprintf(
		"👤 User profile\n\n🆔 ID: %d\n👤 Name: %s\n📱 Username: %s\n🎫 Ticket: #%d",
		t.UserChatID(), name, username, t.ID(),
	)

	dest := Destination{ChatID: o.supportChatID, ThreadID: *t.TopicID()}
	if _, err := o.transport.Send(ctx, dest, Content{Kind: ContentText, Text: card}); err != nil {
		o.logger.Errorw("failed to post profile card",
			"ticket_id", t.ID(), "topic_id", *t.TopicID(), "error", err)
	}
}
