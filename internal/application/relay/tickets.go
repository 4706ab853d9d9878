package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
	"github.com/relaydesk/relaydesk/internal/shared/biztime"
)

// openTicketsLimit caps the /open_tickets listing.
const openTicketsLimit = 50

// ListOpenTicketsUseCase renders the open ticket overview for operators,
// most recently active first.
type ListOpenTicketsUseCase struct {
	ticketRepo ticket.Repository
}

func NewListOpenTicketsUseCase(ticketRepo ticket.Repository) *ListOpenTicketsUseCase {
	return &ListOpenTicketsUseCase{ticketRepo: ticketRepo}
}

func (uc *ListOpenTicketsUseCase) Execute(ctx context.Context) (string, error) {
	tickets, err := uc.ticketRepo.ListOpen(ctx, openTicketsLimit)
	if err != nil {
		return "", err
	}

	if len(tickets) == 0 {
		return "📋 No open tickets.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Open tickets: %d\n", len(tickets))
	for _, t := range tickets {
		fmt.Fprintf(&b, "\n%s #%d — %s (ID: %d)\n    updated %s",
			t.Status().Glyph(), t.ID(), t.DisplayName(), t.UserChatID(),
			biztime.FormatForDisplay(t.UpdatedAt()))
	}
	return b.String(), nil
}

// TicketInfoCommand asks for the details of the ticket owning a relayed
// message.
type TicketInfoCommand struct {
	RepliedToMessageID int64
}

// TicketInfo is the resolved detail card. Ignored means the replied-to
// message has no correlation link.
type TicketInfo struct {
	Ticket  *ticket.Ticket
	Blocked bool
	Ignored bool
}

// Text renders the operator-facing info card.
func (i *TicketInfo) Text() string {
	t := i.Ticket
	username := "not set"
	if t.Username() != "" {
		username = "@" + t.Username()
	}
	name := t.FirstName()
	if name == "" {
		name = "not set"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎫 Ticket #%d\n\n", t.ID())
	fmt.Fprintf(&b, "%s Status: %s\n", t.Status().Glyph(), t.Status())
	fmt.Fprintf(&b, "👤 Name: %s\n", name)
	fmt.Fprintf(&b, "📱 Username: %s\n", username)
	fmt.Fprintf(&b, "🆔 ID: %d\n", t.UserChatID())
	fmt.Fprintf(&b, "📅 Created: %s", biztime.FormatForDisplay(t.CreatedAt()))
	if i.Blocked {
		b.WriteString("\n🚫 User is blocked")
	}
	return b.String()
}

// TicketInfoUseCase resolves a relayed message to its ticket and the user's
// blocked state.
type TicketInfoUseCase struct {
	ticketRepo ticket.Repository
	linkRepo   correlation.Repository
	blockRepo  blocklist.Repository
}

func NewTicketInfoUseCase(
	ticketRepo ticket.Repository,
	linkRepo correlation.Repository,
	blockRepo blocklist.Repository,
) *TicketInfoUseCase {
	return &TicketInfoUseCase{ticketRepo: ticketRepo, linkRepo: linkRepo, blockRepo: blockRepo}
}

func (uc *TicketInfoUseCase) Execute(ctx context.Context, cmd TicketInfoCommand) (*TicketInfo, error) {
	ticketID, err := uc.linkRepo.TicketIDByRelayedID(ctx, cmd.RepliedToMessageID)
	if err != nil {
		if errors.Is(err, correlation.ErrLinkNotFound) {
			return &TicketInfo{Ignored: true}, nil
		}
		return nil, err
	}

	t, err := uc.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	blocked, err := uc.blockRepo.IsBlocked(ctx, t.UserChatID())
	if err != nil {
		return nil, err
	}

	return &TicketInfo{Ticket: t, Blocked: blocked}, nil
}
