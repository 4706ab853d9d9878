package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/domain/correlation"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// OperatorReply is an operator's reply to a relayed message in the support
// chat. SourceThreadID is the topic the reply was typed in, used to address
// warnings back at the operator.
type OperatorReply struct {
	RepliedToMessageID int64
	SourceThreadID     int64
	Content            Content
}

// RelayReplyResult reports routing of an operator reply. Ignored means the
// replied-to message has no correlation link (the operator replied to
// something the bot did not relay).
type RelayReplyResult struct {
	TicketID  uint
	Delivered bool
	Ignored   bool
	Blocked   bool
}

type RelayReplyExecutor interface {
	Execute(ctx context.Context, reply OperatorReply) (*RelayReplyResult, error)
}

// RelayReplyUseCase routes an operator's reply back to the originating user
// through the message correlation index.
type RelayReplyUseCase struct {
	linkRepo      correlation.Repository
	blockRepo     blocklist.Repository
	transport     Transport
	supportChatID int64
	logger        logger.Interface
}

func NewRelayReplyUseCase(
	linkRepo correlation.Repository,
	blockRepo blocklist.Repository,
	transport Transport,
	supportChatID int64,
	logger logger.Interface,
) *RelayReplyUseCase {
	return &RelayReplyUseCase{
		linkRepo:      linkRepo,
		blockRepo:     blockRepo,
		transport:     transport,
		supportChatID: supportChatID,
		logger:        logger,
	}
}

func (uc *RelayReplyUseCase) Execute(ctx context.Context, reply OperatorReply) (*RelayReplyResult, error) {
	if reply.Content.IsEmpty() {
		return &RelayReplyResult{Ignored: true}, nil
	}

	link, err := uc.linkRepo.FindByRelayedID(ctx, reply.RepliedToMessageID)
	if err != nil {
		if errors.Is(err, correlation.ErrLinkNotFound) {
			return &RelayReplyResult{Ignored: true}, nil
		}
		return nil, err
	}

	blocked, err := uc.blockRepo.IsBlocked(ctx, link.UserChatID())
	if err != nil {
		return nil, err
	}
	if blocked {
		uc.warnBlocked(ctx, reply.SourceThreadID, link.UserChatID())
		return &RelayReplyResult{TicketID: link.TicketID(), Blocked: true}, nil
	}

	// Replies go to the user verbatim, with no header.
	if _, err := uc.transport.Send(ctx, Destination{ChatID: link.UserChatID()}, reply.Content); err != nil {
		uc.logger.Errorw("failed to deliver operator reply",
			"user_chat_id", link.UserChatID(), "ticket_id", link.TicketID(), "error", err)
		return &RelayReplyResult{TicketID: link.TicketID()}, nil
	}

	return &RelayReplyResult{TicketID: link.TicketID(), Delivered: true}, nil
}

// warnBlocked tells the operator, in the thread they replied from, that the
// target user is blocked and the reply was not delivered. Best effort.
func (uc *RelayReplyUseCase) warnBlocked(ctx context.Context, threadID, userChatID int64) {
	text := fmt.Sprintf("⚠️ User %d is blocked. The reply was not delivered.", userChatID)
	dest := Destination{ChatID: uc.supportChatID, ThreadID: threadID}
	if _, err := uc.transport.Send(ctx, dest, Content{Kind: ContentText, Text: text}); err != nil {
		uc.logger.Errorw("failed to post blocked-user warning",
			"user_chat_id", userChatID, "error", err)
	}
}
