package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
)

// BlockCallbackPrefix prefixes the callback payload of block toggle buttons.
const BlockCallbackPrefix = "block_"

// BlockCallbackData builds the callback payload that routes a button press
// back to the block toggle for the given user.
func BlockCallbackData(userChatID int64) string {
	return BlockCallbackPrefix + strconv.FormatInt(userChatID, 10)
}

// ToggleBlockCommand flips a user's blocked state.
type ToggleBlockCommand struct {
	UserChatID int64
	OperatorID int64
}

// ToggleBlockResult carries the new state and a human label for the
// confirmation message shown to the operator.
type ToggleBlockResult struct {
	UserChatID int64
	Blocked    bool
	UserLabel  string
}

type ToggleBlockExecutor interface {
	Execute(ctx context.Context, cmd ToggleBlockCommand) (*ToggleBlockResult, error)
}

// ToggleBlockUseCase blocks or unblocks a user. Blocking never touches the
// user's tickets: an open ticket stays open and resumes normally on unblock.
type ToggleBlockUseCase struct {
	blockRepo  blocklist.Repository
	ticketRepo ticket.Repository
}

func NewToggleBlockUseCase(blockRepo blocklist.Repository, ticketRepo ticket.Repository) *ToggleBlockUseCase {
	return &ToggleBlockUseCase{blockRepo: blockRepo, ticketRepo: ticketRepo}
}

func (uc *ToggleBlockUseCase) Execute(ctx context.Context, cmd ToggleBlockCommand) (*ToggleBlockResult, error) {
	blocked, err := uc.blockRepo.Toggle(ctx, cmd.UserChatID, cmd.OperatorID)
	if err != nil {
		return nil, err
	}

	label := fmt.Sprintf("User%d", cmd.UserChatID)
	t, err := uc.ticketRepo.FindLatestByUser(ctx, cmd.UserChatID)
	if err == nil {
		label = t.DisplayName()
	} else if !errors.Is(err, ticket.ErrTicketNotFound) {
		return nil, err
	}

	return &ToggleBlockResult{UserChatID: cmd.UserChatID, Blocked: blocked, UserLabel: label}, nil
}
