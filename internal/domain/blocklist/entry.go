// Package blocklist suppresses relaying for individual users. Block state is
// pure set membership: a stored entry means blocked, absence means not.
package blocklist

import (
	"fmt"
	"time"

	"github.com/relaydesk/relaydesk/internal/shared/biztime"
)

// BlockEntry records who blocked a user and when.
type BlockEntry struct {
	userChatID int64
	operatorID int64
	blockedAt  time.Time
}

// NewBlockEntry creates an entry for a freshly blocked user.
func NewBlockEntry(userChatID, operatorID int64) (*BlockEntry, error) {
	if userChatID == 0 {
		return nil, fmt.Errorf("user chat ID is required")
	}

	return &BlockEntry{
		userChatID: userChatID,
		operatorID: operatorID,
		blockedAt:  biztime.NowUTC(),
	}, nil
}

// ReconstructBlockEntry rebuilds a BlockEntry from the persistence layer.
func ReconstructBlockEntry(userChatID, operatorID int64, blockedAt time.Time) *BlockEntry {
	return &BlockEntry{
		userChatID: userChatID,
		operatorID: operatorID,
		blockedAt:  blockedAt,
	}
}

func (e *BlockEntry) UserChatID() int64 {
	return e.userChatID
}

func (e *BlockEntry) OperatorID() int64 {
	return e.operatorID
}

func (e *BlockEntry) BlockedAt() time.Time {
	return e.blockedAt
}
