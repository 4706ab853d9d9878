package correlation

import "context"

// Repository defines message link persistence. Lookup misses return
// ErrLinkNotFound and are treated as normal control flow by callers.
type Repository interface {
	// Record upserts a link keyed by (user chat ID, user message ID).
	Record(ctx context.Context, link *MessageLink) error

	// FindByRelayedID is the reverse lookup that makes operator replies
	// routable.
	FindByRelayedID(ctx context.Context, relayedMessageID int64) (*MessageLink, error)

	// TicketIDByRelayedID resolves the owning ticket of a relayed message,
	// used by close/reopen/info commands.
	TicketIDByRelayedID(ctx context.Context, relayedMessageID int64) (uint, error)
}
