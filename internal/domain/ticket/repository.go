package ticket

import "context"

// Repository defines ticket persistence. FindOpenByUser returning
// ErrTicketNotFound is normal control flow, not a failure.
type Repository interface {
	// Save inserts a new ticket and assigns its ID.
	Save(ctx context.Context, t *Ticket) error

	// Update persists status/updatedAt changes of an existing ticket.
	Update(ctx context.Context, t *Ticket) error

	// FindByID returns the ticket with the given ID.
	FindByID(ctx context.Context, id uint) (*Ticket, error)

	// FindOpenByUser returns the most recent open ticket for the user.
	FindOpenByUser(ctx context.Context, userChatID int64) (*Ticket, error)

	// FindLatestByUser returns the user's most recent ticket regardless of
	// status, used to label block/unblock confirmations.
	FindLatestByUser(ctx context.Context, userChatID int64) (*Ticket, error)

	// ListOpen returns open tickets ordered by updatedAt descending.
	ListOpen(ctx context.Context, limit int) ([]*Ticket, error)
}
