package ticket

import "errors"

var (
	// ErrTicketNotFound is returned when no ticket matches a lookup.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrDuplicateOpenTicket is returned when an insert collides with the
	// partial unique index guarding one open ticket per user.
	ErrDuplicateOpenTicket = errors.New("user already has an open ticket")
)
