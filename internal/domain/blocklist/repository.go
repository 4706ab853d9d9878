package blocklist

import "context"

// Repository defines block list persistence.
type Repository interface {
	// IsBlocked reports whether the user is currently blocked.
	IsBlocked(ctx context.Context, userChatID int64) (bool, error)

	// Toggle removes the entry if present (unblock) or inserts one (block)
	// and returns the new blocked state. Callers must inspect the return
	// value rather than assume which action ran.
	Toggle(ctx context.Context, userChatID, operatorID int64) (bool, error)
}
