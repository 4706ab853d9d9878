package relay

import "context"

// SessionState is the admin panel conversation state. The panel is a small
// two-step flow: the admin picks an action from the inline menu, and when the
// action needs text input the next message from that admin is consumed as the
// new value.
type SessionState string

const (
	SessionIdle             SessionState = "idle"
	SessionAwaitingGreeting SessionState = "awaiting_greeting"
	SessionAwaitingHelp     SessionState = "awaiting_help"
)

// AdminSession tracks one admin's panel interaction. MenuChatID and
// MenuMessageID locate the menu message for in-place edits; PromptMessageID
// is the "send me the new text" prompt deleted once input arrives.
type AdminSession struct {
	State           SessionState `json:"state"`
	MenuChatID      int64        `json:"menu_chat_id"`
	MenuMessageID   int64        `json:"menu_message_id"`
	PromptMessageID int64        `json:"prompt_message_id"`
}

// SessionStore holds admin sessions between updates. Implementations expire
// stale sessions; a missing session reads as an idle one.
type SessionStore interface {
	Get(ctx context.Context, adminID int64) (*AdminSession, error)
	Put(ctx context.Context, adminID int64, session *AdminSession) error
	Clear(ctx context.Context, adminID int64) error
}
