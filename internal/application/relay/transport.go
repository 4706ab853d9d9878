// Package relay implements the routing core: inbound user messages are
// relayed into the support chat, operator replies are routed back through the
// message correlation index, and ticket lifecycle commands act on relayed
// messages. Topology (one topic per ticket vs a single shared topic) is read
// fresh from the settings store on every decision.
package relay

import "context"

// ContentKind identifies what a message carries.
type ContentKind string

const (
	ContentText     ContentKind = "text"
	ContentPhoto    ContentKind = "photo"
	ContentVideo    ContentKind = "video"
	ContentDocument ContentKind = "document"
	ContentVoice    ContentKind = "voice"
	ContentAudio    ContentKind = "audio"
)

// Content is the relayable payload of a message: either text, or a transport
// file handle with an optional caption. Actions become one-tap buttons under
// the delivered message.
type Content struct {
	Kind    ContentKind
	Text    string
	FileID  string
	Caption string
	Actions []Action
}

// Action is a button attached to a delivered message. Data is the opaque
// callback payload the transport hands back when the button is pressed.
type Action struct {
	Label string
	Data  string
}

// IsEmpty reports whether the message carried nothing relayable.
func (c Content) IsEmpty() bool {
	return c.Kind == ""
}

// Destination addresses a chat, optionally inside a sub-channel (forum
// topic). ThreadID 0 means the chat root.
type Destination struct {
	ChatID   int64
	ThreadID int64
}

// Transport is the external delivery collaborator. Implementations perform a
// single attempt per call; the relay core never retries.
type Transport interface {
	// Send delivers content to a destination and returns the delivered
	// message identifier.
	Send(ctx context.Context, dest Destination, content Content) (int64, error)

	// CreateSubChannel creates a named sub-channel in a chat and returns
	// its identifier.
	CreateSubChannel(ctx context.Context, chatID int64, label string) (int64, error)

	// RenameSubChannel changes a sub-channel's label.
	RenameSubChannel(ctx context.Context, chatID, subChannelID int64, label string) error

	// DeleteMessage removes a previously sent message.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
}

// maxLabelRunes is the transport's sub-channel label length limit.
const maxLabelRunes = 128

// truncateLabel trims a label to the transport limit at a rune boundary.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelRunes {
		return s
	}
	return string(runes[:maxLabelRunes])
}
