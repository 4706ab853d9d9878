// Package correlation maintains the durable link from a relayed support-chat
// message back to its origin user, message, and ticket. The reverse lookup is
// the only path from an operator's reply back to a user.
package correlation

import "fmt"

// MessageLink records one relayed message's origin. Links are written once
// after a successful relay and never updated or deleted, so the historical
// trace survives ticket closure.
type MessageLink struct {
	userChatID       int64
	userMessageID    int64
	relayedMessageID int64
	ticketID         uint
}

// NewMessageLink creates a link after a successful relay send.
func NewMessageLink(userChatID, userMessageID, relayedMessageID int64, ticketID uint) (*MessageLink, error) {
	if userChatID == 0 {
		return nil, fmt.Errorf("user chat ID is required")
	}
	if relayedMessageID == 0 {
		return nil, fmt.Errorf("relayed message ID is required")
	}
	if ticketID == 0 {
		return nil, fmt.Errorf("ticket ID is required")
	}

	return &MessageLink{
		userChatID:       userChatID,
		userMessageID:    userMessageID,
		relayedMessageID: relayedMessageID,
		ticketID:         ticketID,
	}, nil
}

// ReconstructMessageLink rebuilds a MessageLink from the persistence layer.
func ReconstructMessageLink(userChatID, userMessageID, relayedMessageID int64, ticketID uint) *MessageLink {
	return &MessageLink{
		userChatID:       userChatID,
		userMessageID:    userMessageID,
		relayedMessageID: relayedMessageID,
		ticketID:         ticketID,
	}
}

func (l *MessageLink) UserChatID() int64 {
	return l.userChatID
}

func (l *MessageLink) UserMessageID() int64 {
	return l.userMessageID
}

func (l *MessageLink) RelayedMessageID() int64 {
	return l.relayedMessageID
}

func (l *MessageLink) TicketID() uint {
	return l.ticketID
}
