package ticket

import (
	"fmt"
	"time"

	"github.com/relaydesk/relaydesk/internal/shared/biztime"
)

// Ticket represents one user's support conversation with lifecycle state
// open/closed. A ticket optionally owns a dedicated forum topic when it was
// created under the per-user topic mode.
type Ticket struct {
	id         uint
	userChatID int64
	username   string
	firstName  string
	status     Status
	topicID    *int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewTicket creates an open ticket for a user's first message.
func NewTicket(userChatID int64, username, firstName string) (*Ticket, error) {
	if userChatID == 0 {
		return nil, fmt.Errorf("user chat ID is required")
	}

	now := biztime.NowUTC()
	return &Ticket{
		userChatID: userChatID,
		username:   username,
		firstName:  firstName,
		status:     StatusOpen,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructTicket rebuilds a Ticket from the persistence layer.
func ReconstructTicket(
	id uint,
	userChatID int64,
	username string,
	firstName string,
	status Status,
	topicID *int64,
	createdAt, updatedAt time.Time,
) (*Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket ID cannot be zero")
	}
	if userChatID == 0 {
		return nil, fmt.Errorf("user chat ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	return &Ticket{
		id:         id,
		userChatID: userChatID,
		username:   username,
		firstName:  firstName,
		status:     status,
		topicID:    topicID,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (t *Ticket) ID() uint {
	return t.id
}

func (t *Ticket) UserChatID() int64 {
	return t.userChatID
}

func (t *Ticket) Username() string {
	return t.username
}

func (t *Ticket) FirstName() string {
	return t.firstName
}

func (t *Ticket) Status() Status {
	return t.status
}

func (t *Ticket) TopicID() *int64 {
	return t.topicID
}

func (t *Ticket) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Ticket) UpdatedAt() time.Time {
	return t.updatedAt
}

// DisplayName returns the label used for topic names and relay headers:
// username, then first name, then a numeric fallback.
func (t *Ticket) DisplayName() string {
	if t.username != "" {
		return t.username
	}
	if t.firstName != "" {
		return t.firstName
	}
	return fmt.Sprintf("User%d", t.userChatID)
}

// SetID sets the ticket ID after the initial insert.
func (t *Ticket) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("ticket ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket ID cannot be zero")
	}
	t.id = id
	return nil
}

// SetTopicID records the dedicated topic created for this ticket. The topic is
// immutable once set; tickets created under the shared mode never get one.
func (t *Ticket) SetTopicID(topicID int64) error {
	if t.topicID != nil {
		return fmt.Errorf("topic ID is already set")
	}
	t.topicID = &topicID
	return nil
}

// Close transitions the ticket to closed. Closing a closed ticket is a no-op.
func (t *Ticket) Close() {
	if t.status.IsClosed() {
		return
	}
	t.status = StatusClosed
	t.updatedAt = biztime.NowUTC()
}

// Reopen transitions the ticket back to open. Reopening an open ticket is a
// no-op; closed tickets can always be reopened.
func (t *Ticket) Reopen() {
	if t.status.IsOpen() {
		return
	}
	t.status = StatusOpen
	t.updatedAt = biztime.NowUTC()
}
