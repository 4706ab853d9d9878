package ticket

import "fmt"

// Status is the ticket lifecycle state. There is no terminal state: closed
// tickets can always be reopened.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

func (s Status) IsOpen() bool {
	return s == StatusOpen
}

func (s Status) IsClosed() bool {
	return s == StatusClosed
}

// Glyph returns the status marker prefixed to topic labels.
func (s Status) Glyph() string {
	if s == StatusClosed {
		return "🔴"
	}
	return "🟢"
}

func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return st, nil
}
