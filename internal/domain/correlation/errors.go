package correlation

import "errors"

// ErrLinkNotFound is returned when a relayed message has no recorded origin.
var ErrLinkNotFound = errors.New("message link not found")
