package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/relaydesk/relaydesk/internal/application/relay"
)

const (
	adminSessionPrefix = "admin:session:"
	adminSessionTTL    = 10 * time.Minute
)

// AdminSessionStore provides Redis-based storage for admin panel sessions.
// Sessions expire automatically so an abandoned prompt never wedges the
// panel.
type AdminSessionStore struct {
	client *redis.Client
}

// NewAdminSessionStore creates a new AdminSessionStore instance
func NewAdminSessionStore(client *redis.Client) *AdminSessionStore {
	return &AdminSessionStore{client: client}
}

var _ relay.SessionStore = (*AdminSessionStore)(nil)

// Get returns the admin's session. A missing or expired session reads as an
// idle one.
func (s *AdminSessionStore) Get(ctx context.Context, adminID int64) (*relay.AdminSession, error) {
	data, err := s.client.Get(ctx, sessionKey(adminID)).Bytes()
	if err == redis.Nil {
		return &relay.AdminSession{State: relay.SessionIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin session: %w", err)
	}

	var session relay.AdminSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode admin session: %w", err)
	}
	return &session, nil
}

// Put stores the session and refreshes its TTL.
func (s *AdminSessionStore) Put(ctx context.Context, adminID int64, session *relay.AdminSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode admin session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(adminID), data, adminSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store admin session: %w", err)
	}
	return nil
}

// Clear removes the session.
func (s *AdminSessionStore) Clear(ctx context.Context, adminID int64) error {
	if err := s.client.Del(ctx, sessionKey(adminID)).Err(); err != nil {
		return fmt.Errorf("failed to clear admin session: %w", err)
	}
	return nil
}

func sessionKey(adminID int64) string {
	return adminSessionPrefix + strconv.FormatInt(adminID, 10)
}
