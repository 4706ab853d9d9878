package relay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/domain/ticket"
)

func TestTicketOpener_TopicCreationFailureDegradesToChatRoot(t *testing.T) {
	tickets := newMemTicketRepo()
	transport := newFakeTransport()
	transport.createErr = assert.AnError
	settings := relay.NewSettings(newMemSettingRepo())
	opener := relay.NewTicketOpener(tickets, settings, transport, testSupportChatID, testLogger())

	opened, isNew, err := opener.FindOrCreate(context.Background(), testUserChatID, "alice_u", "Alice")
	require.NoError(t, err)

	assert.True(t, isNew)
	assert.Nil(t, opened.TopicID())
	// No topic means no profile card either.
	assert.Empty(t, transport.sent)
}

func TestTicketOpener_InsertConflictReusesWinner(t *testing.T) {
	winner, err := ticket.ReconstructTicket(
		7, testUserChatID, "alice_u", "Alice", ticket.StatusOpen, nil,
		time.Now().UTC(), time.Now().UTC(),
	)
	require.NoError(t, err)

	lookups := 0
	repo := &mockTicketRepo{
		findOpenByUserFunc: func(ctx context.Context, userChatID int64) (*ticket.Ticket, error) {
			lookups++
			if lookups == 1 {
				return nil, ticket.ErrTicketNotFound
			}
			return winner, nil
		},
		saveFunc: func(ctx context.Context, tk *ticket.Ticket) error {
			return ticket.ErrDuplicateOpenTicket
		},
	}

	settings := relay.NewSettings(newMemSettingRepo())
	opener := relay.NewTicketOpener(repo, settings, newFakeTransport(), testSupportChatID, testLogger())

	opened, isNew, err := opener.FindOrCreate(context.Background(), testUserChatID, "alice_u", "Alice")
	require.NoError(t, err)

	assert.False(t, isNew)
	assert.Equal(t, uint(7), opened.ID())
	assert.Equal(t, 2, lookups)
}
