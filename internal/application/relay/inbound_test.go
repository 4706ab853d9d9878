package relay_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/domain/setting"
)

const (
	testSupportChatID  = int64(-1001234)
	testSupportTopicID = int64(77)
	testUserChatID     = int64(4242)
)

type inboundHarness struct {
	tickets   *memTicketRepo
	links     *memLinkRepo
	blocks    *mockBlockRepo
	settings  *relay.Settings
	transport *fakeTransport
	uc        *relay.RelayInboundUseCase
}

func newInboundHarness() *inboundHarness {
	h := &inboundHarness{
		tickets:   newMemTicketRepo(),
		links:     newMemLinkRepo(),
		blocks:    &mockBlockRepo{},
		transport: newFakeTransport(),
	}
	h.settings = relay.NewSettings(newMemSettingRepo())
	opener := relay.NewTicketOpener(h.tickets, h.settings, h.transport, testSupportChatID, testLogger())
	h.uc = relay.NewRelayInboundUseCase(
		opener, h.blocks, h.links, h.settings, h.transport,
		testSupportChatID, testSupportTopicID, testLogger(),
	)
	return h
}

func textMessage(text string) relay.InboundMessage {
	return relay.InboundMessage{
		UserChatID: testUserChatID,
		MessageID:  10,
		Username:   "alice_u",
		FirstName:  "Alice",
		Content:    relay.Content{Kind: relay.ContentText, Text: text},
	}
}

func TestRelayInbound_FirstMessageOpensTicket(t *testing.T) {
	h := newInboundHarness()

	result, err := h.uc.Execute(context.Background(), textMessage("my order is stuck"))
	require.NoError(t, err)

	assert.True(t, result.NewTicket)
	assert.True(t, result.Delivered)
	assert.False(t, result.Dropped)
	require.NotZero(t, result.TicketID)

	// Dedicated topic created under the default per-user mode.
	require.Len(t, h.transport.created, 1)
	assert.Equal(t, "🟢 alice_u", h.transport.created[0])

	// User got the creation acknowledgement.
	toUser := h.transport.sentTo(testUserChatID)
	require.Len(t, toUser, 1)
	assert.Contains(t, toUser[0].Content.Text, "ticket #1")

	// Profile card and the relayed message both landed in the topic.
	toSupport := h.transport.sentTo(testSupportChatID)
	require.Len(t, toSupport, 2)
	assert.Contains(t, toSupport[0].Content.Text, "👤 User profile")
	assert.Contains(t, toSupport[0].Content.Text, "🎫 Ticket: #1")

	relayed := toSupport[1]
	assert.NotZero(t, relayed.Dest.ThreadID)
	assert.Equal(t, "from Alice (@alice_u):\n\nmy order is stuck", relayed.Content.Text)

	// The relayed message is correlated back to the user.
	link, err := h.links.FindByRelayedID(context.Background(), relayed.ID)
	require.NoError(t, err)
	assert.Equal(t, testUserChatID, link.UserChatID())
	assert.Equal(t, result.TicketID, link.TicketID())
}

func TestRelayInbound_SecondMessageReusesOpenTicket(t *testing.T) {
	h := newInboundHarness()

	first, err := h.uc.Execute(context.Background(), textMessage("first"))
	require.NoError(t, err)

	second, err := h.uc.Execute(context.Background(), textMessage("second"))
	require.NoError(t, err)

	assert.False(t, second.NewTicket)
	assert.Equal(t, first.TicketID, second.TicketID)
	assert.Len(t, h.transport.created, 1)
	// Only the first message triggers the acknowledgement.
	assert.Len(t, h.transport.sentTo(testUserChatID), 1)
}

func TestRelayInbound_BlockedUserIsDroppedSilently(t *testing.T) {
	h := newInboundHarness()
	h.blocks.isBlockedFunc = func(ctx context.Context, userChatID int64) (bool, error) {
		return true, nil
	}

	result, err := h.uc.Execute(context.Background(), textMessage("hello?"))
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.Empty(t, h.transport.sent)
}

func TestRelayInbound_EmptyContentIsDropped(t *testing.T) {
	h := newInboundHarness()

	result, err := h.uc.Execute(context.Background(), relay.InboundMessage{
		UserChatID: testUserChatID,
		MessageID:  10,
	})
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.Empty(t, h.transport.sent)
}

func TestRelayInbound_SendFailureDropsWithoutLink(t *testing.T) {
	h := newInboundHarness()

	// Open the ticket first so the failure hits only the relay send.
	_, err := h.uc.Execute(context.Background(), textMessage("first"))
	require.NoError(t, err)

	h.transport.sendErr = assert.AnError
	result, err := h.uc.Execute(context.Background(), textMessage("second"))
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.False(t, result.Delivered)
}

func TestRelayInbound_SingleTopicModeUsesSharedTopic(t *testing.T) {
	h := newInboundHarness()
	require.NoError(t, h.settings.SetTopicMode(context.Background(), setting.TopicModeSingleTopic))

	result, err := h.uc.Execute(context.Background(), textMessage("need help"))
	require.NoError(t, err)
	assert.True(t, result.NewTicket)

	// No per-ticket topic in shared mode.
	assert.Empty(t, h.transport.created)

	toSupport := h.transport.sentTo(testSupportChatID)
	require.Len(t, toSupport, 1)
	relayed := toSupport[0]
	assert.Equal(t, testSupportTopicID, relayed.Dest.ThreadID)

	// The first message of a ticket carries the verbose banner.
	assert.Contains(t, relayed.Content.Text, "🎫 NEW TICKET")
	assert.Contains(t, relayed.Content.Text, "👤 User: Alice")
	assert.Contains(t, relayed.Content.Text, "need help")

	// Subsequent messages fall back to the compact header.
	_, err = h.uc.Execute(context.Background(), textMessage("still there?"))
	require.NoError(t, err)
	last := h.transport.lastSent()
	assert.True(t, strings.HasPrefix(last.Content.Text, "from Alice (@alice_u):"))
}

func TestRelayInbound_AttachmentHeaderGoesIntoCaption(t *testing.T) {
	h := newInboundHarness()

	msg := textMessage("")
	msg.Content = relay.Content{Kind: relay.ContentPhoto, FileID: "file-1", Caption: "receipt"}

	result, err := h.uc.Execute(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, result.Delivered)

	relayed := h.transport.lastSent()
	assert.Equal(t, relay.ContentPhoto, relayed.Content.Kind)
	assert.Equal(t, "file-1", relayed.Content.FileID)
	assert.Equal(t, "from Alice (@alice_u):\n\nreceipt", relayed.Content.Caption)
}

func TestRelayInbound_HeaderFallsBackWithoutNames(t *testing.T) {
	h := newInboundHarness()

	msg := textMessage("anonymous-ish")
	msg.Username = ""
	msg.FirstName = ""

	_, err := h.uc.Execute(context.Background(), msg)
	require.NoError(t, err)

	relayed := h.transport.lastSent()
	assert.True(t, strings.HasPrefix(relayed.Content.Text, "from User4242:"))
}

func TestRelayInbound_RelayedMessageCarriesBlockButton(t *testing.T) {
	h := newInboundHarness()

	_, err := h.uc.Execute(context.Background(), textMessage("spam maybe"))
	require.NoError(t, err)

	relayed := h.transport.lastSent()
	require.Len(t, relayed.Content.Actions, 1)
	assert.Equal(t, "block_4242", relayed.Content.Actions[0].Data)
	assert.Contains(t, relayed.Content.Actions[0].Label, "Block")

	// The acknowledgement sent to the user carries no buttons.
	toUser := h.transport.sentTo(testUserChatID)
	require.Len(t, toUser, 1)
	assert.Empty(t, toUser[0].Content.Actions)
}

func TestRelayInbound_LongTopicLabelIsTruncated(t *testing.T) {
	h := newInboundHarness()

	msg := textMessage("hi")
	msg.Username = strings.Repeat("я", 200)

	_, err := h.uc.Execute(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, h.transport.created, 1)
	assert.Equal(t, 128, len([]rune(h.transport.created[0])))
}
