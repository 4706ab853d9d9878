package relay_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/domain/correlation"
)

func newReplyUseCase(links *memLinkRepo, blocks *mockBlockRepo, transport *fakeTransport) *relay.RelayReplyUseCase {
	return relay.NewRelayReplyUseCase(links, blocks, transport, testSupportChatID, testLogger())
}

func recordedLink(t *testing.T, links *memLinkRepo, relayedID int64) {
	t.Helper()
	link, err := correlation.NewMessageLink(testUserChatID, 10, relayedID, 1)
	require.NoError(t, err)
	require.NoError(t, links.Record(context.Background(), link))
}

func TestRelayReply_DeliversVerbatimToUser(t *testing.T) {
	links := newMemLinkRepo()
	recordedLink(t, links, 9001)
	transport := newFakeTransport()
	uc := newReplyUseCase(links, &mockBlockRepo{}, transport)

	result, err := uc.Execute(context.Background(), relay.OperatorReply{
		RepliedToMessageID: 9001,
		Content:            relay.Content{Kind: relay.ContentText, Text: "we refunded your order"},
	})
	require.NoError(t, err)

	assert.True(t, result.Delivered)
	assert.Equal(t, uint(1), result.TicketID)

	sent := transport.lastSent()
	require.NotNil(t, sent)
	assert.Equal(t, testUserChatID, sent.Dest.ChatID)
	// No header is added on the way back.
	assert.Equal(t, "we refunded your order", sent.Content.Text)
}

func TestRelayReply_UnlinkedMessageIsIgnored(t *testing.T) {
	transport := newFakeTransport()
	uc := newReplyUseCase(newMemLinkRepo(), &mockBlockRepo{}, transport)

	result, err := uc.Execute(context.Background(), relay.OperatorReply{
		RepliedToMessageID: 1,
		Content:            relay.Content{Kind: relay.ContentText, Text: "anyone?"},
	})
	require.NoError(t, err)

	assert.True(t, result.Ignored)
	assert.Empty(t, transport.sent)
}

func TestRelayReply_BlockedUserGetsOperatorWarning(t *testing.T) {
	links := newMemLinkRepo()
	recordedLink(t, links, 9001)
	transport := newFakeTransport()
	blocks := &mockBlockRepo{
		isBlockedFunc: func(ctx context.Context, userChatID int64) (bool, error) {
			return true, nil
		},
	}
	uc := newReplyUseCase(links, blocks, transport)

	result, err := uc.Execute(context.Background(), relay.OperatorReply{
		RepliedToMessageID: 9001,
		SourceThreadID:     55,
		Content:            relay.Content{Kind: relay.ContentText, Text: "hello"},
	})
	require.NoError(t, err)

	assert.True(t, result.Blocked)
	assert.False(t, result.Delivered)

	// Nothing reached the user; the warning went back into the operator's
	// thread.
	assert.Empty(t, transport.sentTo(testUserChatID))
	toSupport := transport.sentTo(testSupportChatID)
	require.Len(t, toSupport, 1)
	assert.Equal(t, int64(55), toSupport[0].Dest.ThreadID)
	assert.Contains(t, toSupport[0].Content.Text, "blocked")
}

func TestRelayReply_AttachmentReplyKeepsFileAndCaption(t *testing.T) {
	links := newMemLinkRepo()
	recordedLink(t, links, 9001)
	transport := newFakeTransport()
	uc := newReplyUseCase(links, &mockBlockRepo{}, transport)

	result, err := uc.Execute(context.Background(), relay.OperatorReply{
		RepliedToMessageID: 9001,
		Content:            relay.Content{Kind: relay.ContentDocument, FileID: "doc-1", Caption: "invoice"},
	})
	require.NoError(t, err)
	assert.True(t, result.Delivered)

	sent := transport.lastSent()
	assert.Equal(t, relay.ContentDocument, sent.Content.Kind)
	assert.Equal(t, "doc-1", sent.Content.FileID)
	assert.Equal(t, "invoice", sent.Content.Caption)
}

func TestRelayReply_DeliveryFailureIsSwallowed(t *testing.T) {
	links := newMemLinkRepo()
	recordedLink(t, links, 9001)
	transport := newFakeTransport()
	transport.sendErr = assert.AnError
	uc := newReplyUseCase(links, &mockBlockRepo{}, transport)

	result, err := uc.Execute(context.Background(), relay.OperatorReply{
		RepliedToMessageID: 9001,
		Content:            relay.Content{Kind: relay.ContentText, Text: "hello"},
	})
	require.NoError(t, err)

	assert.False(t, result.Delivered)
	assert.False(t, result.Ignored)
	assert.Equal(t, uint(1), result.TicketID)
}
