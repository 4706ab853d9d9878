package telegram

import (
	"context"
	"fmt"

	"github.com/relaydesk/relaydesk/internal/application/relay"
)

// TransportAdapter implements relay.Transport over the Bot API service.
type TransportAdapter struct {
	bot *BotService
}

func NewTransportAdapter(bot *BotService) *TransportAdapter {
	return &TransportAdapter{bot: bot}
}

var _ relay.Transport = (*TransportAdapter)(nil)

func (a *TransportAdapter) Send(ctx context.Context, dest relay.Destination, content relay.Content) (int64, error) {
	opts := &SendOptions{ThreadID: dest.ThreadID}
	if len(content.Actions) > 0 {
		row := make([]InlineKeyboardButton, 0, len(content.Actions))
		for _, action := range content.Actions {
			row = append(row, NewInlineKeyboardButton(action.Label, action.Data))
		}
		opts.ReplyMarkup = NewInlineKeyboard(row)
	}
	if opts.ThreadID == 0 && opts.ReplyMarkup == nil {
		opts = nil
	}

	switch content.Kind {
	case relay.ContentText:
		return a.bot.SendMessage(ctx, dest.ChatID, content.Text, opts)
	case relay.ContentPhoto:
		return a.bot.SendPhoto(ctx, dest.ChatID, content.FileID, content.Caption, opts)
	case relay.ContentVideo:
		return a.bot.SendVideo(ctx, dest.ChatID, content.FileID, content.Caption, opts)
	case relay.ContentDocument:
		return a.bot.SendDocument(ctx, dest.ChatID, content.FileID, content.Caption, opts)
	case relay.ContentVoice:
		return a.bot.SendVoice(ctx, dest.ChatID, content.FileID, content.Caption, opts)
	case relay.ContentAudio:
		return a.bot.SendAudio(ctx, dest.ChatID, content.FileID, content.Caption, opts)
	default:
		return 0, fmt.Errorf("unsupported content kind: %s", content.Kind)
	}
}

func (a *TransportAdapter) CreateSubChannel(ctx context.Context, chatID int64, label string) (int64, error) {
	return a.bot.CreateForumTopic(ctx, chatID, label)
}

func (a *TransportAdapter) RenameSubChannel(ctx context.Context, chatID, subChannelID int64, label string) error {
	return a.bot.EditForumTopic(ctx, chatID, subChannelID, label)
}

func (a *TransportAdapter) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return a.bot.DeleteMessage(ctx, chatID, messageID)
}
