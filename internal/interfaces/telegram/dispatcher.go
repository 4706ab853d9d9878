// Package telegram routes incoming bot updates to the relay usecases:
// private chats feed the inbound relay and the admin panel, the support chat
// feeds reply routing and ticket commands.
package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/domain/blocklist"
	tg "github.com/relaydesk/relaydesk/internal/infrastructure/telegram"
	sharedConfig "github.com/relaydesk/relaydesk/internal/shared/config"
	"github.com/relaydesk/relaydesk/internal/shared/logger"
)

// botAPI is the slice of the bot service the dispatcher talks to directly,
// for messages that are not relayed content (command replies, menus,
// prompts).
type botAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *tg.SendOptions) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard any) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string, showAlert bool) error
	GetBotUsername() string
}

// UseCases bundles the relay operations the dispatcher routes to.
type UseCases struct {
	RelayInbound relay.RelayInboundExecutor
	RelayReply   relay.RelayReplyExecutor
	ChangeStatus relay.ChangeTicketStatusExecutor
	ToggleBlock  *relay.ToggleBlockUseCase
	ListOpen     *relay.ListOpenTicketsUseCase
	TicketInfo   *relay.TicketInfoUseCase
}

// Dispatcher implements the polling update handler.
type Dispatcher struct {
	bot       botAPI
	usecases  UseCases
	blockRepo blocklist.Repository
	settings  *relay.Settings
	sessions  relay.SessionStore
	config    sharedConfig.TelegramConfig
	logger    logger.Interface
}

func NewDispatcher(
	bot botAPI,
	usecases UseCases,
	blockRepo blocklist.Repository,
	settings *relay.Settings,
	sessions relay.SessionStore,
	config sharedConfig.TelegramConfig,
	log logger.Interface,
) *Dispatcher {
	return &Dispatcher{
		bot:       bot,
		usecases:  usecases,
		blockRepo: blockRepo,
		settings:  settings,
		sessions:  sessions,
		config:    config,
		logger:    log,
	}
}

var _ tg.UpdateHandler = (*Dispatcher)(nil)

// HandleUpdate processes a single Telegram update
func (d *Dispatcher) HandleUpdate(ctx context.Context, update *tg.Update) error {
	if update.CallbackQuery != nil {
		return d.handleCallback(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return nil
	}

	if msg.Chat.IsPrivate() {
		return d.handlePrivateMessage(ctx, msg)
	}
	if msg.Chat != nil && msg.Chat.ID == d.config.SupportChatID {
		return d.handleSupportMessage(ctx, msg)
	}
	return nil
}

func (d *Dispatcher) handlePrivateMessage(ctx context.Context, msg *tg.Message) error {
	command := parseCommand(msg.Text, d.bot.GetBotUsername())

	// Blocked users get no command replies, not even the greeting. Their
	// plain messages are dropped by the inbound relay itself.
	if command != "" {
		blocked, err := d.blockRepo.IsBlocked(ctx, msg.Chat.ID)
		if err != nil {
			return err
		}
		if blocked {
			return nil
		}
	}

	switch command {
	case "/start":
		_, err := d.bot.SendMessage(ctx, msg.Chat.ID, d.settings.Greeting(ctx), nil)
		return err
	case "/help":
		_, err := d.bot.SendMessage(ctx, msg.Chat.ID, d.settings.Help(ctx), nil)
		return err
	case "/admin":
		if !d.config.IsAdmin(msg.From.ID) {
			_, err := d.bot.SendMessage(ctx, msg.Chat.ID, d.settings.Help(ctx), nil)
			return err
		}
		return d.openAdminMenu(ctx, msg.From.ID, msg.Chat.ID)
	}

	// A pending admin prompt consumes the next plain message.
	if d.config.IsAdmin(msg.From.ID) && command == "" {
		consumed, err := d.consumeAdminInput(ctx, msg)
		if err != nil || consumed {
			return err
		}
	}

	if command != "" {
		// Unknown command: answer with the help text instead of relaying
		// a stray slash command to operators.
		_, err := d.bot.SendMessage(ctx, msg.Chat.ID, d.settings.Help(ctx), nil)
		return err
	}

	result, err := d.usecases.RelayInbound.Execute(ctx, relay.InboundMessage{
		UserChatID: msg.Chat.ID,
		MessageID:  msg.MessageID,
		Username:   msg.From.Username,
		FirstName:  msg.From.FirstName,
		Content:    extractContent(msg),
	})
	if err != nil {
		return err
	}
	if result.Dropped {
		d.logger.Debugw("inbound message dropped",
			"user_chat_id", msg.Chat.ID, "message_id", msg.MessageID)
	}
	return nil
}

func (d *Dispatcher) handleSupportMessage(ctx context.Context, msg *tg.Message) error {
	switch parseCommand(msg.Text, d.bot.GetBotUsername()) {
	case "/close":
		return d.handleStatusCommand(ctx, msg, true)
	case "/reopen":
		return d.handleStatusCommand(ctx, msg, false)
	case "/ticket":
		return d.handleTicketCommand(ctx, msg)
	case "/open_tickets":
		return d.handleOpenTicketsCommand(ctx, msg)
	case "":
	default:
		return nil
	}

	if msg.ReplyToMessage == nil {
		return nil
	}

	result, err := d.usecases.RelayReply.Execute(ctx, relay.OperatorReply{
		RepliedToMessageID: msg.ReplyToMessage.MessageID,
		SourceThreadID:     msg.MessageThreadID,
		Content:            extractContent(msg),
	})
	if err != nil {
		return err
	}
	if result.Ignored {
		d.logger.Debugw("operator reply ignored, no linked message",
			"replied_to", msg.ReplyToMessage.MessageID)
	}
	return nil
}

func (d *Dispatcher) handleStatusCommand(ctx context.Context, msg *tg.Message, close bool) error {
	if msg.ReplyToMessage == nil {
		return d.replyInThread(ctx, msg, "↩️ Reply to a relayed message to use this command.")
	}

	result, err := d.usecases.ChangeStatus.Execute(ctx, relay.ChangeTicketStatusCommand{
		RepliedToMessageID: msg.ReplyToMessage.MessageID,
		Close:              close,
	})
	if err != nil {
		return err
	}

	switch {
	case result.Ignored:
		return d.replyInThread(ctx, msg, "↩️ That message is not linked to a ticket.")
	case result.Unchanged:
		return d.replyInThread(ctx, msg, statusUnchangedText(result))
	default:
		return d.replyInThread(ctx, msg, statusChangedText(result))
	}
}

func (d *Dispatcher) handleTicketCommand(ctx context.Context, msg *tg.Message) error {
	if msg.ReplyToMessage == nil {
		return d.replyInThread(ctx, msg, "↩️ Reply to a relayed message to use this command.")
	}

	info, err := d.usecases.TicketInfo.Execute(ctx, relay.TicketInfoCommand{
		RepliedToMessageID: msg.ReplyToMessage.MessageID,
	})
	if err != nil {
		return err
	}
	if info.Ignored {
		return d.replyInThread(ctx, msg, "↩️ That message is not linked to a ticket.")
	}

	keyboard := tg.NewInlineKeyboard(
		tg.NewInlineKeyboardRow(
			tg.NewInlineKeyboardButton(blockButtonLabel(info.Blocked), relay.BlockCallbackData(info.Ticket.UserChatID())),
		),
	)
	opts := &tg.SendOptions{ThreadID: msg.MessageThreadID, ReplyMarkup: keyboard}
	_, err = d.bot.SendMessage(ctx, d.config.SupportChatID, info.Text(), opts)
	return err
}

func (d *Dispatcher) handleOpenTicketsCommand(ctx context.Context, msg *tg.Message) error {
	text, err := d.usecases.ListOpen.Execute(ctx)
	if err != nil {
		return err
	}

	for _, chunk := range tg.SplitMessage(text, tg.MaxMessageLength) {
		if err := d.replyInThread(ctx, msg, chunk); err != nil {
			return err
		}
	}
	return nil
}

// replyInThread sends a service message into the thread the command came
// from.
func (d *Dispatcher) replyInThread(ctx context.Context, msg *tg.Message, text string) error {
	var opts *tg.SendOptions
	if msg.MessageThreadID != 0 {
		opts = &tg.SendOptions{ThreadID: msg.MessageThreadID}
	}
	_, err := d.bot.SendMessage(ctx, d.config.SupportChatID, text, opts)
	return err
}

func statusChangedText(result *relay.ChangeTicketStatusResult) string {
	if result.Status.IsClosed() {
		return statusLine(result, "closed")
	}
	return statusLine(result, "reopened")
}

func statusUnchangedText(result *relay.ChangeTicketStatusResult) string {
	if result.Status.IsClosed() {
		return statusLine(result, "already closed")
	}
	return statusLine(result, "already open")
}

func statusLine(result *relay.ChangeTicketStatusResult, verb string) string {
	return result.Status.Glyph() + " Ticket #" + uitoa(result.TicketID) + " " + verb + "."
}

// parseCommand returns the leading slash command of a message with any
// @botname suffix and arguments stripped, or "" for a non-command message.
// Commands addressed to a different bot are not commands for us. An empty
// botUsername (getMe failed at startup) accepts any addressee.
func parseCommand(text, botUsername string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	if idx := strings.IndexAny(text, " \n"); idx > 0 {
		text = text[:idx]
	}
	if idx := strings.Index(text, "@"); idx > 0 {
		mention := text[idx+1:]
		if botUsername != "" && !strings.EqualFold(mention, botUsername) {
			return ""
		}
		text = text[:idx]
	}
	return text
}

// extractContent converts a message into relayable content, preferring the
// richest attachment: photo, video, document, voice, audio, then text.
func extractContent(msg *tg.Message) relay.Content {
	switch {
	case len(msg.Photo) > 0:
		// The last photo size is the largest.
		return relay.Content{
			Kind:    relay.ContentPhoto,
			FileID:  msg.Photo[len(msg.Photo)-1].FileID,
			Caption: msg.Caption,
		}
	case msg.Video != nil:
		return relay.Content{Kind: relay.ContentVideo, FileID: msg.Video.FileID, Caption: msg.Caption}
	case msg.Document != nil:
		return relay.Content{Kind: relay.ContentDocument, FileID: msg.Document.FileID, Caption: msg.Caption}
	case msg.Voice != nil:
		return relay.Content{Kind: relay.ContentVoice, FileID: msg.Voice.FileID, Caption: msg.Caption}
	case msg.Audio != nil:
		return relay.Content{Kind: relay.ContentAudio, FileID: msg.Audio.FileID, Caption: msg.Caption}
	case strings.TrimSpace(msg.Text) != "":
		return relay.Content{Kind: relay.ContentText, Text: msg.Text}
	default:
		return relay.Content{}
	}
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
