package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/relaydesk/relaydesk/internal/application/relay"
	"github.com/relaydesk/relaydesk/internal/domain/setting"
	tg "github.com/relaydesk/relaydesk/internal/infrastructure/telegram"
)

// Callback data for the admin panel. Block buttons use the payload built by
// relay.BlockCallbackData, shared with relayed messages.
const (
	callbackEditGreeting = "admin_edit_greeting"
	callbackEditHelp     = "admin_edit_help"
	callbackToggleMode   = "admin_toggle_mode"
	callbackCloseMenu    = "admin_close"
)

func blockButtonLabel(blocked bool) string {
	if blocked {
		return "✅ Unblock user"
	}
	return "🚫 Block user"
}

func (d *Dispatcher) adminMenuText(ctx context.Context) string {
	mode := "one topic per ticket"
	if d.settings.TopicMode(ctx) == setting.TopicModeSingleTopic {
		mode = "single shared topic"
	}
	return fmt.Sprintf("⚙️ Bot settings\n\nTopic mode: %s", mode)
}

func (d *Dispatcher) adminMenuKeyboard() *tg.InlineKeyboardMarkup {
	return tg.NewInlineKeyboard(
		tg.NewInlineKeyboardRow(tg.NewInlineKeyboardButton("✏️ Edit greeting", callbackEditGreeting)),
		tg.NewInlineKeyboardRow(tg.NewInlineKeyboardButton("✏️ Edit help", callbackEditHelp)),
		tg.NewInlineKeyboardRow(tg.NewInlineKeyboardButton("🔀 Toggle topic mode", callbackToggleMode)),
		tg.NewInlineKeyboardRow(tg.NewInlineKeyboardButton("✖️ Close", callbackCloseMenu)),
	)
}

// openAdminMenu sends a fresh settings menu and resets the admin's session
// to point at it.
func (d *Dispatcher) openAdminMenu(ctx context.Context, adminID, chatID int64) error {
	opts := &tg.SendOptions{ReplyMarkup: d.adminMenuKeyboard()}
	menuID, err := d.bot.SendMessage(ctx, chatID, d.adminMenuText(ctx), opts)
	if err != nil {
		return err
	}

	return d.sessions.Put(ctx, adminID, &relay.AdminSession{
		State:         relay.SessionIdle,
		MenuChatID:    chatID,
		MenuMessageID: menuID,
	})
}

// consumeAdminInput feeds a plain message into a pending edit prompt.
// Returns false when the admin has no pending prompt, so the message falls
// through to the normal inbound relay.
func (d *Dispatcher) consumeAdminInput(ctx context.Context, msg *tg.Message) (bool, error) {
	session, err := d.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		return false, err
	}

	if session.State != relay.SessionIdle && strings.TrimSpace(msg.Text) == "" {
		_, err := d.bot.SendMessage(ctx, msg.Chat.ID, "Please send the new text as a plain message.", nil)
		return true, err
	}

	var confirmation string
	switch session.State {
	case relay.SessionAwaitingGreeting:
		if err := d.settings.SetGreeting(ctx, msg.Text); err != nil {
			return true, err
		}
		confirmation = "✅ Greeting updated."
	case relay.SessionAwaitingHelp:
		if err := d.settings.SetHelp(ctx, msg.Text); err != nil {
			return true, err
		}
		confirmation = "✅ Help text updated."
	default:
		return false, nil
	}

	// Drop the prompt so the chat does not fill with stale instructions.
	if session.PromptMessageID != 0 {
		if err := d.bot.DeleteMessage(ctx, msg.Chat.ID, session.PromptMessageID); err != nil {
			d.logger.Debugw("failed to delete admin prompt",
				"admin_id", msg.From.ID, "message_id", session.PromptMessageID, "error", err)
		}
	}

	session.State = relay.SessionIdle
	session.PromptMessageID = 0
	if err := d.sessions.Put(ctx, msg.From.ID, session); err != nil {
		return true, err
	}

	if _, err := d.bot.SendMessage(ctx, msg.Chat.ID, confirmation, nil); err != nil {
		return true, err
	}

	// Refresh the menu so it shows the current state.
	if session.MenuMessageID != 0 {
		if err := d.bot.EditMessageText(ctx, session.MenuChatID, session.MenuMessageID,
			d.adminMenuText(ctx), d.adminMenuKeyboard()); err != nil {
			d.logger.Debugw("failed to refresh admin menu",
				"admin_id", msg.From.ID, "error", err)
		}
	}
	return true, nil
}

func (d *Dispatcher) handleCallback(ctx context.Context, query *tg.CallbackQuery) error {
	if query.From == nil {
		return nil
	}

	if strings.HasPrefix(query.Data, relay.BlockCallbackPrefix) {
		return d.handleBlockCallback(ctx, query)
	}

	if !d.config.IsAdmin(query.From.ID) {
		return d.bot.AnswerCallbackQuery(ctx, query.ID, "Not allowed.", true)
	}

	switch query.Data {
	case callbackEditGreeting:
		return d.promptForText(ctx, query, relay.SessionAwaitingGreeting, "Send the new greeting text.")
	case callbackEditHelp:
		return d.promptForText(ctx, query, relay.SessionAwaitingHelp, "Send the new help text.")
	case callbackToggleMode:
		return d.handleToggleMode(ctx, query)
	case callbackCloseMenu:
		return d.handleCloseMenu(ctx, query)
	default:
		return d.bot.AnswerCallbackQuery(ctx, query.ID, "", false)
	}
}

// handleBlockCallback flips the blocked state of the user named in the
// callback data. The button rides on relayed messages and ticket info cards
// in the support chat, so any operator may use it.
func (d *Dispatcher) handleBlockCallback(ctx context.Context, query *tg.CallbackQuery) error {
	userChatID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, relay.BlockCallbackPrefix), 10, 64)
	if err != nil {
		return d.bot.AnswerCallbackQuery(ctx, query.ID, "Malformed button.", true)
	}

	result, err := d.usecases.ToggleBlock.Execute(ctx, relay.ToggleBlockCommand{
		UserChatID: userChatID,
		OperatorID: query.From.ID,
	})
	if err != nil {
		return err
	}

	var notice string
	if result.Blocked {
		notice = fmt.Sprintf("🚫 %s blocked.", result.UserLabel)
	} else {
		notice = fmt.Sprintf("✅ %s unblocked.", result.UserLabel)
	}

	// Flip the button so the card reflects the new state.
	if query.Message != nil {
		keyboard := tg.NewInlineKeyboard(
			tg.NewInlineKeyboardRow(
				tg.NewInlineKeyboardButton(blockButtonLabel(result.Blocked), relay.BlockCallbackData(userChatID)),
			),
		)
		if err := d.bot.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
			query.Message.Text+"\n\n"+notice, keyboard); err != nil {
			d.logger.Debugw("failed to update ticket card after block toggle",
				"user_chat_id", userChatID, "error", err)
		}
	}

	return d.bot.AnswerCallbackQuery(ctx, query.ID, notice, false)
}

// promptForText asks the admin for replacement text and arms the session.
func (d *Dispatcher) promptForText(ctx context.Context, query *tg.CallbackQuery, state relay.SessionState, prompt string) error {
	if query.Message == nil {
		return d.bot.AnswerCallbackQuery(ctx, query.ID, "", false)
	}
	chatID := query.Message.Chat.ID

	promptID, err := d.bot.SendMessage(ctx, chatID, prompt, nil)
	if err != nil {
		return err
	}

	session, err := d.sessions.Get(ctx, query.From.ID)
	if err != nil {
		return err
	}
	session.State = state
	session.MenuChatID = chatID
	session.MenuMessageID = query.Message.MessageID
	session.PromptMessageID = promptID
	if err := d.sessions.Put(ctx, query.From.ID, session); err != nil {
		return err
	}

	return d.bot.AnswerCallbackQuery(ctx, query.ID, "", false)
}

func (d *Dispatcher) handleToggleMode(ctx context.Context, query *tg.CallbackQuery) error {
	mode := d.settings.TopicMode(ctx).Toggled()
	if err := d.settings.SetTopicMode(ctx, mode); err != nil {
		return err
	}

	if query.Message != nil {
		if err := d.bot.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID,
			d.adminMenuText(ctx), d.adminMenuKeyboard()); err != nil {
			d.logger.Debugw("failed to refresh admin menu after mode toggle", "error", err)
		}
	}

	return d.bot.AnswerCallbackQuery(ctx, query.ID, "Topic mode switched to "+mode.String()+".", false)
}

func (d *Dispatcher) handleCloseMenu(ctx context.Context, query *tg.CallbackQuery) error {
	if query.Message != nil {
		if err := d.bot.DeleteMessage(ctx, query.Message.Chat.ID, query.Message.MessageID); err != nil {
			d.logger.Debugw("failed to delete admin menu", "error", err)
		}
	}
	if err := d.sessions.Clear(ctx, query.From.ID); err != nil {
		return err
	}
	return d.bot.AnswerCallbackQuery(ctx, query.ID, "", false)
}
