package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sharedConfig "github.com/relaydesk/relaydesk/internal/shared/config"
	apperrors "github.com/relaydesk/relaydesk/internal/shared/errors"
)

// BotService provides Telegram Bot API operations
type BotService struct {
	config      sharedConfig.TelegramConfig
	httpClient  *http.Client
	baseURL     string
	botUsername string // Cached bot username from getMe
}

// NewBotService creates a new Telegram bot service
func NewBotService(config sharedConfig.TelegramConfig) *BotService {
	s := &BotService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", config.BotToken),
	}
	// Fetch and cache bot username on initialization
	if config.BotToken != "" {
		_ = s.fetchBotUsername()
	}
	return s
}

// DeleteWebhook removes any configured webhook so long polling can start
func (s *BotService) DeleteWebhook() error {
	url := fmt.Sprintf("%s/deleteWebhook", s.baseURL)
	return s.makeRequest(url, nil)
}

// BotCommand represents a bot command for the command menu
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// SetMyCommands sets the list of bot commands shown in the command menu
func (s *BotService) SetMyCommands(commands []BotCommand) error {
	url := fmt.Sprintf("%s/setMyCommands", s.baseURL)
	body := map[string]any{
		"commands": commands,
	}
	return s.makeRequest(url, body)
}

// SetMyCommandsForChat sets commands visible only in a specific chat
func (s *BotService) SetMyCommandsForChat(chatID int64, commands []BotCommand) error {
	url := fmt.Sprintf("%s/setMyCommands", s.baseURL)
	body := map[string]any{
		"commands": commands,
		"scope": map[string]any{
			"type":    "chat",
			"chat_id": chatID,
		},
	}
	return s.makeRequest(url, body)
}

// GetUserCommands returns the command list shown to users in private chats
func GetUserCommands() []BotCommand {
	return []BotCommand{
		{Command: "start", Description: "Start and get the greeting"},
		{Command: "help", Description: "How to write a good request"},
	}
}

// GetOperatorCommands returns the command list for the support chat
func GetOperatorCommands() []BotCommand {
	return []BotCommand{
		{Command: "close", Description: "Close the ticket (reply to a message)"},
		{Command: "reopen", Description: "Reopen the ticket (reply to a message)"},
		{Command: "ticket", Description: "Show ticket info (reply to a message)"},
		{Command: "open_tickets", Description: "List open tickets"},
	}
}

// GetUpdates retrieves updates using long polling with context support.
// The context can be used to cancel the long polling request for graceful
// shutdown.
func (s *BotService) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	apiURL := fmt.Sprintf("%s/getUpdates", s.baseURL)

	body := map[string]any{
		"timeout": timeout,
	}
	if offset > 0 {
		body["offset"] = offset
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	// Create a client with extended timeout for long polling
	client := &http.Client{
		Timeout: time.Duration(timeout+10) * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return nil, apperrors.NewTransportError("telegram API error", result.Description)
	}

	return result.Result, nil
}

// SendOptions carries the optional parts of an outgoing message.
type SendOptions struct {
	ThreadID    int64
	ReplyMarkup any
}

// SendMessage sends a plain text message and returns the sent message ID
func (s *BotService) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (int64, error) {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	applySendOptions(body, opts)
	return s.makeSendRequest(ctx, fmt.Sprintf("%s/sendMessage", s.baseURL), body)
}

// SendPhoto sends a photo by file ID
func (s *BotService) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts *SendOptions) (int64, error) {
	return s.sendFile(ctx, "sendPhoto", "photo", chatID, fileID, caption, opts)
}

// SendVideo sends a video by file ID
func (s *BotService) SendVideo(ctx context.Context, chatID int64, fileID, caption string, opts *SendOptions) (int64, error) {
	return s.sendFile(ctx, "sendVideo", "video", chatID, fileID, caption, opts)
}

// SendDocument sends a document by file ID
func (s *BotService) SendDocument(ctx context.Context, chatID int64, fileID, caption string, opts *SendOptions) (int64, error) {
	return s.sendFile(ctx, "sendDocument", "document", chatID, fileID, caption, opts)
}

// SendVoice sends a voice note by file ID
func (s *BotService) SendVoice(ctx context.Context, chatID int64, fileID, caption string, opts *SendOptions) (int64, error) {
	return s.sendFile(ctx, "sendVoice", "voice", chatID, fileID, caption, opts)
}

// SendAudio sends an audio file by file ID
func (s *BotService) SendAudio(ctx context.Context, chatID int64, fileID, caption string, opts *SendOptions) (int64, error) {
	return s.sendFile(ctx, "sendAudio", "audio", chatID, fileID, caption, opts)
}

func (s *BotService) sendFile(ctx context.Context, method, field string, chatID int64, fileID, caption string, opts *SendOptions) (int64, error) {
	body := map[string]any{
		"chat_id": chatID,
		field:     fileID,
	}
	if caption != "" {
		body["caption"] = caption
	}
	applySendOptions(body, opts)
	return s.makeSendRequest(ctx, fmt.Sprintf("%s/%s", s.baseURL, method), body)
}

func applySendOptions(body map[string]any, opts *SendOptions) {
	if opts == nil {
		return
	}
	if opts.ThreadID != 0 {
		body["message_thread_id"] = opts.ThreadID
	}
	if opts.ReplyMarkup != nil {
		body["reply_markup"] = opts.ReplyMarkup
	}
}

// CreateForumTopic creates a forum topic and returns its thread ID
func (s *BotService) CreateForumTopic(ctx context.Context, chatID int64, name string) (int64, error) {
	url := fmt.Sprintf("%s/createForumTopic", s.baseURL)
	body := map[string]any{
		"chat_id": chatID,
		"name":    name,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result createForumTopicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return 0, apperrors.NewTransportError("telegram API error", result.Description)
	}

	return result.Result.MessageThreadID, nil
}

// EditForumTopic renames a forum topic
func (s *BotService) EditForumTopic(ctx context.Context, chatID, threadID int64, name string) error {
	url := fmt.Sprintf("%s/editForumTopic", s.baseURL)
	body := map[string]any{
		"chat_id":           chatID,
		"message_thread_id": threadID,
		"name":              name,
	}
	return s.makeRequestContext(ctx, url, body)
}

// DeleteMessage removes a message the bot sent
func (s *BotService) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	url := fmt.Sprintf("%s/deleteMessage", s.baseURL)
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return s.makeRequestContext(ctx, url, body)
}

// EditMessageText edits the text of a message, optionally replacing its
// inline keyboard
func (s *BotService) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard any) error {
	url := fmt.Sprintf("%s/editMessageText", s.baseURL)
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if keyboard != nil {
		body["reply_markup"] = keyboard
	}
	return s.makeRequestContext(ctx, url, body)
}

// AnswerCallbackQuery answers a callback query from an inline keyboard
func (s *BotService) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string, showAlert bool) error {
	url := fmt.Sprintf("%s/answerCallbackQuery", s.baseURL)
	body := map[string]any{
		"callback_query_id": callbackQueryID,
	}
	if text != "" {
		body["text"] = text
	}
	if showAlert {
		body["show_alert"] = true
	}
	return s.makeRequestContext(ctx, url, body)
}

// InlineKeyboardButton represents a button in an inline keyboard
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// InlineKeyboardMarkup represents an inline keyboard
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// NewInlineKeyboard creates a new inline keyboard with the given rows
func NewInlineKeyboard(rows ...[]InlineKeyboardButton) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// NewInlineKeyboardRow creates a row of inline buttons
func NewInlineKeyboardRow(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}

// NewInlineKeyboardButton creates a callback button
func NewInlineKeyboardButton(text, callbackData string) InlineKeyboardButton {
	return InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// apiResponse represents a Telegram API response
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Update represents a Telegram update from getUpdates
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// CallbackQuery represents a callback query from an inline keyboard
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Message represents a Telegram message
type Message struct {
	MessageID       int64        `json:"message_id"`
	MessageThreadID int64        `json:"message_thread_id,omitempty"`
	From            *User        `json:"from,omitempty"`
	Chat            *Chat        `json:"chat"`
	Date            int64        `json:"date"`
	Text            string       `json:"text,omitempty"`
	Caption         string       `json:"caption,omitempty"`
	ReplyToMessage  *Message     `json:"reply_to_message,omitempty"`
	Photo           []PhotoSize  `json:"photo,omitempty"`
	Video           *Video       `json:"video,omitempty"`
	Document        *Document    `json:"document,omitempty"`
	Voice           *Voice       `json:"voice,omitempty"`
	Audio           *Audio       `json:"audio,omitempty"`
}

// PhotoSize represents one resolution of a photo
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Video represents a video file
type Video struct {
	FileID string `json:"file_id"`
}

// Document represents a general file
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
}

// Voice represents a voice note
type Voice struct {
	FileID string `json:"file_id"`
}

// Audio represents an audio file
type Audio struct {
	FileID string `json:"file_id"`
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	IsForum bool   `json:"is_forum,omitempty"`
}

// IsPrivate reports whether this is a one-on-one chat with the bot.
func (c *Chat) IsPrivate() bool {
	return c != nil && c.Type == "private"
}

// getUpdatesResponse represents the response from getUpdates
type getUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description,omitempty"`
}

// sendResponse represents the response of any send* method
type sendResponse struct {
	OK          bool     `json:"ok"`
	Result      *Message `json:"result,omitempty"`
	Description string   `json:"description,omitempty"`
}

// createForumTopicResponse represents the response from createForumTopic
type createForumTopicResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageThreadID int64  `json:"message_thread_id"`
		Name            string `json:"name"`
	} `json:"result"`
	Description string `json:"description,omitempty"`
}

// getMeResponse represents the response from getMe
type getMeResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		ID        int64  `json:"id"`
		IsBot     bool   `json:"is_bot"`
		FirstName string `json:"first_name"`
		Username  string `json:"username"`
	} `json:"result"`
	Description string `json:"description,omitempty"`
}

// fetchBotUsername fetches and caches the bot username from Telegram API
func (s *BotService) fetchBotUsername() error {
	url := fmt.Sprintf("%s/getMe", s.baseURL)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result getMeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return apperrors.NewTransportError("telegram API error", result.Description)
	}

	s.botUsername = result.Result.Username
	return nil
}

// GetBotUsername returns the cached bot username
func (s *BotService) GetBotUsername() string {
	return s.botUsername
}

// makeSendRequest POSTs a send* call and returns the sent message ID
func (s *BotService) makeSendRequest(ctx context.Context, url string, body map[string]any) (int64, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return 0, apperrors.NewTransportError("telegram API error", result.Description)
	}
	if result.Result == nil {
		return 0, fmt.Errorf("telegram API returned no message")
	}

	return result.Result.MessageID, nil
}

func (s *BotService) makeRequestContext(ctx context.Context, url string, body map[string]any) error {
	var reader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.OK {
		return apperrors.NewTransportError("telegram API error", result.Description)
	}

	return nil
}

func (s *BotService) makeRequest(url string, body map[string]any) error {
	return s.makeRequestContext(context.Background(), url, body)
}
