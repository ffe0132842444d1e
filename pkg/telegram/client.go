package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Update represents a Telegram update. Only fields we need.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins the first and last name the way Telegram shows it.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Chat struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// CallbackQuery is sent when the user presses an inline keyboard button.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// BotCommand describes a bot command for the Telegram menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// ReplyKeyboardMarkup is a keyboard shown instead of the input field.
type ReplyKeyboardMarkup struct {
	Keyboard              [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard        bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard       bool               `json:"one_time_keyboard,omitempty"`
	InputFieldPlaceholder string             `json:"input_field_placeholder,omitempty"`
}

type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardRemove hides a previously sent reply keyboard.
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// SendOptions tweaks an outgoing message. ReplyMarkup accepts
// ReplyKeyboardMarkup, InlineKeyboardMarkup or ReplyKeyboardRemove.
type SendOptions struct {
	ReplyMarkup           any
	DisableWebPagePreview bool
}

// Client is a minimal Telegram Bot API client.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

func (c *Client) url(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) postJSON(ctx context.Context, method string, body any) (json.RawMessage, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(method), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var wrapper apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !wrapper.OK {
		if wrapper.Description != "" {
			return nil, fmt.Errorf("telegram: %s: %s", method, wrapper.Description)
		}
		return nil, errors.New("telegram: " + method + ": unexpected status " + resp.Status)
	}
	return wrapper.Result, nil
}

// SendMessage sends a text message to the chat and returns the new message ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (int, error) {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	applySendOptions(body, opts)
	result, err := c.postJSON(ctx, "sendMessage", body)
	if err != nil {
		return 0, err
	}
	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendMessageTo sends a text message to a named recipient such as a
// @channel or @username contact.
func (c *Client) SendMessageTo(ctx context.Context, recipient, text string) error {
	body := map[string]any{
		"chat_id": recipient,
		"text":    text,
	}
	_, err := c.postJSON(ctx, "sendMessage", body)
	return err
}

func applySendOptions(body map[string]any, opts *SendOptions) {
	if opts == nil {
		return
	}
	if opts.ReplyMarkup != nil {
		body["reply_markup"] = opts.ReplyMarkup
	}
	if opts.DisableWebPagePreview {
		body["disable_web_page_preview"] = true
	}
}

// GetUpdates long-polls the Bot API for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	q := url.Values{}
	if offset != 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	q.Set("timeout", "30")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("getUpdates"), nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var wrapper struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, err
	}
	if !wrapper.OK {
		return nil, errors.New("telegram: api responded with not ok")
	}
	return wrapper.Result, nil
}

// AnswerCallbackQuery acknowledges an inline button press. Text is optional.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error {
	body := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		body["text"] = text
	}
	if showAlert {
		body["show_alert"] = true
	}
	_, err := c.postJSON(ctx, "answerCallbackQuery", body)
	return err
}

// EditMessageText replaces the text (and inline keyboard) of a sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *InlineKeyboardMarkup) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if markup != nil {
		body["reply_markup"] = markup
	}
	_, err := c.postJSON(ctx, "editMessageText", body)
	return err
}

// EditMessageReplyMarkup replaces only the inline keyboard of a sent
// message. A nil markup removes the keyboard.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int, markup *InlineKeyboardMarkup) error {
	body := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if markup != nil {
		body["reply_markup"] = markup
	} else {
		body["reply_markup"] = InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{}}
	}
	_, err := c.postJSON(ctx, "editMessageReplyMarkup", body)
	return err
}

// SetCommands registers the bot commands shown in the Telegram UI.
func (c *Client) SetCommands(ctx context.Context, commands []BotCommand) error {
	body := map[string]any{"commands": commands}
	_, err := c.postJSON(ctx, "setMyCommands", body)
	return err
}
