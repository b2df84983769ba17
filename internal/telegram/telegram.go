// Package telegram wraps the handful of Bot API methods the bot needs:
// send, delete, pin and unpin-all against one configured chat.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dexpulse/trendwatch/internal/config"
	"github.com/sirupsen/logrus"
)

// Client talks to the Telegram Bot API for a single destination chat
type Client struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	log        *logrus.Logger
}

// New creates a new Telegram client
func New(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.TelegramAPIBaseURL,
		token:      cfg.TelegramBotToken,
		chatID:     cfg.TelegramChatID,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		log:        log,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage posts an HTML message to the chat and returns its message id
func (c *Client) SendMessage(ctx context.Context, text string) (int64, error) {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	resp, err := c.call(ctx, "sendMessage", form)
	if err != nil {
		return 0, err
	}

	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return 0, fmt.Errorf("decode sendMessage result: %w", err)
	}
	return result.MessageID, nil
}

// DeleteMessage removes a previously sent message
func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("message_id", strconv.FormatInt(messageID, 10))

	_, err := c.call(ctx, "deleteMessage", form)
	return err
}

// PinMessage pins a message without notifying the chat
func (c *Client) PinMessage(ctx context.Context, messageID int64) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("message_id", strconv.FormatInt(messageID, 10))
	form.Set("disable_notification", "true")

	_, err := c.call(ctx, "pinChatMessage", form)
	return err
}

// UnpinAll unpins every message in the chat
func (c *Client) UnpinAll(ctx context.Context) error {
	form := url.Values{}
	form.Set("chat_id", c.chatID)

	_, err := c.call(ctx, "unpinAllChatMessages", form)
	return err
}

func (c *Client) call(ctx context.Context, method string, form url.Values) (*apiResponse, error) {
	u := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, "POST", u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !api.OK {
		return nil, fmt.Errorf("%s failed: %s", method, api.Description)
	}

	c.log.WithField("method", method).Debug("Telegram call ok")
	return &api, nil
}
