package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const defaultAPIURL = "https://api.telegram.org"

// TelegramNotifier talks to the Telegram Bot API. ChatID is the alert chat
// used by Send; interactive replies name their chat explicitly.
type TelegramNotifier struct {
	BotToken string
	ChatID   int64
	BaseURL  string
	Client   *http.Client

	// RetryInterval is the first wait of SendWithRetry.
	RetryInterval time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken string, chatID int64, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  defaultAPIURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		RetryInterval: time.Second,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (t *TelegramNotifier) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.BotToken, method)
}

// call posts payload to an API method and decodes the result into out when non-nil.
func (t *TelegramNotifier) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(method), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read body: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var r apiResponse
	if err := json.Unmarshal(respBody, &r); err != nil {
		return fmt.Errorf("%s decode: %w", method, err)
	}
	if !r.OK {
		return fmt.Errorf("telegram API error: %s", r.Description)
	}
	if out != nil && len(r.Result) > 0 {
		if err := json.Unmarshal(r.Result, out); err != nil {
			return fmt.Errorf("%s decode result: %w", method, err)
		}
	}
	return nil
}

type sendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	MessageID   int             `json:"message_id,omitempty"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

// SendMessage posts an HTML message and returns its message id.
func (t *TelegramNotifier) SendMessage(ctx context.Context, chatID int64, text string, kb *InlineKeyboard) (int, error) {
	var msg Message
	err := t.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: kb,
	}, &msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return msg.MessageID, nil
}

// EditMessage replaces the text and keyboard of an earlier message.
func (t *TelegramNotifier) EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *InlineKeyboard) error {
	err := t.call(ctx, "editMessageText", sendMessageRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: kb,
	}, nil)
	if err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops its spinner.
func (t *TelegramNotifier) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := map[string]string{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	if err := t.call(ctx, "answerCallbackQuery", payload, nil); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// Send sends a message to the configured alert chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	_, err := t.SendMessage(ctx, t.ChatID, text, nil)
	return err
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = t.RetryInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return t.Send(ctx, text)
	}, policy, func(err error, wait time.Duration) {
		log.WithError(err).Warnf("Telegram send failed (attempt %d/%d), retrying in %v", attempt, maxRetries+1, wait)
	})
	if err != nil {
		return fmt.Errorf("all %d attempts exhausted: %w", attempt, err)
	}
	return nil
}
