package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

// Update is one item returned by getUpdates.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// UpdateHandler is called for every update received by polling.
type UpdateHandler func(ctx context.Context, u Update)

// GetUpdates long-polls for updates starting at offset.
func (t *TelegramNotifier) GetUpdates(ctx context.Context, offset int, timeout time.Duration) ([]Update, error) {
	var updates []Update
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}
	if err := t.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	return updates, nil
}

// StartPolling begins long-polling for updates. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler UpdateHandler) {
	const pollTimeout = 30 * time.Second
	offset := 0

	// the long poll outlives the default client timeout
	poller := *t
	poller.Client = cloneWithTimeout(t.Client, pollTimeout+5*time.Second)

	for {
		select {
		case <-ctx.Done():
			log.Info("Telegram polling stopped")
			return
		default:
		}

		updates, err := poller.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Telegram polling stopped")
				return
			}
			log.WithError(err).Warn("polling request failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			handler(ctx, u)
		}
	}
}

func cloneWithTimeout(c *http.Client, timeout time.Duration) *http.Client {
	clone := *c
	clone.Timeout = timeout
	return &clone
}
