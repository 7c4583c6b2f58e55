// Package bot routes Telegram updates to the analysis pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/recorder"
	"SwingSentinel/internal/session"
	"SwingSentinel/internal/strategy"
)

var errUnknownAsset = errors.New("unknown asset")

// Messenger is the subset of the Telegram client the router needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *notifier.InlineKeyboard) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, kb *notifier.InlineKeyboard) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Collector returns a validated series for an asset.
type Collector interface {
	Collect(ctx context.Context, asset model.Asset) (*model.Series, error)
}

// Router handles /start and the inline keyboard callbacks.
type Router struct {
	Messenger    Messenger
	Collector    Collector
	Sessions     session.Store
	Recorder     recorder.Recorder
	Assets       []model.Asset
	DefaultAsset string
	Params       strategy.Params
}

// HandleUpdate dispatches one update. It matches notifier.UpdateHandler.
func (r *Router) HandleUpdate(ctx context.Context, u notifier.Update) {
	switch {
	case u.CallbackQuery != nil:
		r.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.Text != "":
		r.handleMessage(ctx, u.Message)
	}
}

func (r *Router) handleMessage(ctx context.Context, m *notifier.Message) {
	text := strings.TrimSpace(m.Text)
	log.WithFields(log.Fields{"chat": m.Chat.ID, "text": text}).Info("received message")

	reply := notifier.TextSelectAsset
	if cmd, _, _ := strings.Cut(text, "@"); cmd == "/start" {
		reply = notifier.TextWelcome
	}
	if _, err := r.Messenger.SendMessage(ctx, m.Chat.ID, reply, notifier.AssetKeyboard(r.Assets)); err != nil {
		log.WithError(err).WithField("chat", m.Chat.ID).Error("send reply")
	}
}

func (r *Router) handleCallback(ctx context.Context, q *notifier.CallbackQuery) {
	if err := r.Messenger.AnswerCallback(ctx, q.ID, ""); err != nil {
		log.WithError(err).Warn("answer callback")
	}
	if q.Message == nil {
		return
	}
	chatID, msgID := q.Message.Chat.ID, q.Message.MessageID
	logger := log.WithFields(log.Fields{"chat": chatID, "data": q.Data})

	if err := r.dispatch(ctx, chatID, msgID, q.Data); err != nil {
		logger.WithError(err).Error("callback failed")
		r.send(ctx, chatID, notifier.TextInternalError, nil)
	}
}

func (r *Router) dispatch(ctx context.Context, chatID int64, msgID int, data string) error {
	switch {
	case strings.HasPrefix(data, notifier.AssetCallbackPrefix):
		name := strings.TrimPrefix(data, notifier.AssetCallbackPrefix)
		asset, ok := r.asset(name)
		if !ok {
			return fmt.Errorf("%q: %w", name, errUnknownAsset)
		}
		if err := r.Sessions.Set(ctx, chatID, asset.Name); err != nil {
			return fmt.Errorf("store selection: %w", err)
		}
		r.reply(ctx, chatID, msgID, notifier.FormatSelected(asset), notifier.ActionKeyboard())
		return nil

	case data == notifier.CallbackChangeAsset:
		r.reply(ctx, chatID, msgID, notifier.TextSelectAsset, notifier.AssetKeyboard(r.Assets))
		return nil

	case data == notifier.CallbackAnalysis, data == notifier.CallbackSignals, data == notifier.CallbackLevels:
		return r.runAction(ctx, chatID, msgID, data)

	default:
		r.reply(ctx, chatID, msgID, notifier.TextUnknownAction, nil)
		return nil
	}
}

func (r *Router) runAction(ctx context.Context, chatID int64, msgID int, action string) error {
	name, err := session.Resolve(ctx, r.Sessions, chatID, r.DefaultAsset)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}
	asset, ok := r.asset(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, errUnknownAsset)
	}

	series, err := r.Collector.Collect(ctx, asset)
	if err != nil {
		log.WithError(err).WithField("asset", asset.Name).Warn("market data unavailable")
		r.send(ctx, chatID, notifier.TextDataUnavailable, nil)
		return nil
	}

	a := strategy.Analyze(asset, series, r.Params)
	if _, err := r.Recorder.RecordAnalysis(ctx, recorder.SourceBot, a); err != nil {
		log.WithError(err).WithField("asset", asset.Name).Error("record analysis")
	}

	var text string
	switch action {
	case notifier.CallbackAnalysis:
		text = notifier.FormatAnalysis(a)
	case notifier.CallbackSignals:
		text = notifier.FormatSignals(a)
	case notifier.CallbackLevels:
		text = notifier.FormatLevels(a)
	}
	r.reply(ctx, chatID, msgID, text, notifier.ActionKeyboard())
	return nil
}

// reply edits the originating message and falls back to a new message.
func (r *Router) reply(ctx context.Context, chatID int64, msgID int, text string, kb *notifier.InlineKeyboard) {
	err := r.Messenger.EditMessage(ctx, chatID, msgID, text, kb)
	if err == nil {
		return
	}
	log.WithError(err).WithField("chat", chatID).Debug("edit failed, sending new message")
	r.send(ctx, chatID, text, kb)
}

func (r *Router) send(ctx context.Context, chatID int64, text string, kb *notifier.InlineKeyboard) {
	if _, err := r.Messenger.SendMessage(ctx, chatID, text, kb); err != nil {
		log.WithError(err).WithField("chat", chatID).Error("send message")
	}
}

func (r *Router) asset(name string) (model.Asset, bool) {
	for _, a := range r.Assets {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return model.Asset{}, false
}
