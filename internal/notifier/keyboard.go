package notifier

import (
	"SwingSentinel/internal/model"
)

// Callback data carried by the inline buttons.
const (
	AssetCallbackPrefix = "asset_"
	CallbackAnalysis    = "analysis"
	CallbackSignals     = "signals"
	CallbackLevels      = "levels"
	CallbackChangeAsset = "change_asset"
)

type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboard is the reply_markup object for inline buttons.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

// AssetKeyboard puts one button per asset on a single row.
func AssetKeyboard(assets []model.Asset) *InlineKeyboard {
	row := make([]InlineButton, 0, len(assets))
	for _, a := range assets {
		row = append(row, InlineButton{Text: a.DisplayLabel(), CallbackData: AssetCallbackPrefix + a.Name})
	}
	return &InlineKeyboard{InlineKeyboard: [][]InlineButton{row}}
}

// ActionKeyboard lists the per-asset actions, one per row.
func ActionKeyboard() *InlineKeyboard {
	return &InlineKeyboard{InlineKeyboard: [][]InlineButton{
		{{Text: "📊 Analysis", CallbackData: CallbackAnalysis}},
		{{Text: "🔔 Signals", CallbackData: CallbackSignals}},
		{{Text: "📈 S/R Levels", CallbackData: CallbackLevels}},
		{{Text: "🔁 Change Asset", CallbackData: CallbackChangeAsset}},
	}}
}
