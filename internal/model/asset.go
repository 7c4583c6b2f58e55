package model

// Market names the data source an asset is fetched from.
type Market string

const (
	MarketYahoo          Market = "yfinance"
	MarketBinanceFutures Market = "binance_futures"
	MarketCSV            Market = "csv"
)

// Asset is one tradable instrument offered by the bot.
type Asset struct {
	Name      string `yaml:"name"`
	Symbol    string `yaml:"symbol"`
	Timeframe string `yaml:"timeframe"`
	Market    Market `yaml:"market"`
	Label     string `yaml:"label"`
}

// DisplayLabel returns the keyboard label, falling back to the name.
func (a Asset) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Name
}
