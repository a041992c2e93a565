package domain

// ============================================================
// Market data proxy — upstream contract
// ============================================================

// MarketQueryType selects what the market proxy should fetch.
type MarketQueryType string

const (
	MarketStock      MarketQueryType = "stock"
	MarketNews       MarketQueryType = "news"
	MarketTimeSeries MarketQueryType = "timeseries"
)

// Valid reports whether t is a known market query type.
func (t MarketQueryType) Valid() bool {
	return t == MarketStock || t == MarketNews || t == MarketTimeSeries
}

// MarketRequest is the body of POST /v1/market.
type MarketRequest struct {
	Type   MarketQueryType `json:"type"`
	Symbol string          `json:"symbol,omitempty"`
	Query  string          `json:"query,omitempty"`
}

// StockQuote is a normalized quote record.
type StockQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency,omitempty"`
	AsOf          string  `json:"as_of,omitempty"`
}

// NewsItem is a normalized headline record.
type NewsItem struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Summary     string `json:"summary,omitempty"`
}

// TimeSeriesPoint is one sample of a price series.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// MarketData is the normalized response for any market query; exactly one of
// the payload fields is populated depending on the request type.
type MarketData struct {
	Type   MarketQueryType   `json:"type"`
	Quote  *StockQuote       `json:"quote,omitempty"`
	News   []NewsItem        `json:"news,omitempty"`
	Series []TimeSeriesPoint `json:"series,omitempty"`
}
