package entity

// Stance values produced by the sentiment extractor.
const (
	StancePositive = "positive"
	StanceNegative = "negative"
	StanceNeutral  = "neutral"
)

// Advice type values produced by the sentiment extractor.
const (
	AdviceBuy  = "buy"
	AdviceSell = "sell"
	AdviceHold = "hold"
	AdviceNone = "none"
)

// Extraction is one company-sentiment signal derived from one article. The
// source/url/published_at/title fields are back-references to the originating
// article.
type Extraction struct {
	Company      string  `json:"company"`
	Ticker       string  `json:"ticker,omitempty"`
	ExchangeHint string  `json:"exchange_hint,omitempty"`
	Stance       string  `json:"stance"`
	AdviceType   string  `json:"advice_type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Evidence     string  `json:"evidence"`

	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Title       string `json:"title"`
}
