package types

// Label is the normalized sentiment of one article.
type Label string

const (
	Bullish      Label = "Bullish"
	Bearish      Label = "Bearish"
	Mixed        Label = "Mixed"
	Undetermined Label = "Undetermined"
)

// ArticleSnapshot is what one fetch of the article page yields. It is rebuilt on every
// attempt and never stored as such.
type ArticleSnapshot struct {
	RawMarkup      string
	BodyText       string
	PublishDateKey string // YYYY-MM-DD
	PublishDateRaw string
	ContentHash    string
}

// SentimentRecord is one row of the sentiment log, keyed by DateKey.
type SentimentRecord struct {
	DateKey          string
	PublishDateRaw   string
	Label            Label
	ModelProvider    string
	ModelVersion     string
	ContentHash      string
	RawModelResponse string
}
