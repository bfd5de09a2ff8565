package domain

// Analysis is the structured result of the LLM metadata analysis step.
// Title and Summary are required; the ingestion pipeline rejects a model
// response that omits them with ErrAnalysis.
type Analysis struct {
	// Title is a short human-readable title for the document.
	Title string

	// Summary is a few-sentence summary of the content.
	Summary string

	// Tags are 5-10 short topical labels.
	Tags []string

	// Keywords are 10-15 search keywords.
	Keywords []string

	// Topic is the single dominant topic.
	Topic string

	// Sentiment is one of "positive", "negative" or "neutral".
	// Anything else from the model normalises to "neutral".
	Sentiment string

	// SentimentScore is clamped to [-1, 1]; unparsable values become 0.
	SentimentScore float64
}

// Valid sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Normalise coerces the analysis into its documented bounds: unknown
// sentiment labels become neutral and the score is clamped to [-1, 1].
func (a *Analysis) Normalise() {
	switch a.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		a.Sentiment = SentimentNeutral
	}
	if a.SentimentScore > 1 {
		a.SentimentScore = 1
	}
	if a.SentimentScore < -1 {
		a.SentimentScore = -1
	}
}

// Complete reports whether the required fields are present.
func (a *Analysis) Complete() bool {
	return a.Title != "" && a.Summary != ""
}
