package domain

import "strings"

// Sentiment is the overall polarity reported by the classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// ParseSentiment maps a free-form label to a known Sentiment. Anything
// unrecognised becomes neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentMixed:
		return SentimentMixed
	default:
		return SentimentNeutral
	}
}

// SentimentResult is the classifier's sentiment and toxicity assessment.
// Score ranges from -1 (very negative) to 1 (very positive).
type SentimentResult struct {
	Sentiment   Sentiment `json:"sentiment"`
	Score       float64   `json:"score"`
	Toxicity    bool      `json:"toxicity"`
	Explanation string    `json:"explanation,omitempty"`
}

// NeutralSentiment is returned whenever the classifier cannot be trusted.
func NeutralSentiment(explanation string) SentimentResult {
	return SentimentResult{
		Sentiment:   SentimentNeutral,
		Score:       0,
		Toxicity:    false,
		Explanation: explanation,
	}
}

// ClampScore bounds s to [-1, 1].
func ClampScore(s float64) float64 {
	switch {
	case s != s: // NaN
		return 0
	case s < -1:
		return -1
	case s > 1:
		return 1
	default:
		return s
	}
}
