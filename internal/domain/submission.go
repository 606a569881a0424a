package domain

import (
	"encoding/json"
	"strings"
)

// Submission is an append-only record of one moderation request.
// ModeratedOutput is a point-in-time snapshot and is never re-evaluated.
type Submission struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	OriginalText    string  `gorm:"type:text;not null" json:"original_text"`
	ModeratedOutput string  `gorm:"type:text;not null" json:"moderated_output"`
	Timestamp       int64   `gorm:"not null;index:idx_submissions_timestamp" json:"timestamp"`
	AdditionalData  *string `gorm:"type:text" json:"additional_data,omitempty"`
}

// TableName returns the database table name for Submission.
func (Submission) TableName() string {
	return "submissions"
}

// sentimentSnapshot is the persisted subset of SentimentResult. Explanations
// are not stored.
type sentimentSnapshot struct {
	Sentiment string   `json:"sentiment"`
	Score     *float64 `json:"score"`
	Toxicity  *bool    `json:"toxicity"`
}

// EncodeSentiment serializes r into the additional_data column format.
func EncodeSentiment(r SentimentResult) (*string, error) {
	score := r.Score
	toxicity := r.Toxicity
	b, err := json.Marshal(sentimentSnapshot{
		Sentiment: string(r.Sentiment),
		Score:     &score,
		Toxicity:  &toxicity,
	})
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// SentimentSnapshot decodes the stored sentiment, if any. Rows written before
// sentiment existed, or holding unreadable data, yield nil rather than an error.
func (s *Submission) SentimentSnapshot() *SentimentResult {
	if s.AdditionalData == nil || strings.TrimSpace(*s.AdditionalData) == "" {
		return nil
	}

	var snap sentimentSnapshot
	if err := json.Unmarshal([]byte(*s.AdditionalData), &snap); err != nil {
		return nil
	}
	if snap.Sentiment == "" {
		return nil
	}

	r := &SentimentResult{Sentiment: ParseSentiment(snap.Sentiment)}
	if snap.Score != nil {
		r.Score = ClampScore(*snap.Score)
	}
	if snap.Toxicity != nil {
		r.Toxicity = *snap.Toxicity
	}
	return r
}
