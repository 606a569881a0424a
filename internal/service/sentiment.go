package service

import (
	"context"
	"time"

	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/logger"
)

// SentimentService wraps the classifier's sentiment analysis. It never fails:
// classifier problems are logged and the neutral result is returned.
type SentimentService struct {
	analyzer SentimentAnalyzer
}

// NewSentimentService creates a SentimentService backed by analyzer.
func NewSentimentService(analyzer SentimentAnalyzer) *SentimentService {
	return &SentimentService{analyzer: analyzer}
}

// Evaluate returns the sentiment assessment for text.
func (s *SentimentService) Evaluate(ctx context.Context, text string) domain.SentimentResult {
	start := time.Now()
	result, err := s.analyzer.AnalyzeSentiment(ctx, text)
	if err != nil {
		logger.With(logger.Fields{logger.FieldTask: "sentiment"}).
			WithDuration(time.Since(start).Milliseconds()).
			Warn(ctx, "Sentiment analysis fell back to neutral: %v", err)
		return result
	}

	logger.With(logger.Fields{logger.FieldTask: "sentiment"}).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Sentiment analyzed: %s (%.2f)", result.Sentiment, result.Score)
	return result
}
