package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// nowUTC is swapped in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }

// SubmissionStore persists the append-only submission history.
type SubmissionStore interface {
	Create(ctx context.Context, s *domain.Submission) error
	ListRecent(ctx context.Context, limit int) ([]domain.Submission, error)
}

// SubmissionView is the API representation of a stored submission.
type SubmissionView struct {
	ID              uint                    `json:"id"`
	OriginalText    string                  `json:"originalText"`
	ModeratedResult domain.ModeratedResult  `json:"moderatedResult"`
	Timestamp       int64                   `json:"timestamp"`
	Sentiment       *domain.SentimentResult `json:"sentiment,omitempty"`
}

// ProfanityCheck summarizes the profanity verdict alongside a sentiment result.
type ProfanityCheck struct {
	ContainsProfanity bool     `json:"containsProfanity"`
	ProfaneWords      []string `json:"profaneWords,omitempty"`
}

// SentimentAnalysis is the combined sentiment and profanity assessment.
type SentimentAnalysis struct {
	domain.SentimentResult
	ProfanityCheck ProfanityCheck `json:"profanityCheck"`
}

// ModerationService orchestrates the profanity and sentiment pipelines and
// records every submission.
type ModerationService struct {
	profanity   *ProfanityService
	sentiment   *SentimentService
	submissions SubmissionStore
}

// NewModerationService creates a ModerationService.
// Parameters:
//   - profanity: profanity pipeline.
//   - sentiment: sentiment pipeline.
//   - submissions: submission history persistence.
//
// Returns:
//   - *ModerationService: orchestrator instance.
func NewModerationService(profanity *ProfanityService, sentiment *SentimentService, submissions SubmissionStore) *ModerationService {
	return &ModerationService{
		profanity:   profanity,
		sentiment:   sentiment,
		submissions: submissions,
	}
}

// Submit moderates text, persists the outcome and returns its view. Sentiment
// is only computed when analyzeSentiment is set; it runs alongside the
// profanity pipeline.
func (s *ModerationService) Submit(ctx context.Context, text string, analyzeSentiment bool) (*SubmissionView, error) {
	var (
		verdict   domain.ModerationVerdict
		sentiment *domain.SentimentResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.profanity.Evaluate(gctx, text)
		if err != nil {
			return err
		}
		verdict = v
		return nil
	})
	if analyzeSentiment {
		g.Go(func() error {
			r := s.sentiment.Evaluate(gctx, text)
			sentiment = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	submission := &domain.Submission{
		OriginalText:    text,
		ModeratedOutput: moderatedOutput(text, verdict, sentiment),
		Timestamp:       nowUTC().Unix(),
	}
	if sentiment != nil {
		data, err := domain.EncodeSentiment(*sentiment)
		if err != nil {
			return nil, fmt.Errorf("submit: encode sentiment: %w", err)
		}
		submission.AdditionalData = data
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldSubmissionID:  submission.ID,
		logger.FieldVerdictSource: verdict.Source,
	}).Info(ctx, "Submission recorded")

	return &SubmissionView{
		ID:              submission.ID,
		OriginalText:    submission.OriginalText,
		ModeratedResult: domain.ModeratedResult(submission.ModeratedOutput),
		Timestamp:       submission.Timestamp,
		Sentiment:       sentiment,
	}, nil
}

// History returns the most recent submissions, newest first. limit is
// normalized with NormalizeHistoryLimit.
func (s *ModerationService) History(ctx context.Context, limit int) ([]SubmissionView, error) {
	rows, err := s.submissions.ListRecent(ctx, NormalizeHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	views := make([]SubmissionView, 0, len(rows))
	for i := range rows {
		views = append(views, SubmissionView{
			ID:              rows[i].ID,
			OriginalText:    rows[i].OriginalText,
			ModeratedResult: domain.ModeratedResult(rows[i].ModeratedOutput),
			Timestamp:       rows[i].Timestamp,
			Sentiment:       rows[i].SentimentSnapshot(),
		})
	}
	return views, nil
}

// Analyze runs sentiment and profanity side by side without recording a
// submission.
func (s *ModerationService) Analyze(ctx context.Context, text string) (*SentimentAnalysis, error) {
	var (
		verdict   domain.ModerationVerdict
		sentiment domain.SentimentResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sentiment = s.sentiment.Evaluate(gctx, text)
		return nil
	})
	g.Go(func() error {
		v, err := s.profanity.Evaluate(gctx, text)
		if err != nil {
			return err
		}
		verdict = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	check := ProfanityCheck{ContainsProfanity: verdict.Blocked}
	if verdict.Blocked && len(verdict.MatchedWords) > 0 {
		check.ProfaneWords = verdict.MatchedWords
	}
	return &SentimentAnalysis{SentimentResult: sentiment, ProfanityCheck: check}, nil
}

// moderatedOutput renders the stored output string. Profanity wins over
// toxicity; clean text is returned unchanged.
func moderatedOutput(text string, verdict domain.ModerationVerdict, sentiment *domain.SentimentResult) string {
	if verdict.Blocked {
		words := strings.Join(verdict.MatchedWords, ", ")
		if verdict.Source == domain.VerdictSourceAI {
			return "Text contains profanity (detected by AI): " + words
		}
		return "Text contains profanity: " + words
	}
	if sentiment != nil && sentiment.Toxicity {
		return "Text flagged for toxic content (sentiment toxicity score: " +
			strconv.FormatFloat(sentiment.Score, 'f', -1, 64) + ")"
	}
	return text
}

// NormalizeHistoryLimit maps non-positive limits to the default and caps
// large ones.
func NormalizeHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

// ParseHistoryLimit parses a query parameter value; anything unparsable
// yields the default.
func ParseHistoryLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultHistoryLimit
	}
	return NormalizeHistoryLimit(n)
}
