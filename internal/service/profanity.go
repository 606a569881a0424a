package service

import (
	"context"
	"fmt"

	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/logger"
)

// LexiconStore is the persistent, append-only set of known profane words.
type LexiconStore interface {
	Snapshot(ctx context.Context) (*domain.Lexicon, error)
	Exists(ctx context.Context, word string) (bool, error)
	InsertIfAbsent(ctx context.Context, word string) (*domain.SwearWord, bool, error)
}

// ProfanityService decides whether text is profane, consulting the lexicon
// first and the model only when the lexicon finds nothing.
type ProfanityService struct {
	lexicon    LexiconStore
	classifier ProfanityExtractor
}

// NewProfanityService creates a ProfanityService.
// Parameters:
//   - lexicon: lexicon persistence.
//   - classifier: model-backed extractor used when the lexicon has no match.
//
// Returns:
//   - *ProfanityService: service instance.
func NewProfanityService(lexicon LexiconStore, classifier ProfanityExtractor) *ProfanityService {
	return &ProfanityService{lexicon: lexicon, classifier: classifier}
}

// Evaluate runs the two-stage profanity pipeline. Words the model reports
// that are missing from the lexicon are added to it when they occur in text,
// so later requests containing them are decided locally.
func (s *ProfanityService) Evaluate(ctx context.Context, text string) (domain.ModerationVerdict, error) {
	lex, err := s.lexicon.Snapshot(ctx)
	if err != nil {
		return domain.ModerationVerdict{}, fmt.Errorf("profanity: %w", err)
	}

	if matches := MatchLexicon(text, lex); len(matches) > 0 {
		logger.With(logger.Fields{
			logger.FieldVerdictSource: domain.VerdictSourceLocal,
			logger.FieldMatchedWords:  matches,
		}).Info(ctx, "Profanity matched lexicon")
		return domain.ModerationVerdict{Blocked: true, MatchedWords: matches, Source: domain.VerdictSourceLocal}, nil
	}

	words, err := s.classifier.ExtractProfanity(ctx, text)
	if err != nil {
		logger.CtxWarn(ctx, "Profanity classifier unavailable, treating text as clean: %v", err)
	}
	if len(words) == 0 {
		return domain.CleanVerdict(), nil
	}

	learned := 0
	for _, w := range words {
		if lex.Contains(w) {
			continue
		}
		if !occursIn(text, w) {
			logger.CtxDebug(ctx, "Classifier word %q not found in text, not learned", w)
			continue
		}
		if _, created, err := s.lexicon.InsertIfAbsent(ctx, w); err != nil {
			return domain.ModerationVerdict{}, fmt.Errorf("profanity: learn %q: %w", w, err)
		} else if created {
			learned++
		}
	}

	logger.With(logger.Fields{
		logger.FieldVerdictSource: domain.VerdictSourceAI,
		logger.FieldMatchedWords:  words,
	}).WithCount(learned).Info(ctx, "Profanity detected by classifier")

	return domain.ModerationVerdict{Blocked: true, MatchedWords: words, Source: domain.VerdictSourceAI}, nil
}

// CheckText returns Blocked when text is profane, otherwise Clean(text).
func (s *ProfanityService) CheckText(ctx context.Context, text string) (domain.Outcome, error) {
	verdict, err := s.Evaluate(ctx, text)
	if err != nil {
		return domain.Outcome{}, err
	}
	if verdict.Blocked {
		return domain.Outcome{Blocked: true}, nil
	}
	return domain.Outcome{Text: text}, nil
}

// IsSwearWord reports whether word is in the lexicon. The model is never
// consulted.
func (s *ProfanityService) IsSwearWord(ctx context.Context, word string) (bool, error) {
	ok, err := s.lexicon.Exists(ctx, word)
	if err != nil {
		return false, fmt.Errorf("profanity: %w", err)
	}
	return ok, nil
}

// AddSwearWord inserts word into the lexicon. created is false when the word
// was already present; the existing entry is returned in that case.
func (s *ProfanityService) AddSwearWord(ctx context.Context, word string) (*domain.SwearWord, bool, error) {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return nil, false, fmt.Errorf("profanity: empty word")
	}
	entry, created, err := s.lexicon.InsertIfAbsent(ctx, normalized)
	if err != nil {
		return nil, false, fmt.Errorf("profanity: %w", err)
	}
	return entry, created, nil
}
