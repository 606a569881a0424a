package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/prompts"
)

const (
	maxAIWords   = 20
	maxWordRunes = 64

	sentimentCallFailed  = "Error occurred during sentiment analysis"
	sentimentParseFailed = "Error parsing sentiment analysis response"
)

// ProfanityExtractor asks the model which words in a text are profane.
type ProfanityExtractor interface {
	ExtractProfanity(ctx context.Context, text string) ([]string, error)
}

// SentimentAnalyzer asks the model for a sentiment and toxicity assessment.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (domain.SentimentResult, error)
}

// Classifier turns free-form model output into structured results. Every
// method returns a usable value even when it also returns an error; the error
// only explains why the value is the neutral default.
type Classifier struct {
	model   ModelClient
	timeout time.Duration
}

// NewClassifier creates a Classifier bound to model. Each call is limited to
// timeout when it is positive.
func NewClassifier(model ModelClient, timeout time.Duration) *Classifier {
	return &Classifier{model: model, timeout: timeout}
}

// ExtractProfanity returns the normalized profane words the model found in
// text, or an empty slice on any failure.
func (c *Classifier) ExtractProfanity(ctx context.Context, text string) ([]string, error) {
	raw, err := c.generate(ctx, prompts.BuildProfanityPrompt(text), GenerateOptions{
		System:      prompts.ProfanitySystemPrompt,
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return []string{}, err
	}

	words, err := parseProfaneWords(raw)
	if err != nil {
		return []string{}, err
	}
	return words, nil
}

// AnalyzeSentiment returns the model's sentiment assessment of text, or the
// neutral result with an explanation of the failure.
func (c *Classifier) AnalyzeSentiment(ctx context.Context, text string) (domain.SentimentResult, error) {
	raw, err := c.generate(ctx, prompts.BuildSentimentPrompt(text), GenerateOptions{
		System:      prompts.SentimentSystemPrompt,
		Temperature: 0.2,
		JSON:        true,
	})
	if err != nil {
		return domain.NeutralSentiment(sentimentCallFailed), err
	}

	result, err := parseSentiment(raw)
	if err != nil {
		return domain.NeutralSentiment(sentimentParseFailed), err
	}
	return result, nil
}

func (c *Classifier) generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c.model == nil {
		return "", ErrClassifierDisabled
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.model.Generate(ctx, prompt, opts)
}

// parseProfaneWords accepts {"profaneWords": [...]} or a bare array.
func parseProfaneWords(raw string) ([]string, error) {
	payload, err := decodeModelJSON(raw)
	if err != nil {
		return nil, err
	}

	var items []interface{}
	switch v := payload.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		list, ok := firstKey(v, "profaneWords", "profane_words", "words")
		if !ok {
			return nil, fmt.Errorf("profanity response has no word list")
		}
		if list == nil {
			return []string{}, nil
		}
		items, ok = list.([]interface{})
		if !ok {
			return nil, fmt.Errorf("profanity word list is %T, not an array", list)
		}
	default:
		return nil, fmt.Errorf("unexpected profanity response type %T", payload)
	}

	return sanitizeWords(items), nil
}

// sanitizeWords keeps string items only, normalized, bounded and deduplicated.
func sanitizeWords(items []interface{}) []string {
	words := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		w := domain.NormalizeWord(s)
		if w == "" || utf8.RuneCountInString(w) > maxWordRunes {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
		if len(words) == maxAIWords {
			break
		}
	}
	return words
}

// parseSentiment applies the defaults: unknown sentiment is neutral, a
// missing or non-numeric score is 0, missing toxicity is false.
func parseSentiment(raw string) (domain.SentimentResult, error) {
	payload, err := decodeModelJSON(raw)
	if err != nil {
		return domain.SentimentResult{}, err
	}
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return domain.SentimentResult{}, fmt.Errorf("sentiment response is %T, not an object", payload)
	}

	result := domain.SentimentResult{Sentiment: domain.SentimentNeutral}
	if s, ok := obj["sentiment"].(string); ok {
		result.Sentiment = domain.ParseSentiment(s)
	}
	result.Score = domain.ClampScore(toFloat(obj["score"]))
	result.Toxicity = toBool(obj["toxicity"])
	if e, ok := obj["explanation"].(string); ok {
		result.Explanation = strings.TrimSpace(e)
	}
	return result, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	case float64:
		return b != 0
	default:
		return false
	}
}

func firstKey(obj map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// decodeModelJSON strips a markdown fence and decodes the payload. When the
// remainder is not valid JSON the first balanced object or array is tried.
func decodeModelJSON(raw string) (interface{}, error) {
	content := strings.TrimSpace(stripCodeFence(raw))
	if content == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(content), &payload); err == nil {
		return payload, nil
	}

	block, err := extractJSONBlock(content)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return payload, nil
}

// stripCodeFence returns the body of the first ``` fenced block, or s.
func stripCodeFence(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}
	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return body
}

// extractJSONBlock finds the first balanced {...} or [...] in content,
// ignoring brackets inside string literals.
func extractJSONBlock(content string) (string, error) {
	start := strings.IndexAny(content, "{[")
	if start == -1 {
		return "", fmt.Errorf("no JSON found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("incomplete JSON in response")
}
