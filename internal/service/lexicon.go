package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/timmy/modguard/internal/domain"
	"github.com/timmy/modguard/internal/logger"
	"github.com/timmy/modguard/internal/storage"
)

// ErrWordListNotFound is returned when an imported word list object does not
// exist.
var ErrWordListNotFound = errors.New("word list not found")

// LexiconBulkStore is the lexicon persistence needed for bulk maintenance.
type LexiconBulkStore interface {
	Snapshot(ctx context.Context) (*domain.Lexicon, error)
	InsertMany(ctx context.Context, words []string) (int, error)
}

// LexiconService seeds the lexicon and moves word lists to and from object
// storage. objects may be nil when storage is not configured.
type LexiconService struct {
	store   LexiconBulkStore
	objects storage.ObjectStorage
}

// NewLexiconService creates a LexiconService.
func NewLexiconService(store LexiconBulkStore, objects storage.ObjectStorage) *LexiconService {
	return &LexiconService{store: store, objects: objects}
}

// Seed inserts words that are not yet in the lexicon. Running it twice is
// harmless.
func (s *LexiconService) Seed(ctx context.Context, words []string) (int, error) {
	added, err := s.store.InsertMany(ctx, words)
	if err != nil {
		return added, fmt.Errorf("seed lexicon: %w", err)
	}
	logger.With(logger.Fields{logger.FieldTask: "seed"}).WithCount(added).Info(ctx, "Lexicon seeded")
	return added, nil
}

// Import reads a newline-delimited word list from r and seeds it.
func (s *LexiconService) Import(ctx context.Context, r io.Reader) (int, error) {
	words, err := ParseWordList(r)
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, words)
}

// ImportObject downloads a word list from object storage and seeds it.
func (s *LexiconService) ImportObject(ctx context.Context, key string) (int, error) {
	if s.objects == nil {
		return 0, fmt.Errorf("import lexicon: object storage not configured")
	}
	ok, err := s.objects.Exists(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("import lexicon %s: %w", key, err)
	}
	if !ok {
		return 0, fmt.Errorf("import lexicon %s: %w", key, ErrWordListNotFound)
	}
	body, err := s.objects.Download(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("import lexicon %s: %w", key, err)
	}
	defer body.Close()
	return s.Import(ctx, body)
}

// Export writes the current lexicon to w, one word per line.
func (s *LexiconService) Export(ctx context.Context, w io.Writer) (int, error) {
	lex, err := s.store.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("export lexicon: %w", err)
	}
	if _, err := w.Write(FormatWordList(lex.Words())); err != nil {
		return 0, fmt.Errorf("export lexicon: %w", err)
	}
	return lex.Len(), nil
}

// ExportObject uploads the current lexicon to object storage under key.
func (s *LexiconService) ExportObject(ctx context.Context, key string) (int, error) {
	if s.objects == nil {
		return 0, fmt.Errorf("export lexicon: object storage not configured")
	}
	var buf bytes.Buffer
	n, err := s.Export(ctx, &buf)
	if err != nil {
		return 0, err
	}
	if err := s.objects.Upload(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/plain; charset=utf-8"); err != nil {
		return 0, fmt.Errorf("export lexicon %s: %w", key, err)
	}
	logger.With(logger.Fields{logger.FieldTask: "export", logger.FieldSize: buf.Len()}).
		WithCount(n).Info(ctx, "Lexicon exported to %s", key)
	return n, nil
}

// ParseWordList reads one word or phrase per line. Blank lines and lines
// starting with # are skipped.
func ParseWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return words, nil
}

// FormatWordList renders words in the format ParseWordList reads.
func FormatWordList(words []string) []byte {
	var buf bytes.Buffer
	for _, w := range words {
		buf.WriteString(w)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
