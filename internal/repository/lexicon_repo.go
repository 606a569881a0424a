package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/modguard/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LexiconRepository handles swear word persistence.
type LexiconRepository struct {
	db *gorm.DB
}

// NewLexiconRepository creates a new LexiconRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *LexiconRepository: repository instance bound to db.
func NewLexiconRepository(db *gorm.DB) *LexiconRepository {
	return &LexiconRepository{db: db}
}

// Snapshot loads every lexicon word into an immutable snapshot.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.Lexicon: words in insertion order.
//   - error: non-nil if the query fails.
func (r *LexiconRepository) Snapshot(ctx context.Context) (*domain.Lexicon, error) {
	var words []string
	if err := r.db.WithContext(ctx).
		Model(&domain.SwearWord{}).
		Order("id ASC").
		Pluck("word", &words).Error; err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return domain.NewLexicon(words), nil
}

// Exists reports whether the normalized word is in the lexicon.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - word: word to look up; normalized before the query.
// Returns:
//   - bool: true if the word exists.
//   - error: non-nil if the lookup fails.
func (r *LexiconRepository) Exists(ctx context.Context, word string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.SwearWord{}).
		Where("word = ?", domain.NormalizeWord(word)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup word: %w", err)
	}
	return count > 0, nil
}

// InsertIfAbsent adds a word unless it is already present. Concurrent callers
// racing on the same word all succeed; exactly one sees created=true.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - word: word to insert; normalized before the insert.
// Returns:
//   - *domain.SwearWord: the stored row (new or existing).
//   - bool: true if this call inserted the row.
//   - error: non-nil if the insert or reload fails.
func (r *LexiconRepository) InsertIfAbsent(ctx context.Context, word string) (*domain.SwearWord, bool, error) {
	normalized := domain.NormalizeWord(word)
	if normalized == "" {
		return nil, false, fmt.Errorf("insert word: empty word")
	}

	entry := domain.SwearWord{Word: normalized}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "word"}},
			DoNothing: true,
		}).
		Create(&entry)
	if result.Error != nil {
		return nil, false, fmt.Errorf("insert word: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return &entry, true, nil
	}

	existing, err := r.GetByWord(ctx, normalized)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByWord retrieves a lexicon entry by its normalized word.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - word: word to look up.
// Returns:
//   - *domain.SwearWord: entry if found.
//   - error: gorm.ErrRecordNotFound (wrapped) if absent.
func (r *LexiconRepository) GetByWord(ctx context.Context, word string) (*domain.SwearWord, error) {
	var entry domain.SwearWord
	if err := r.db.WithContext(ctx).First(&entry, "word = ?", domain.NormalizeWord(word)).Error; err != nil {
		return nil, fmt.Errorf("get word: %w", err)
	}
	return &entry, nil
}

// Count returns the number of lexicon entries.
func (r *LexiconRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.SwearWord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count lexicon: %w", err)
	}
	return count, nil
}

// InsertMany inserts every word not already present and returns how many
// rows were added.
func (r *LexiconRepository) InsertMany(ctx context.Context, words []string) (int, error) {
	added := 0
	for _, w := range domain.NewLexicon(words).Words() {
		_, created, err := r.InsertIfAbsent(ctx, w)
		if err != nil {
			return added, err
		}
		if created {
			added++
		}
	}
	return added, nil
}

// IsNotFound reports whether err is a missing-row error from this package.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
