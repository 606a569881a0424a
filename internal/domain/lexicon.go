package domain

import "strings"

// SwearWord is one lexicon entry. Words are stored lowercase and are never
// updated or deleted once inserted.
type SwearWord struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Word string `gorm:"type:text;not null;uniqueIndex:idx_swear_words_word" json:"word"`
}

// TableName returns the database table name for SwearWord.
func (SwearWord) TableName() string {
	return "swear_words"
}

// NormalizeWord lowercases w, trims it and collapses inner whitespace so that
// phrases compare equal regardless of spacing.
func NormalizeWord(w string) string {
	return strings.Join(strings.Fields(strings.ToLower(w)), " ")
}

// Lexicon is a read-only snapshot of the lexicon taken for a single request.
// The underlying table only grows, so a snapshot may miss a word inserted after
// it was taken but never contains a partial one.
type Lexicon struct {
	words []string
	set   map[string]struct{}
}

// NewLexicon builds a snapshot from words, normalizing and dropping empties
// and duplicates while keeping the first-seen order.
func NewLexicon(words []string) *Lexicon {
	l := &Lexicon{
		words: make([]string, 0, len(words)),
		set:   make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		w = NormalizeWord(w)
		if w == "" {
			continue
		}
		if _, ok := l.set[w]; ok {
			continue
		}
		l.set[w] = struct{}{}
		l.words = append(l.words, w)
	}
	return l
}

// Contains reports whether the normalized form of w is in the snapshot.
func (l *Lexicon) Contains(w string) bool {
	if l == nil {
		return false
	}
	_, ok := l.set[NormalizeWord(w)]
	return ok
}

// Words returns the snapshot's words in insertion order.
func (l *Lexicon) Words() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Len returns the number of words in the snapshot.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}
