package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/timmy/modguard/internal/domain"
)

// Tokenize splits text into lowercase word tokens. A token is a maximal run
// of letters, digits and underscores; everything else separates tokens.
func Tokenize(text string) []string {
	spans := wordSpans(strings.ToLower(text))
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.text
	}
	return out
}

// span is a token and its byte offset in the lowercased text.
type span struct {
	text string
	pos  int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func wordSpans(s string) []span {
	spans := []span{}
	start := -1
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, span{text: s[start:i], pos: start})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{text: s[start:], pos: start})
	}
	return spans
}

// isEdgePunct covers sentence punctuation around a word. Symbols used to
// mask letters ($, *, @, #) are not in the set.
func isEdgePunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '"', '\'', '(', ')', '[', ']', '{', '}', '<', '>',
		'‘', '’', '“', '”', '«', '»':
		return true
	}
	return false
}

// rawSpans splits s on whitespace and trims sentence punctuation from both
// ends of every field.
func rawSpans(s string) []span {
	spans := []span{}
	emit := func(start, end int) {
		field := s[start:end]
		left := strings.TrimLeftFunc(field, isEdgePunct)
		tok := strings.TrimRightFunc(left, isEdgePunct)
		if tok != "" {
			spans = append(spans, span{text: tok, pos: start + len(field) - len(left)})
		}
	}
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				emit(start, i)
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		emit(start, len(s))
	}
	return spans
}

type phrase struct {
	word   string
	tokens []string
}

// phraseIndex maps the first token of each entry to the entries starting
// with it.
type phraseIndex map[string][]phrase

func (idx phraseIndex) add(word string, tokens []string) {
	idx[tokens[0]] = append(idx[tokens[0]], phrase{word: word, tokens: tokens})
}

// scan records the first position of every entry found in spans.
func (idx phraseIndex) scan(spans []span, found map[string]int) {
	if len(idx) == 0 {
		return
	}
	for i, sp := range spans {
		for _, p := range idx[sp.text] {
			if pos, ok := found[p.word]; ok && pos <= sp.pos {
				continue
			}
			if hasPrefixTokens(spans[i:], p.tokens) {
				found[p.word] = sp.pos
			}
		}
	}
}

// classifyEntry decides how an entry is matched. Entries made only of word
// tokens match word tokens of the text, so "ass" never matches inside
// "class". Entries carrying other runes ("a$$", "f***", "sh!t") match only
// whole whitespace-delimited tokens with sentence punctuation trimmed, so
// their letters alone never match.
func classifyEntry(word string) (tokens []string, symbolic bool) {
	raw := rawSpans(word)
	if len(raw) == 0 {
		return nil, false
	}
	rawTokens := make([]string, len(raw))
	for i, sp := range raw {
		rawTokens[i] = sp.text
	}

	words := Tokenize(word)
	if len(words) > 0 && strings.Join(words, " ") == strings.Join(rawTokens, " ") {
		return words, false
	}
	return rawTokens, true
}

// MatchLexicon returns the lexicon entries found in text as whole tokens, in
// order of first occurrence and without duplicates. An entry of several
// tokens matches a run of consecutive tokens.
func MatchLexicon(text string, lex *domain.Lexicon) []string {
	matches := []string{}
	if lex.Len() == 0 {
		return matches
	}

	wordIdx := phraseIndex{}
	symbolIdx := phraseIndex{}
	order := make(map[string]int, lex.Len())
	for i, w := range lex.Words() {
		tokens, symbolic := classifyEntry(w)
		if len(tokens) == 0 {
			continue
		}
		order[w] = i
		if symbolic {
			symbolIdx.add(w, tokens)
		} else {
			wordIdx.add(w, tokens)
		}
	}

	lower := strings.ToLower(text)
	found := make(map[string]int)
	wordIdx.scan(wordSpans(lower), found)
	symbolIdx.scan(rawSpans(lower), found)

	for w := range found {
		matches = append(matches, w)
	}
	sort.Slice(matches, func(i, j int) bool {
		pi, pj := found[matches[i]], found[matches[j]]
		if pi != pj {
			return pi < pj
		}
		return order[matches[i]] < order[matches[j]]
	})
	return matches
}

// occursIn reports whether word would be matched in text by MatchLexicon.
func occursIn(text, word string) bool {
	return len(MatchLexicon(text, domain.NewLexicon([]string{word}))) > 0
}

func hasPrefixTokens(spans []span, prefix []string) bool {
	if len(prefix) > len(spans) {
		return false
	}
	for i := range prefix {
		if spans[i].text != prefix[i] {
			return false
		}
	}
	return true
}
