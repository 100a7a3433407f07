// Package normalize turns raw document text into the token stream consumed by
// candidate extraction and feature computation.
//
// Text is NFC-normalized, split into sentences and word tokens with prose, case
// folded, and annotated with stems and stopword flags from a lang.Language.
// Punctuation never becomes a token; it closes the current segment instead, so
// downstream phrase windows cannot cross punctuation or sentence boundaries.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/lang"
)

// Token is a normalized word unit of a document.
type Token struct {
	Surface  string // original form as written
	Folded   string // case-folded form used for stopword lookup
	Stem     string
	Position int // index among the document's word tokens
	Sentence int
	Segment  int // run of tokens not interrupted by punctuation
	Stopword bool
	Numeric  bool
}

// Normalizer tokenizes text for one language. It is safe for concurrent use.
type Normalizer struct {
	language lang.Language
}

// New creates a Normalizer backed by the given language services.
func New(language lang.Language) (*Normalizer, error) {
	if language == nil {
		return nil, fmt.Errorf("%w: normalizer requires a language", errs.ErrConfiguration)
	}
	return &Normalizer{language: language}, nil
}

// Language returns the language services used by the normalizer.
func (n *Normalizer) Language() lang.Language {
	return n.language
}

// Tokens returns the word tokens of text in document order. Invalid UTF-8
// bytes are dropped. Empty or whitespace-only text yields no tokens and no error.
func (n *Normalizer) Tokens(text string) ([]Token, error) {
	text = strings.TrimSpace(norm.NFC.String(strings.ToValidUTF8(text, "")))
	if text == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to segment text: %w", err)
	}

	// casers are stateful; one per call keeps Tokens safe for concurrent use
	folder := cases.Fold()

	var tokens []Token
	segment := 0
	for sentenceIdx, sentence := range doc.Sentences() {
		words, err := sentenceWords(sentence.Text)
		if err != nil {
			return nil, err
		}

		for _, word := range words {
			if !isWord(word) {
				segment++
				continue
			}
			folded := folder.String(word)
			tokens = append(tokens, Token{
				Surface:  word,
				Folded:   folded,
				Stem:     n.language.Stem(folded),
				Position: len(tokens),
				Sentence: sentenceIdx,
				Segment:  segment,
				Stopword: n.language.IsStopword(folded),
				Numeric:  isNumeric(word),
			})
		}
		segment++
	}

	slog.Debug("Text normalized", "textLength", len(text), "sentences", len(doc.Sentences()), "tokens", len(tokens))
	return tokens, nil
}

// Stems normalizes a short phrase (such as a gold keyphrase) into its stem
// sequence, dropping punctuation.
func (n *Normalizer) Stems(phrase string) ([]string, error) {
	tokens, err := n.Tokens(phrase)
	if err != nil {
		return nil, err
	}
	stems := make([]string, len(tokens))
	for i, tok := range tokens {
		stems[i] = tok.Stem
	}
	return stems, nil
}

// sentenceWords tokenizes a single sentence
func sentenceWords(sentence string) ([]string, error) {
	doc, err := prose.NewDocument(sentence,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize sentence: %w", err)
	}

	proseTokens := doc.Tokens()
	words := make([]string, 0, len(proseTokens))
	for _, tok := range proseTokens {
		words = append(words, tok.Text)
	}
	return words, nil
}

// isWord reports whether a prose token carries at least one letter or digit
func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// isNumeric reports whether a token has digits but no letters (e.g. "1,000", "3.5")
func isNumeric(s string) bool {
	digits := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
		if unicode.IsDigit(r) {
			digits = true
		}
	}
	return digits
}
