// Package lang provides the language-specific services consumed by the tagging
// pipeline: stemming and stopword lookup.
//
// Each supported language is a named variant of the Language interface, selected
// through configuration with New. Stemming is backed by the snowball stemmers.
//
// Usage Example:
//
//	english, err := lang.New("english")
//	stem := english.Stem("networks") // "network"
//	english.IsStopword("the")        // true
package lang

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/chriscorrea/tagger/internal/errs"
)

// Language defines the capability set of a language variant.
type Language interface {
	// Name returns the configuration name of the language (e.g. "english").
	Name() string
	// Stem returns the stem of a lower-cased word.
	Stem(word string) string
	// IsStopword reports whether a lower-cased word is a stopword.
	IsStopword(word string) bool
}

// Default is the language used when the configuration names none.
const Default = "english"

// stopwordLists maps each supported language to its stopword list
var stopwordLists = map[string]string{
	"english": englishStopwords,
	"french":  frenchStopwords,
	"spanish": spanishStopwords,
}

// Supported returns the names of the supported languages in sorted order.
func Supported() []string {
	names := make([]string, 0, len(stopwordLists))
	for name := range stopwordLists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snowballLanguage is a Language backed by a snowball stemmer and a stopword set.
type snowballLanguage struct {
	name      string
	stopwords map[string]struct{}
}

// New creates the Language variant registered under name.
// An unknown name is a configuration error.
func New(name string) (Language, error) {
	if name == "" {
		name = Default
	}
	name = strings.ToLower(name)
	list, ok := stopwordLists[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported language %q (supported: %s)",
			errs.ErrConfiguration, name, strings.Join(Supported(), ", "))
	}
	return NewWithStopwords(name, strings.Fields(list))
}

// NewWithStopwords creates a Language variant for name that uses the given
// stopwords instead of the built-in list.
func NewWithStopwords(name string, stopwords []string) (Language, error) {
	name = strings.ToLower(name)
	// probe the stemmer once so an unsupported language fails at configuration time
	if _, err := snowball.Stem("probe", name, true); err != nil {
		return nil, fmt.Errorf("%w: stemmer unavailable for %q: %v", errs.ErrCollaboratorUnavailable, name, err)
	}

	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	slog.Debug("Language configured", "language", name, "stopwords", len(set))
	return &snowballLanguage{name: name, stopwords: set}, nil
}

// Name returns the configuration name of the language.
func (l *snowballLanguage) Name() string {
	return l.name
}

// Stem returns the snowball stem of word. Words the stemmer rejects are
// returned unchanged.
func (l *snowballLanguage) Stem(word string) string {
	stemmed, err := snowball.Stem(word, l.name, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

// IsStopword reports whether word is in the stopword set.
func (l *snowballLanguage) IsStopword(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}
