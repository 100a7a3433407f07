// Package classify drops boilerplate sections (navigation, copyright footers,
// publishing metadata) from HTML-derived document text before keyphrase
// extraction, so menu and footer phrases do not become candidates.
//
// A section is boilerplate when the share of its words that stem to a known
// marker exceeds a position-dependent threshold: sections near the start and
// end of a document are judged more strictly than those in the middle.
package classify

import (
	"math"
	"regexp"
	"strings"

	"github.com/chriscorrea/tagger/internal/lang"
)

// markerWords appear disproportionately in page chrome. They are stemmed with
// the configured language when a Classifier is built.
var markerWords = []string{
	// publishing and document structure
	"appendix", "author", "chapter", "contents", "ebook", "edition", "footer",
	"glossary", "gutenberg", "index", "isbn", "page", "publisher", "published",
	// navigation and interaction
	"about", "home", "login", "menu", "navigation", "newsletter", "profile",
	"share", "sign", "subscribe", "updated",
	// legal
	"cookies", "copyright", "license", "permission", "policy", "privacy",
	"reproduced", "reserved", "rights", "terms",
	// references
	"citation", "department", "references",
	// french and spanish page chrome
	"accueil", "confidentialité", "droits", "légales", "réservés",
	"derechos", "inicio", "privacidad", "reservados",
}

// Classifier identifies boilerplate sections for one language.
type Classifier struct {
	language   lang.Language
	markers    map[string]struct{}
	tokenRegex *regexp.Regexp
}

// New builds a Classifier whose marker set is stemmed with language.
func New(language lang.Language) *Classifier {
	markers := make(map[string]struct{}, len(markerWords))
	for _, w := range markerWords {
		markers[language.Stem(w)] = struct{}{}
	}
	return &Classifier{
		language:   language,
		markers:    markers,
		tokenRegex: regexp.MustCompile(`\p{L}+`),
	}
}

// IsBoilerplate reports whether the section at index of total sections is
// page chrome rather than content. Sections without any words count as
// boilerplate; out-of-range positions never do.
func (c *Classifier) IsBoilerplate(section string, index, total int) bool {
	if total <= 0 || index < 0 || index >= total {
		return false
	}

	words := c.tokenRegex.FindAllString(strings.ToLower(section), -1)
	if len(words) == 0 {
		return true
	}

	hits := 0
	for _, w := range words {
		if _, ok := c.markers[c.language.Stem(w)]; ok {
			hits++
		}
	}

	return float64(hits)/float64(len(words)) > threshold(index, total)
}

// Filter returns the sections that are not boilerplate, in order. When every
// section looks like boilerplate the input is returned unchanged, so a short
// page is never emptied.
func (c *Classifier) Filter(sections []string) []string {
	kept := make([]string, 0, len(sections))
	for i, s := range sections {
		if !c.IsBoilerplate(s, i, len(sections)) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return sections
	}
	return kept
}

// threshold rises from 0.1 at the document edges to 0.33 in the middle.
// Documents of three sections or fewer use a flat 0.5.
func threshold(index, total int) float64 {
	const (
		edge   = 0.1
		middle = 0.33
	)
	if total <= 3 {
		return 0.5
	}
	rel := float64(index) / float64(total-1)
	return edge + (middle-edge)*(1-math.Abs(2*rel-1))
}
