// Package chunk splits document text into sections for section-level scoring.
//
// Sections follow the markdown structure of the document where there is one:
//  1. A heading line always starts a new section, so the heading stays attached
//     to the body it introduces
//  2. Paragraphs (double newlines) are packed together up to the size limit
//  3. Oversized paragraphs are split on sentence boundaries, then on words
//
// Usage Example:
//
//	sections := chunk.Sections(markdown, 1500)
package chunk

import (
	"log/slog"
	"strings"
)

// DefaultSectionSize is the section size used when callers pass a non-positive size.
const DefaultSectionSize = 1500

// splitStrategy defines a fallback delimiter for oversized paragraphs.
type splitStrategy struct {
	name      string
	delimiter string
}

// strategies are ordered from largest unit to smallest
var strategies = []splitStrategy{
	{name: "line", delimiter: "\n"},
	{name: "sentence", delimiter: ". "},
	{name: "word", delimiter: " "},
}

// Sections breaks text into sections of at most maxSize bytes (single words
// longer than maxSize are kept whole). Empty text yields no sections.
func Sections(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = DefaultSectionSize
	}
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	var sections []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sections = append(sections, s)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if isHeading(paragraph) {
			flush()
		}

		if len(paragraph) > maxSize {
			flush()
			sections = append(sections, splitOversized(paragraph, maxSize)...)
			continue
		}

		if current.Len() > 0 && current.Len()+2+len(paragraph) > maxSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	slog.Debug("Text split into sections", "textLength", len(text), "maxSize", maxSize, "sections", len(sections))
	return sections
}

// isHeading reports whether a paragraph starts with a markdown ATX heading
func isHeading(paragraph string) bool {
	hashes := 0
	for hashes < len(paragraph) && paragraph[hashes] == '#' {
		hashes++
	}
	return hashes > 0 && hashes <= 6 && hashes < len(paragraph) && paragraph[hashes] == ' '
}

// splitOversized applies the fallback strategies until every piece fits
func splitOversized(paragraph string, maxSize int) []string {
	pending := []string{paragraph}
	for _, strategy := range strategies {
		var next []string
		for _, piece := range pending {
			if len(piece) <= maxSize {
				next = append(next, piece)
				continue
			}
			next = append(next, pack(strings.Split(piece, strategy.delimiter), strategy.delimiter, maxSize)...)
		}
		pending = next
	}
	return pending
}

// pack greedily joins parts back together with delimiter up to maxSize
func pack(parts []string, delimiter string, maxSize int) []string {
	var packed []string
	var current strings.Builder
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(delimiter)+len(part) > maxSize {
			packed = append(packed, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(delimiter)
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		packed = append(packed, current.String())
	}
	return packed
}
