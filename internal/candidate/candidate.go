// Package candidate extracts candidate keyphrases from a normalized token stream.
//
// A candidate is a phrase of minLen..maxLen consecutive tokens that stays within
// one punctuation-free segment and neither starts nor ends on a stopword or a
// bare number. Interior stopwords are allowed ("model of computation").
// Candidates are keyed by their stem sequence, so differently cased or inflected
// occurrences of the same phrase collapse into one Candidate.
package candidate

import (
	"sort"
	"strings"

	"github.com/chriscorrea/tagger/internal/normalize"
)

// Occurrence is one appearance of a candidate in the document.
type Occurrence struct {
	Start   int // position of the first token
	End     int // position of the last token (inclusive)
	Surface string
}

// Candidate is a stemmed phrase with all of its occurrences in one document.
type Candidate struct {
	Key         string   // stems joined by a single space
	Stems       []string // ordered stem sequence
	Concept     string   // sorted content stems, shared by reordered variants
	Occurrences []Occurrence
}

// Length returns the phrase length in tokens.
func (c Candidate) Length() int {
	return len(c.Stems)
}

// Frequency returns the number of occurrences.
func (c Candidate) Frequency() int {
	return len(c.Occurrences)
}

// FirstPosition returns the start position of the first occurrence.
func (c Candidate) FirstPosition() int {
	if len(c.Occurrences) == 0 {
		return 0
	}
	return c.Occurrences[0].Start
}

// LastPosition returns the start position of the last occurrence.
func (c Candidate) LastPosition() int {
	if len(c.Occurrences) == 0 {
		return 0
	}
	return c.Occurrences[len(c.Occurrences)-1].Start
}

// Surface returns the most frequent surface form; ties go to the form seen first.
func (c Candidate) Surface() string {
	counts := make(map[string]int, len(c.Occurrences))
	best, bestCount := "", 0
	for _, occ := range c.Occurrences {
		counts[occ.Surface]++
		if counts[occ.Surface] > bestCount {
			best, bestCount = occ.Surface, counts[occ.Surface]
		}
	}
	return best
}

// Extract returns the candidates of a token stream in order of first
// occurrence (ties by phrase length). A token stream shorter than minLen
// yields no candidates.
func Extract(tokens []normalize.Token, minLen, maxLen int) []Candidate {
	if minLen < 1 {
		minLen = 1
	}
	if maxLen < minLen || len(tokens) < minLen {
		return nil
	}

	index := make(map[string]int)
	var candidates []Candidate

	for i := range tokens {
		if isBoundary(tokens[i]) {
			continue
		}

		for n := 1; n <= maxLen; n++ {
			j := i + n - 1
			if j >= len(tokens) || tokens[j].Segment != tokens[i].Segment {
				break
			}
			if n < minLen || isBoundary(tokens[j]) {
				continue
			}

			window := tokens[i : j+1]
			key := Key(stemsOf(window))
			occ := Occurrence{
				Start:   tokens[i].Position,
				End:     tokens[j].Position,
				Surface: surfaceOf(window),
			}

			if idx, ok := index[key]; ok {
				candidates[idx].Occurrences = append(candidates[idx].Occurrences, occ)
				continue
			}
			index[key] = len(candidates)
			candidates = append(candidates, Candidate{
				Key:         key,
				Stems:       stemsOf(window),
				Concept:     conceptOf(window),
				Occurrences: []Occurrence{occ},
			})
		}
	}

	return candidates
}

// Key builds the candidate key for a stem sequence.
func Key(stems []string) string {
	return strings.Join(stems, " ")
}

// isBoundary reports whether a token may not start or end a candidate
func isBoundary(tok normalize.Token) bool {
	return tok.Stopword || tok.Numeric
}

func stemsOf(window []normalize.Token) []string {
	stems := make([]string, len(window))
	for i, tok := range window {
		stems[i] = tok.Stem
	}
	return stems
}

func surfaceOf(window []normalize.Token) string {
	words := make([]string, len(window))
	for i, tok := range window {
		words[i] = tok.Surface
	}
	return strings.Join(words, " ")
}

// conceptOf sorts the non-stopword stems so "network neural" and
// "neural network" share a concept
func conceptOf(window []normalize.Token) string {
	var content []string
	for _, tok := range window {
		if !tok.Stopword {
			content = append(content, tok.Stem)
		}
	}
	sort.Strings(content)
	return strings.Join(content, " ")
}
