// Package rank orders a document's candidates by model score and returns the
// top keyphrases.
package rank

import (
	"fmt"
	"sort"

	"github.com/chriscorrea/tagger/internal/candidate"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
)

// DefaultK is the number of keyphrases returned when k is not positive.
const DefaultK = 10

// Scorer scores a feature vector. model.Model satisfies it.
type Scorer interface {
	Score(v features.Vector) (float64, error)
}

// Entry is one ranked keyphrase.
type Entry struct {
	Key           string  `json:"key"`    // stemmed form
	Phrase        string  `json:"phrase"` // best surface form
	Score         float64 `json:"score"`
	FirstPosition int     `json:"first_position"`
	Length        int     `json:"length"`
	concept       string
}

// Result is a ranked keyphrase list, best first.
type Result []Entry

// Phrases returns the surface forms of the result in rank order.
func (r Result) Phrases() []string {
	phrases := make([]string, len(r))
	for i, e := range r {
		phrases[i] = e.Phrase
	}
	return phrases
}

// Rank scores every candidate and returns at most k entries sorted by score
// descending. Exact ties go to the earlier first occurrence, then the shorter
// phrase, then the stemmed form. Only the best-scoring candidate of each
// concept is kept, so reordered variants do not take two slots.
// vectors[i] must be the feature vector of cands[i].
func Rank(cands []candidate.Candidate, vectors []features.Vector, scorer Scorer, k int) (Result, error) {
	if scorer == nil {
		return nil, fmt.Errorf("%w: ranking requires a trained or loaded model", errs.ErrConfiguration)
	}
	if len(cands) != len(vectors) {
		return nil, fmt.Errorf("%w: %d candidates but %d feature vectors", errs.ErrData, len(cands), len(vectors))
	}
	if k <= 0 {
		k = DefaultK
	}

	entries := make([]Entry, len(cands))
	for i, cand := range cands {
		score, err := scorer.Score(vectors[i])
		if err != nil {
			return nil, fmt.Errorf("failed to score candidate %q: %w", cand.Key, err)
		}
		concept := cand.Concept
		if concept == "" {
			concept = cand.Key
		}
		entries[i] = Entry{
			Key:           cand.Key,
			Phrase:        cand.Surface(),
			Score:         score,
			FirstPosition: cand.FirstPosition(),
			Length:        cand.Length(),
			concept:       concept,
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		ea, eb := entries[a], entries[b]
		if ea.Score != eb.Score {
			return ea.Score > eb.Score
		}
		if ea.FirstPosition != eb.FirstPosition {
			return ea.FirstPosition < eb.FirstPosition
		}
		if ea.Length != eb.Length {
			return ea.Length < eb.Length
		}
		return ea.Key < eb.Key
	})

	result := make(Result, 0, min(k, len(entries)))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if len(result) == k {
			break
		}
		if seen[e.concept] || seen[e.Key] {
			continue
		}
		seen[e.concept] = true
		seen[e.Key] = true
		result = append(result, e)
	}
	return result, nil
}
