// Package stats holds the corpus-wide statistics used by the frequency and
// keyphraseness features.
//
// The table is built once per training run from the candidate keys of every
// training document and frozen afterwards. It records:
//   - Document frequency: in how many documents a stemmed phrase was a candidate
//   - Gold frequency: in how many of those documents it was a gold keyphrase
//
// From these it derives inverse document frequency and keyphraseness, the
// prior probability that a phrase is a keyphrase when it appears as a candidate.
//
// Usage Example:
//
//	b := stats.NewBuilder()
//	b.AddDocument(keys, gold)
//	table := b.Build()
//	kp, seen := table.Keyphraseness("neural network", nil)
package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// Self describes the contribution of the document whose features are being
// computed. During training each document's own counts are removed so its
// features do not leak its labels (leave-one-out).
type Self struct {
	Gold bool // whether the candidate is a gold keyphrase of this document
}

// Table is an immutable corpus statistics table. It is safe for concurrent use.
type Table struct {
	documents     int
	docFrequency  map[string]int
	goldFrequency map[string]int
}

// Documents returns the number of documents the table was built from.
func (t *Table) Documents() int {
	return t.documents
}

// Terms returns the number of distinct candidate keys in the table.
func (t *Table) Terms() int {
	return len(t.docFrequency)
}

// DocFrequency returns the number of documents in which key was a candidate.
func (t *Table) DocFrequency(key string) int {
	return t.docFrequency[key]
}

// IDF returns the smoothed inverse document frequency of key:
// log((N+1) / (df+1)). With self set, the current document is excluded.
func (t *Table) IDF(key string, self *Self) float64 {
	n := t.documents
	df := t.DocFrequency(key)
	if self != nil {
		n--
		if df > 0 {
			df--
		}
	}
	if n < 0 {
		n = 0
	}
	return math.Log(float64(n+1) / float64(df+1))
}

// Keyphraseness returns the fraction of documents in which key was a gold
// keyphrase among those in which it was a candidate, and whether key was seen
// at all. Unseen keys return (0, false).
func (t *Table) Keyphraseness(key string, self *Self) (float64, bool) {
	df := t.DocFrequency(key)
	gold := t.goldFrequency[key]
	if self != nil {
		df--
		if self.Gold {
			gold--
		}
	}
	if df <= 0 {
		return 0, false
	}
	if gold < 0 {
		gold = 0
	}
	return float64(gold) / float64(df), true
}

// Builder accumulates per-document candidate keys into a Table.
// It is not safe for concurrent use; callers add documents from one goroutine.
type Builder struct {
	documents     int
	docFrequency  map[string]int
	goldFrequency map[string]int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		docFrequency:  make(map[string]int),
		goldFrequency: make(map[string]int),
	}
}

// AddDocument records the distinct candidate keys of one document and which of
// them matched a gold keyphrase.
func (b *Builder) AddDocument(keys []string, gold map[string]bool) {
	b.documents++

	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		b.docFrequency[key]++
		if gold[key] {
			b.goldFrequency[key]++
		}
	}
}

// Build returns a frozen Table. The builder can keep accumulating afterwards
// without affecting the returned table.
func (b *Builder) Build() *Table {
	t := &Table{
		documents:     b.documents,
		docFrequency:  make(map[string]int, len(b.docFrequency)),
		goldFrequency: make(map[string]int, len(b.goldFrequency)),
	}
	for k, v := range b.docFrequency {
		t.docFrequency[k] = v
	}
	for k, v := range b.goldFrequency {
		t.goldFrequency[k] = v
	}

	slog.Debug("Corpus statistics built", "documents", t.documents, "terms", t.Terms(), "goldTerms", len(t.goldFrequency))
	return t
}

// tableJSON is the serialized form of a Table
type tableJSON struct {
	Documents     int            `json:"documents"`
	DocFrequency  map[string]int `json:"doc_frequency"`
	GoldFrequency map[string]int `json:"gold_frequency"`
}

// MarshalJSON encodes the table.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{
		Documents:     t.documents,
		DocFrequency:  t.docFrequency,
		GoldFrequency: t.goldFrequency,
	})
}

// UnmarshalJSON decodes a table produced by MarshalJSON.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode statistics table: %w", err)
	}
	if raw.Documents < 0 {
		return fmt.Errorf("invalid statistics table: negative document count %d", raw.Documents)
	}
	if raw.DocFrequency == nil {
		raw.DocFrequency = map[string]int{}
	}
	if raw.GoldFrequency == nil {
		raw.GoldFrequency = map[string]int{}
	}
	t.documents = raw.Documents
	t.docFrequency = raw.DocFrequency
	t.goldFrequency = raw.GoldFrequency
	return nil
}
