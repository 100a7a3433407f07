// Package features computes the feature vector of each candidate keyphrase.
//
// Feature families are toggled by a Set and always appear in the same order
// (see Set.Names), so a vector computed at tagging time lines up with the
// vectors a model was trained on. The families are:
//   - Frequency: tf, idf and tf×idf against the corpus statistics table
//   - Keyphraseness: corpus prior of being a gold keyphrase, plus a seen flag
//   - Positions: relative first and last occurrence and their spread
//   - Length: phrase length in tokens
//   - NodeDegree: share of other candidates that co-occur nearby or share a stem
//   - Structure: best BM25 score of the phrase over the document's markdown sections
//   - Semantic: generality and relatedness from an external knowledge service
//
// Document-level work (co-occurrence graph, section index, semantic lookups) is
// done once in Prepare; Compute then reads it for one candidate.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/chriscorrea/bm25md"

	"github.com/chriscorrea/tagger/internal/candidate"
	"github.com/chriscorrea/tagger/internal/chunk"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/normalize"
	"github.com/chriscorrea/tagger/internal/semantic"
	"github.com/chriscorrea/tagger/internal/stats"
)

// Vector is the ordered feature vector of one candidate.
type Vector struct {
	Names  []string  // shared with the Computer; never modified
	Values []float64 // aligned with Names
}

// Computer computes feature vectors under a fixed configuration. It holds only
// read-only state and is safe for concurrent use across documents.
type Computer struct {
	opts     Options
	names    []string
	stats    *stats.Table
	semantic semantic.Source
}

// NewComputer creates a Computer. Families that read corpus statistics require
// a table, and the semantic family requires a source; a missing dependency is
// a configuration error.
func NewComputer(opts Options, table *stats.Table, source semantic.Source) (*Computer, error) {
	names := opts.Set.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no feature families enabled", errs.ErrConfiguration)
	}
	if opts.Set.NeedsStats() && table == nil {
		return nil, fmt.Errorf("%w: frequency and keyphraseness features require corpus statistics", errs.ErrConfiguration)
	}
	if opts.Set.Semantic && source == nil {
		return nil, fmt.Errorf("%w: semantic features require a knowledge service", errs.ErrConfiguration)
	}
	if opts.NodeDegreeWindow < 0 {
		opts.NodeDegreeWindow = 0
	}
	if opts.SemanticContext <= 0 {
		opts.SemanticContext = DefaultOptions().SemanticContext
	}
	if opts.SemanticTimeout <= 0 {
		opts.SemanticTimeout = semantic.DefaultTimeout
	}

	return &Computer{
		opts:     opts,
		names:    names,
		stats:    table,
		semantic: source,
	}, nil
}

// Names returns the ordered feature names of every vector this Computer produces.
func (c *Computer) Names() []string {
	return c.names
}

// Input is one document as seen by the feature computer.
type Input struct {
	Text       string
	Tokens     []normalize.Token
	Candidates []candidate.Candidate

	// Training excludes the document's own contribution from the corpus
	// statistics; Gold tells which candidate keys were gold keyphrases.
	Training bool
	Gold     map[string]bool
}

// Doc holds the document-level state features are computed from.
type Doc struct {
	length      int
	candidates  []candidate.Candidate
	index       map[string]int
	training    bool
	gold        map[string]bool
	degree      []float64
	salience    []float64
	generality  []float64
	relatedness []float64
}

// Candidates returns the candidates of the document in extraction order.
func (d *Doc) Candidates() []candidate.Candidate {
	return d.candidates
}

// Prepare performs the document-level computations for in.
func (c *Computer) Prepare(ctx context.Context, in Input) (*Doc, error) {
	doc := &Doc{
		length:     len(in.Tokens),
		candidates: in.Candidates,
		index:      make(map[string]int, len(in.Candidates)),
		training:   in.Training,
		gold:       in.Gold,
	}
	for i, cand := range in.Candidates {
		doc.index[cand.Key] = i
	}
	if len(in.Candidates) == 0 {
		return doc, nil
	}

	if c.opts.Set.NodeDegree {
		doc.degree = nodeDegrees(in.Candidates, c.opts.NodeDegreeWindow)
	}
	if c.opts.Set.Structure {
		doc.salience = sectionSalience(in.Text, in.Candidates, c.opts.SectionSize)
	}
	if c.opts.Set.Semantic {
		if err := c.semanticFeatures(ctx, doc); err != nil {
			return nil, err
		}
	}

	slog.Debug("Document prepared for features", "tokens", doc.length, "candidates", len(doc.candidates), "training", doc.training)
	return doc, nil
}

// Compute returns the feature vector of cand, which must belong to doc.
func (c *Computer) Compute(doc *Doc, cand candidate.Candidate) (Vector, error) {
	idx, ok := doc.index[cand.Key]
	if !ok {
		return Vector{}, fmt.Errorf("%w: candidate %q does not belong to the document", errs.ErrData, cand.Key)
	}

	length := float64(doc.length)
	if length < 1 {
		length = 1
	}

	var self *stats.Self
	if doc.training {
		self = &stats.Self{Gold: doc.gold[cand.Key]}
	}

	values := make([]float64, 0, len(c.names))
	set := c.opts.Set
	if set.Frequency {
		tf := float64(cand.Frequency()) / length
		idf := c.stats.IDF(cand.Key, self)
		values = append(values, tf, idf, tf*idf)
	}
	if set.Keyphraseness {
		kp, seen := c.stats.Keyphraseness(cand.Key, self)
		values = append(values, kp, boolValue(seen))
	}
	if set.Positions {
		first := float64(cand.FirstPosition()) / length
		last := float64(cand.LastPosition()) / length
		values = append(values, first, last, last-first)
	}
	if set.Length {
		values = append(values, float64(cand.Length()))
	}
	if set.NodeDegree {
		values = append(values, doc.degree[idx])
	}
	if set.Structure {
		values = append(values, doc.salience[idx])
	}
	if set.Semantic {
		values = append(values, doc.generality[idx], doc.relatedness[idx])
	}

	return Vector{Names: c.names, Values: values}, nil
}

// ComputeAll returns the vectors of every candidate of doc in candidate order.
func (c *Computer) ComputeAll(doc *Doc) ([]Vector, error) {
	vectors := make([]Vector, len(doc.candidates))
	for i, cand := range doc.candidates {
		v, err := c.Compute(doc, cand)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// nodeDegrees returns, for each candidate, the share of other candidates that
// share a content stem with it or occur within window tokens of it
func nodeDegrees(cands []candidate.Candidate, window int) []float64 {
	degrees := make([]float64, len(cands))
	if len(cands) < 2 {
		return degrees
	}

	neighbors := make([]map[int]struct{}, len(cands))
	for i := range neighbors {
		neighbors[i] = make(map[int]struct{})
	}
	link := func(a, b int) {
		if a == b {
			return
		}
		neighbors[a][b] = struct{}{}
		neighbors[b][a] = struct{}{}
	}

	// shared content stems
	byStem := make(map[string][]int)
	for i, cand := range cands {
		seen := make(map[string]bool, len(cand.Stems))
		for _, stem := range strings.Fields(cand.Concept) {
			if seen[stem] {
				continue
			}
			seen[stem] = true
			byStem[stem] = append(byStem[stem], i)
		}
	}
	for _, members := range byStem {
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				link(members[x], members[y])
			}
		}
	}

	// co-occurrence within the window
	type span struct{ cand, start, end int }
	var spans []span
	for i, cand := range cands {
		for _, occ := range cand.Occurrences {
			spans = append(spans, span{cand: i, start: occ.Start, end: occ.End})
		}
	}
	sort.Slice(spans, func(a, b int) bool {
		if spans[a].start != spans[b].start {
			return spans[a].start < spans[b].start
		}
		return spans[a].end < spans[b].end
	})
	for a := range spans {
		for b := a + 1; b < len(spans) && spans[b].start <= spans[a].end+window; b++ {
			link(spans[a].cand, spans[b].cand)
		}
	}

	others := float64(len(cands) - 1)
	for i := range cands {
		degrees[i] = float64(len(neighbors[i])) / others
	}
	return degrees
}

// sectionSalience scores each candidate's surface form against the document's
// markdown sections with BM25md and keeps the best section score, scaled so
// the most salient candidate of the document gets 1
func sectionSalience(text string, cands []candidate.Candidate, sectionSize int) []float64 {
	salience := make([]float64, len(cands))
	sections := chunk.Sections(text, sectionSize)
	if len(sections) == 0 {
		return salience
	}

	corpus := bm25md.NewCorpus()
	parser := bm25md.NewMarkdownFieldParser()
	for i, section := range sections {
		corpus.AddDocument(bm25md.Document{
			ID:       i,
			Fields:   parser.ParseDocument(section),
			Original: section,
		})
	}

	highest := 0.0
	for i, cand := range cands {
		query := cand.Surface()
		best := 0.0
		for s := range sections {
			if score := corpus.Score(query, s); score > best {
				best = score
			}
		}
		salience[i] = best
		if best > highest {
			highest = best
		}
	}

	if highest > 0 {
		for i := range salience {
			salience[i] /= highest
		}
	}
	return salience
}

// semanticFeatures fills generality and relatedness for every candidate.
// Relatedness is the mean relatedness to the document's most frequent candidates.
func (c *Computer) semanticFeatures(ctx context.Context, doc *Doc) error {
	n := len(doc.candidates)
	doc.generality = make([]float64, n)
	doc.relatedness = make([]float64, n)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return doc.candidates[order[a]].Frequency() > doc.candidates[order[b]].Frequency()
	})
	contextSize := c.opts.SemanticContext
	if contextSize > n {
		contextSize = n
	}
	anchors := order[:contextSize]

	pairs := make(map[[2]string]float64)
	for i, cand := range doc.candidates {
		phrase := cand.Surface()

		g, err := c.callWithTimeout(ctx, func(callCtx context.Context) (float64, error) {
			return c.semantic.Generality(callCtx, phrase)
		})
		if err != nil {
			return fmt.Errorf("%w: generality of %q: %v", errs.ErrCollaboratorUnavailable, phrase, err)
		}
		doc.generality[i] = g

		total, count := 0.0, 0
		for _, j := range anchors {
			if j == i {
				continue
			}
			key := pairKey(cand.Key, doc.candidates[j].Key)
			r, ok := pairs[key]
			if !ok {
				other := doc.candidates[j].Surface()
				r, err = c.callWithTimeout(ctx, func(callCtx context.Context) (float64, error) {
					return c.semantic.Related(callCtx, phrase, other)
				})
				if err != nil {
					return fmt.Errorf("%w: relatedness of %q and %q: %v", errs.ErrCollaboratorUnavailable, phrase, other, err)
				}
				pairs[key] = r
			}
			total += r
			count++
		}
		if count > 0 {
			doc.relatedness[i] = total / float64(count)
		}
	}
	return nil
}

func (c *Computer) callWithTimeout(ctx context.Context, call func(context.Context) (float64, error)) (float64, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.SemanticTimeout)
	defer cancel()
	return call(callCtx)
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
