package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/tagger/internal/candidate"
	"github.com/chriscorrea/tagger/internal/corpus"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
	"github.com/chriscorrea/tagger/internal/rank"
)

// Tagged is the outcome of tagging one document in a batch.
type Tagged struct {
	Name   string
	Result rank.Result
	Err    error
}

// ExtractKeyphrases returns the top k keyphrases of doc (the configured TopK
// when k is not positive). Candidates occurring fewer than MinNumOccur times
// are not ranked, matching what the model was trained on. A document without
// candidates yields an empty result.
func (p *Pipeline) ExtractKeyphrases(ctx context.Context, doc corpus.Document, k int) (rank.Result, error) {
	s := p.state.Load()
	if s == nil {
		return nil, fmt.Errorf("%w: pipeline must be trained or loaded before tagging", errs.ErrConfiguration)
	}
	if k <= 0 {
		k = p.cfg.TopK
	}

	a, err := p.analyze(corpus.Document{Name: doc.Name, Text: doc.Text})
	if err != nil {
		return nil, err
	}
	if len(a.candidates) == 0 {
		return rank.Result{}, nil
	}

	prepared, err := s.computer.Prepare(ctx, features.Input{
		Text:       a.text,
		Tokens:     a.tokens,
		Candidates: a.candidates,
	})
	if err != nil {
		return nil, err
	}
	vectors, err := s.computer.ComputeAll(prepared)
	if err != nil {
		return nil, err
	}

	var cands []candidate.Candidate
	var kept []features.Vector
	for i, c := range a.candidates {
		if c.Frequency() < p.cfg.MinNumOccur {
			continue
		}
		cands = append(cands, c)
		kept = append(kept, vectors[i])
	}

	result, err := rank.Rank(cands, kept, s.model, k)
	if err != nil {
		return nil, err
	}
	slog.Debug("Document tagged", "document", doc.Name, "candidates", len(a.candidates), "ranked", len(cands), "keyphrases", result.Phrases())
	return result, nil
}

// TagAll tags docs concurrently and returns one Tagged per document, in input
// order. A document that fails is reported in its Tagged.Err and does not stop
// the batch; configuration errors and model mismatches stop it.
func (p *Pipeline) TagAll(ctx context.Context, docs []corpus.Document, k int) ([]Tagged, error) {
	if !p.Trained() {
		return nil, fmt.Errorf("%w: pipeline must be trained or loaded before tagging", errs.ErrConfiguration)
	}

	results := make([]Tagged, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.ExtractKeyphrases(gctx, doc, k)
			if errors.Is(err, errs.ErrConfiguration) || errors.Is(err, errs.ErrModelMismatch) {
				return err
			}
			if err != nil {
				slog.Warn("Failed to tag document", "document", doc.Name, "error", err)
			}
			results[i] = Tagged{Name: doc.Name, Result: result, Err: err}
			p.report(err == nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
