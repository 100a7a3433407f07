package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/tagger/internal/corpus"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/stats"
)

// Train fits a new model on docs and makes it the pipeline's trained state.
//
// A document that fails to tokenize, produces no candidates, or loses its
// knowledge-service lookups under the omit policy is skipped and counted in the
// model metadata; the run continues. Skipped documents do not contribute to the
// corpus statistics. Cancelling ctx aborts the run between documents and leaves
// any previous trained state in place.
func (p *Pipeline) Train(ctx context.Context, docs []corpus.Document) (model.Metadata, error) {
	if len(docs) == 0 {
		return model.Metadata{}, fmt.Errorf("%w: training corpus is empty", errs.ErrData)
	}

	opts, err := p.trainingFeatures(ctx)
	if err != nil {
		return model.Metadata{}, err
	}

	// pass 1: candidates
	analyzedDocs := make([]*analyzed, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := p.analyze(doc)
			if err != nil {
				slog.Warn("Skipping training document", "document", doc.Name, "error", err)
				return nil
			}
			if len(a.candidates) == 0 {
				slog.Warn("Skipping training document", "document", doc.Name, "error", fmt.Errorf("%w: document too short", errs.ErrData))
				return nil
			}
			analyzedDocs[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Metadata{}, err
	}

	table := corpusStats(analyzedDocs)
	if table.Documents() == 0 {
		return model.Metadata{}, fmt.Errorf("%w: none of the %d training documents produced candidates", errs.ErrData, len(docs))
	}

	computer, err := features.NewComputer(opts, table, p.semantic)
	if err != nil {
		return model.Metadata{}, err
	}

	// pass 2: document-level features, including knowledge-service lookups
	prepared := make([]*features.Doc, len(docs))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, a := range analyzedDocs {
		if a == nil {
			p.report(false)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := computer.Prepare(gctx, features.Input{
				Text:       a.text,
				Tokens:     a.tokens,
				Candidates: a.candidates,
				Training:   true,
				Gold:       a.gold,
			})
			if err != nil {
				if errors.Is(err, errs.ErrCollaboratorUnavailable) && p.cfg.Semantic == SemanticFail {
					return err
				}
				slog.Warn("Skipping training document", "document", a.name, "error", err)
				p.report(false)
				return nil
			}
			prepared[i] = doc
			p.report(true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Metadata{}, err
	}

	// documents dropped in pass 2 must not count in the statistics
	for i := range analyzedDocs {
		if prepared[i] == nil {
			analyzedDocs[i] = nil
		}
	}
	if rebuilt := corpusStats(analyzedDocs); rebuilt.Documents() != table.Documents() {
		slog.Debug("Rebuilding corpus statistics", "documents", rebuilt.Documents(), "before", table.Documents())
		table = rebuilt
		if computer, err = features.NewComputer(opts, table, p.semantic); err != nil {
			return model.Metadata{}, err
		}
	}

	var examples []model.Example
	used := 0
	for i, doc := range prepared {
		if doc == nil {
			continue
		}
		ex, err := p.examples(computer, analyzedDocs[i], doc)
		if err != nil {
			return model.Metadata{}, err
		}
		used++
		examples = append(examples, ex...)
	}
	skipped := len(docs) - used

	m, err := model.Train(examples, p.cfg.MinNumOccur, p.cfg.Model)
	if err != nil {
		return model.Metadata{}, err
	}
	m = model.WithRunMetadata(m, used, skipped)

	p.state.Store(&trainedState{model: m, stats: table, computer: computer, features: opts})

	meta := m.Metadata()
	slog.Info("Model trained", "algorithm", m.Algorithm(), "documents", meta.Documents, "skipped", meta.Skipped,
		"terms", table.Terms(), "examples", meta.Examples, "positives", meta.Positives, "negatives", meta.Negatives,
		"positiveRatio", meta.PositiveRatio)
	return meta, nil
}

// corpusStats builds the statistics table of the non-nil documents in order
func corpusStats(docs []*analyzed) *stats.Table {
	builder := stats.NewBuilder()
	for _, a := range docs {
		if a == nil {
			continue
		}
		keys := make([]string, len(a.candidates))
		for i, c := range a.candidates {
			keys[i] = c.Key
		}
		builder.AddDocument(keys, a.gold)
	}
	return builder.Build()
}

// examples computes the labeled feature vectors of one prepared training document
func (p *Pipeline) examples(computer *features.Computer, a *analyzed, doc *features.Doc) ([]model.Example, error) {
	vectors, err := computer.ComputeAll(doc)
	if err != nil {
		return nil, err
	}

	examples := make([]model.Example, len(vectors))
	for i, v := range vectors {
		cand := a.candidates[i]
		examples[i] = model.Example{
			Vector:      v,
			Label:       a.gold[cand.Key],
			Occurrences: cand.Frequency(),
		}
	}
	return examples, nil
}

// trainingFeatures resolves the feature options of a training run. When the
// semantic family is requested but the knowledge service is missing or does
// not answer, the semantic policy decides between dropping the family and
// failing the run.
func (p *Pipeline) trainingFeatures(ctx context.Context) (features.Options, error) {
	opts := p.cfg.Features
	if !opts.Set.Semantic {
		return opts, nil
	}

	var unavailable error
	if p.semantic == nil {
		unavailable = fmt.Errorf("%w: semantic features enabled without a knowledge service", errs.ErrConfiguration)
	} else if pg, ok := p.semantic.(pinger); ok {
		if err := pg.Ping(ctx); err != nil {
			unavailable = err
		}
	}
	if unavailable == nil {
		return opts, nil
	}

	if p.cfg.Semantic == SemanticFail {
		return opts, unavailable
	}
	slog.Warn("Training without semantic features", "error", unavailable)
	opts.Set.Semantic = false
	return opts, nil
}
