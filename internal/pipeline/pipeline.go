// Package pipeline ties the keyphrase engine together: it turns documents into
// candidates and feature vectors, trains a scoring model over a labeled corpus,
// and ranks the candidates of unseen documents.
//
// A Pipeline is created Configured. Train, Install or Load make it Trained; only
// then can it tag documents. The trained state (model, corpus statistics and
// feature computer) is immutable and published with an atomic swap, so tagging
// may run concurrently with a retraining run and always sees a complete state.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/chriscorrea/tagger/internal/candidate"
	"github.com/chriscorrea/tagger/internal/corpus"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
	"github.com/chriscorrea/tagger/internal/lang"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/normalize"
	"github.com/chriscorrea/tagger/internal/semantic"
	"github.com/chriscorrea/tagger/internal/stats"
	"github.com/chriscorrea/tagger/internal/store"
)

// Reporter is told about every document a corpus run finishes.
type Reporter interface {
	Done(ok bool)
}

// pinger is implemented by knowledge services that can be probed cheaply
type pinger interface {
	Ping(ctx context.Context) error
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithSemantic sets the knowledge service used by the semantic feature family.
func WithSemantic(source semantic.Source) Option {
	return func(p *Pipeline) { p.semantic = source }
}

// WithReporter sets a progress reporter for Train and TagAll.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// trainedState is published once complete and never modified
type trainedState struct {
	model    model.Model
	stats    *stats.Table
	computer *features.Computer
	features features.Options // effective options, semantic family possibly dropped
}

// Pipeline extracts keyphrases under one Config.
type Pipeline struct {
	cfg        Config
	normalizer *normalize.Normalizer
	semantic   semantic.Source
	reporter   Reporter

	state atomic.Pointer[trainedState]
}

// New creates a Configured pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var language lang.Language
	var err error
	if len(cfg.Stopwords) > 0 {
		language, err = lang.NewWithStopwords(cfg.Language, cfg.Stopwords)
	} else {
		language, err = lang.New(cfg.Language)
	}
	if err != nil {
		return nil, err
	}
	normalizer, err := normalize.New(language)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, normalizer: normalizer}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Language returns the language services the pipeline tokenizes with.
func (p *Pipeline) Language() lang.Language {
	return p.normalizer.Language()
}

// Trained reports whether the pipeline holds a model.
func (p *Pipeline) Trained() bool {
	return p.state.Load() != nil
}

// Model returns the current model, or nil before training.
func (p *Pipeline) Model() model.Model {
	if s := p.state.Load(); s != nil {
		return s.model
	}
	return nil
}

// Install makes m and table the pipeline's trained state. The model must have
// been trained on exactly the feature vectors this pipeline computes.
func (p *Pipeline) Install(m model.Model, table *stats.Table) error {
	if m == nil {
		return fmt.Errorf("%w: no model to install", errs.ErrConfiguration)
	}

	opts := p.cfg.Features
	if !slices.Contains(m.Features(), features.Generality) {
		opts.Set.Semantic = false
	}
	computer, err := features.NewComputer(opts, table, p.semantic)
	if err != nil {
		return err
	}
	if err := model.CheckFeatures(m.Features(), computer.Names()); err != nil {
		return err
	}

	p.state.Store(&trainedState{model: m, stats: table, computer: computer, features: opts})
	slog.Debug("Model installed", "algorithm", m.Algorithm(), "features", m.Features())
	return nil
}

// Save writes the trained state and configuration to path.
func (p *Pipeline) Save(path string) error {
	s := p.state.Load()
	if s == nil {
		return fmt.Errorf("%w: nothing to save before training", errs.ErrConfiguration)
	}

	cfg := p.cfg
	cfg.Features = s.features
	config, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return store.Save(path, store.Bundle{Model: s.model, Stats: s.stats, Config: config})
}

// Load creates a Trained pipeline from a model file. The saved configuration
// is used as is, except for Workers which comes from workers.
func Load(path string, workers int, opts ...Option) (*Pipeline, error) {
	bundle, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(bundle.Config, &cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode saved configuration: %v", errs.ErrModelMismatch, err)
	}
	cfg.Workers = workers

	p, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Install(bundle.Model, bundle.Stats); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadInto installs the model saved at path into p after checking that it was
// trained under a compatible configuration.
func (p *Pipeline) LoadInto(path string) error {
	bundle, err := store.Load(path)
	if err != nil {
		return err
	}
	var saved Config
	if err := json.Unmarshal(bundle.Config, &saved); err != nil {
		return fmt.Errorf("%w: failed to decode saved configuration: %v", errs.ErrModelMismatch, err)
	}
	if err := p.cfg.compatible(saved); err != nil {
		return err
	}
	return p.Install(bundle.Model, bundle.Stats)
}

// analyzed is a tokenized document with its candidates
type analyzed struct {
	name       string
	text       string
	tokens     []normalize.Token
	candidates []candidate.Candidate
	gold       map[string]bool
}

// analyze tokenizes doc and extracts its candidates. Gold keyphrases are
// matched by stem sequence; unmatched ones are logged.
func (p *Pipeline) analyze(doc corpus.Document) (*analyzed, error) {
	tokens, err := p.normalizer.Tokens(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize %q: %w", doc.Name, err)
	}
	cands := candidate.Extract(tokens, p.cfg.MinPhraseLength, p.cfg.MaxPhraseLength)

	a := &analyzed{name: doc.Name, text: doc.Text, tokens: tokens, candidates: cands}
	if len(doc.Gold) == 0 {
		return a, nil
	}

	keys := make(map[string]bool, len(cands))
	for _, c := range cands {
		keys[c.Key] = true
	}
	a.gold = make(map[string]bool, len(doc.Gold))
	for _, phrase := range doc.Gold {
		stems, err := p.normalizer.Stems(phrase)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize gold keyphrase %q: %w", phrase, err)
		}
		key := candidate.Key(stems)
		if !keys[key] {
			slog.Warn("Gold keyphrase does not match any candidate", "document", doc.Name, "keyphrase", phrase)
			continue
		}
		a.gold[key] = true
	}
	return a, nil
}

func (p *Pipeline) report(ok bool) {
	if p.reporter != nil {
		p.reporter.Done(ok)
	}
}
