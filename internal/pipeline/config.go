package pipeline

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
	"github.com/chriscorrea/tagger/internal/lang"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/rank"
)

// SemanticPolicy decides what happens when the knowledge service cannot be
// reached while training.
type SemanticPolicy string

const (
	// SemanticOmit trains without the semantic family.
	SemanticOmit SemanticPolicy = "omit"
	// SemanticFail aborts the run.
	SemanticFail SemanticPolicy = "fail"
)

// Config fixes everything that shapes candidates and feature vectors. It is
// saved with a trained model and a loaded model is only used under the
// configuration it was trained with.
type Config struct {
	Language  string   `json:"language"`
	Stopwords []string `json:"stopwords,omitempty"` // replaces the built-in list when set

	MinPhraseLength int `json:"min_phrase_length"`
	MaxPhraseLength int `json:"max_phrase_length"`
	MinNumOccur     int `json:"min_num_occur"`

	Features features.Options `json:"features"`
	Model    model.Options    `json:"model"`

	Semantic SemanticPolicy `json:"semantic_policy"`
	TopK     int            `json:"top_k"`

	// Workers bounds document-level parallelism; it is not part of a saved model.
	Workers int `json:"-"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Language:        lang.Default,
		MinPhraseLength: 1,
		MaxPhraseLength: 5,
		MinNumOccur:     2,
		Features:        features.DefaultOptions(),
		Model:           model.DefaultOptions(),
		Semantic:        SemanticOmit,
		TopK:            rank.DefaultK,
		Workers:         runtime.NumCPU(),
	}
}

func (c Config) validate() error {
	switch {
	case c.MinPhraseLength < 1:
		return fmt.Errorf("%w: min phrase length must be at least 1, got %d", errs.ErrConfiguration, c.MinPhraseLength)
	case c.MaxPhraseLength < c.MinPhraseLength:
		return fmt.Errorf("%w: max phrase length %d is below min phrase length %d", errs.ErrConfiguration, c.MaxPhraseLength, c.MinPhraseLength)
	case c.MinNumOccur < 1:
		return fmt.Errorf("%w: min occurrences must be at least 1, got %d", errs.ErrConfiguration, c.MinNumOccur)
	case c.Semantic != SemanticOmit && c.Semantic != SemanticFail:
		return fmt.Errorf("%w: semantic policy must be %q or %q, got %q", errs.ErrConfiguration, SemanticOmit, SemanticFail, c.Semantic)
	case len(c.Features.Set.Names()) == 0:
		return fmt.Errorf("%w: no feature families enabled", errs.ErrConfiguration)
	}
	if c.Model.Algorithm != "" && !slices.Contains(model.Algorithms(), c.Model.Algorithm) {
		return fmt.Errorf("%w: unknown algorithm %q (available: %v)", errs.ErrConfiguration, c.Model.Algorithm, model.Algorithms())
	}
	return nil
}

// withDefaults fills the zero-valued knobs that have a sensible default
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.Semantic == "" {
		c.Semantic = d.Semantic
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// compatible reports whether a model trained under saved can be used by a
// pipeline configured as c
func (c Config) compatible(saved Config) error {
	if c.Language != saved.Language {
		return fmt.Errorf("%w: model trained for language %q, pipeline uses %q", errs.ErrModelMismatch, saved.Language, c.Language)
	}
	if !slices.Equal(c.Stopwords, saved.Stopwords) {
		return fmt.Errorf("%w: model trained with a different stopword list", errs.ErrModelMismatch)
	}
	if c.MinPhraseLength != saved.MinPhraseLength || c.MaxPhraseLength != saved.MaxPhraseLength {
		return fmt.Errorf("%w: model trained on phrases of %d..%d tokens, pipeline extracts %d..%d",
			errs.ErrModelMismatch, saved.MinPhraseLength, saved.MaxPhraseLength, c.MinPhraseLength, c.MaxPhraseLength)
	}
	if c.MinNumOccur != saved.MinNumOccur {
		return fmt.Errorf("%w: model trained with min occurrences %d, pipeline uses %d", errs.ErrModelMismatch, saved.MinNumOccur, c.MinNumOccur)
	}
	if featureShape(c.Features, saved.Features.Set.Semantic) != featureShape(saved.Features, saved.Features.Set.Semantic) {
		return fmt.Errorf("%w: model trained with feature options %+v, pipeline uses %+v", errs.ErrModelMismatch, saved.Features, c.Features)
	}
	return nil
}

// featureShape keeps the options that change feature values. The semantic
// toggle is settled by Install and the timeout only bounds calls.
func featureShape(opts features.Options, semantic bool) features.Options {
	opts.Set.Semantic = false
	opts.SemanticTimeout = 0
	if !semantic {
		opts.SemanticContext = 0
	}
	return opts
}
