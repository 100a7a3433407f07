package model

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
)

// Example is one labeled candidate of a training document.
type Example struct {
	Vector      features.Vector
	Label       bool // candidate matched a gold keyphrase
	Occurrences int  // occurrences of the candidate in its document
}

// Metadata summarizes a training run.
type Metadata struct {
	Documents     int     `json:"documents"`
	Skipped       int     `json:"skipped"`
	Examples      int     `json:"examples"`
	Filtered      int     `json:"filtered"`
	Positives     int     `json:"positives"`
	Negatives     int     `json:"negatives"`
	PositiveRatio float64 `json:"positive_ratio"`
}

// Options configures the learning strategy.
type Options struct {
	Algorithm string `yaml:"algorithm" json:"algorithm"`

	// logistic regression
	Iterations     int     `yaml:"iterations" json:"iterations"`
	LearningRate   float64 `yaml:"learning_rate" json:"learning_rate"`
	L2             float64 `yaml:"l2" json:"l2"`
	BalanceClasses bool    `yaml:"balance_classes" json:"balance_classes"`

	// naive Bayes
	VarianceSmoothing float64 `yaml:"variance_smoothing" json:"variance_smoothing"`
}

// DefaultOptions returns logistic regression with conservative settings.
func DefaultOptions() Options {
	return Options{
		Algorithm:         Logistic,
		Iterations:        500,
		LearningRate:      0.5,
		L2:                1e-3,
		VarianceSmoothing: 1e-9,
	}
}

// withDefaults fills unset fields from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Algorithm == "" {
		o.Algorithm = d.Algorithm
	}
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.LearningRate <= 0 {
		o.LearningRate = d.LearningRate
	}
	if o.L2 < 0 {
		o.L2 = 0
	}
	if o.VarianceSmoothing <= 0 {
		o.VarianceSmoothing = d.VarianceSmoothing
	}
	return o
}

// Train fits a model on examples. Candidates with fewer than minNumOccur
// occurrences in their document are discarded first. No example is sampled
// away; the realized class balance is reported in the model metadata.
// Training is deterministic for the same examples and options.
func Train(examples []Example, minNumOccur int, opts Options) (Model, error) {
	opts = opts.withDefaults()
	strat, ok := strategies[opts.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm %q", errs.ErrConfiguration, opts.Algorithm)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no training examples", errs.ErrData)
	}

	names := examples[0].Vector.Names
	meta := Metadata{}
	var x [][]float64
	var y []bool
	for _, ex := range examples {
		if err := CheckFeatures(names, ex.Vector.Names); err != nil {
			return nil, err
		}
		if ex.Occurrences < minNumOccur {
			meta.Filtered++
			continue
		}
		x = append(x, ex.Vector.Values)
		y = append(y, ex.Label)
		if ex.Label {
			meta.Positives++
		} else {
			meta.Negatives++
		}
	}
	meta.Examples = len(x)
	if meta.Examples > 0 {
		meta.PositiveRatio = float64(meta.Positives) / float64(meta.Examples)
	}

	slog.Debug("Training examples collected", "algorithm", opts.Algorithm, "examples", meta.Examples,
		"filtered", meta.Filtered, "positives", meta.Positives, "negatives", meta.Negatives)

	if meta.Positives == 0 || meta.Negatives == 0 {
		return nil, fmt.Errorf("%w: training needs both keyphrase and non-keyphrase examples (positives=%d, negatives=%d, filtered=%d)",
			errs.ErrData, meta.Positives, meta.Negatives, meta.Filtered)
	}

	p, err := strat.fit(x, y, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s model: %w", opts.Algorithm, err)
	}

	return &trained{
		algorithm: opts.Algorithm,
		features:  slices.Clone(names),
		metadata:  meta,
		params:    p,
	}, nil
}

// WithRunMetadata returns a copy of m whose metadata also records the
// document counts of the training run.
func WithRunMetadata(m Model, documents, skipped int) Model {
	t, ok := m.(*trained)
	if !ok {
		return m
	}
	clone := *t
	clone.metadata.Documents = documents
	clone.metadata.Skipped = skipped
	return &clone
}

// column extracts feature j from every row
func column(x [][]float64, j int) []float64 {
	col := make([]float64, len(x))
	for i, row := range x {
		col[i] = row[j]
	}
	return col
}
