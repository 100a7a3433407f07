// Package model provides the trained scoring model that turns a feature vector
// into a keyphrase likelihood, the trainer that fits it, and its serialized form.
//
// The learning algorithm is a pluggable strategy. Two are provided:
//   - "logistic": L2-regularized logistic regression on standardized features
//   - "naive_bayes": gaussian naive Bayes
//
// A model records the ordered feature names it was trained on and refuses to
// score vectors with any other names (errs.ErrModelMismatch). Models are never
// modified after training or deserialization.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
)

// Algorithm names.
const (
	Logistic   = "logistic"
	NaiveBayes = "naive_bayes"
)

// Model is a trained scoring model. Implementations are safe for concurrent use.
type Model interface {
	// Algorithm returns the name of the learning strategy.
	Algorithm() string
	// Features returns the ordered feature names the model was trained on.
	Features() []string
	// Metadata returns the training run summary.
	Metadata() Metadata
	// Score returns the keyphrase likelihood of v in [0,1].
	Score(v features.Vector) (float64, error)
	// Serialize encodes the model.
	Serialize() ([]byte, error)
}

// Algorithms returns the names of the available learning strategies.
func Algorithms() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// strategy bundles how an algorithm is fitted and decoded
type strategy struct {
	fit    func(x [][]float64, y []bool, cfg Options) (params, error)
	decode func(raw json.RawMessage) (params, error)
}

var strategies = map[string]strategy{
	Logistic:   {fit: fitLogistic, decode: decodeLogistic},
	NaiveBayes: {fit: fitNaiveBayes, decode: decodeNaiveBayes},
}

// params is the algorithm-specific part of a trained model
type params interface {
	// probability scores a raw feature row
	probability(x []float64) float64
	// width returns the number of features the params were fitted on
	width() int
}

// trained is the Model implementation shared by all strategies
type trained struct {
	algorithm string
	features  []string
	metadata  Metadata
	params    params
}

func (m *trained) Algorithm() string  { return m.algorithm }
func (m *trained) Features() []string { return slices.Clone(m.features) }
func (m *trained) Metadata() Metadata { return m.metadata }

// Score returns the keyphrase likelihood of v.
func (m *trained) Score(v features.Vector) (float64, error) {
	if err := CheckFeatures(m.features, v.Names); err != nil {
		return 0, err
	}
	if len(v.Values) != len(m.features) {
		return 0, fmt.Errorf("%w: vector has %d values for %d features", errs.ErrModelMismatch, len(v.Values), len(m.features))
	}
	p := m.params.probability(v.Values)
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: score is not a number for values %v", errs.ErrData, v.Values)
	}
	return math.Max(0, math.Min(1, p)), nil
}

// CheckFeatures returns errs.ErrModelMismatch unless got lists exactly the
// features in want, in the same order.
func CheckFeatures(want, got []string) error {
	if slices.Equal(want, got) {
		return nil
	}
	return fmt.Errorf("%w: model expects %d features [%s], got %d [%s]", errs.ErrModelMismatch,
		len(want), strings.Join(want, ","), len(got), strings.Join(got, ","))
}

// envelope is the serialized form of a model
type envelope struct {
	Algorithm string          `json:"algorithm"`
	Features  []string        `json:"features"`
	Metadata  Metadata        `json:"metadata"`
	Params    json.RawMessage `json:"params"`
}

// Serialize encodes the model as JSON. Float values round-trip exactly.
func (m *trained) Serialize() ([]byte, error) {
	raw, err := json.Marshal(m.params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s parameters: %w", m.algorithm, err)
	}
	data, err := json.Marshal(envelope{
		Algorithm: m.algorithm,
		Features:  m.features,
		Metadata:  m.metadata,
		Params:    raw,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	return data, nil
}

// Deserialize decodes a model produced by Serialize. Unknown algorithms and
// parameters inconsistent with the recorded features are model mismatches.
func Deserialize(data []byte) (Model, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: failed to decode model: %v", errs.ErrModelMismatch, err)
	}
	strat, ok := strategies[env.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm %q", errs.ErrModelMismatch, env.Algorithm)
	}
	if len(env.Features) == 0 {
		return nil, fmt.Errorf("%w: model records no features", errs.ErrModelMismatch)
	}
	p, err := strat.decode(env.Params)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s parameters: %v", errs.ErrModelMismatch, env.Algorithm, err)
	}
	if p.width() != len(env.Features) {
		return nil, fmt.Errorf("%w: parameters cover %d features, model records %d",
			errs.ErrModelMismatch, p.width(), len(env.Features))
	}
	return &trained{
		algorithm: env.Algorithm,
		features:  env.Features,
		metadata:  env.Metadata,
		params:    p,
	}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
