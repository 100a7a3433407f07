package model

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// naiveBayesParams is a gaussian naive Bayes model; index 0 is the
// non-keyphrase class, index 1 the keyphrase class
type naiveBayesParams struct {
	Prior    [2]float64   `json:"prior"`
	Mean     [2][]float64 `json:"mean"`
	Variance [2][]float64 `json:"variance"`
}

func (p *naiveBayesParams) width() int {
	return len(p.Mean[1])
}

func (p *naiveBayesParams) probability(x []float64) float64 {
	var logPost [2]float64
	for c := 0; c < 2; c++ {
		lp := math.Log(p.Prior[c])
		for j, v := range x {
			variance := p.Variance[c][j]
			diff := v - p.Mean[c][j]
			lp -= 0.5*math.Log(2*math.Pi*variance) + diff*diff/(2*variance)
		}
		logPost[c] = lp
	}
	return sigmoid(logPost[1] - logPost[0])
}

func fitNaiveBayes(x [][]float64, y []bool, opts Options) (params, error) {
	d := len(x[0])
	var byClass [2][][]float64
	for i, row := range x {
		c := 0
		if y[i] {
			c = 1
		}
		byClass[c] = append(byClass[c], row)
	}

	// smoothing is relative to the largest feature variance, as a floor for
	// features that are constant within a class
	largest := 0.0
	for j := 0; j < d; j++ {
		_, v := stat.MeanVariance(column(x, j), nil)
		if !math.IsNaN(v) && v > largest {
			largest = v
		}
	}
	epsilon := opts.VarianceSmoothing * largest
	if epsilon <= 0 {
		epsilon = opts.VarianceSmoothing
	}

	p := &naiveBayesParams{}
	for c := 0; c < 2; c++ {
		p.Prior[c] = float64(len(byClass[c])) / float64(len(x))
		p.Mean[c] = make([]float64, d)
		p.Variance[c] = make([]float64, d)
		for j := 0; j < d; j++ {
			m, v := stat.MeanVariance(column(byClass[c], j), nil)
			if math.IsNaN(v) {
				v = 0
			}
			p.Mean[c][j] = m
			p.Variance[c][j] = v + epsilon
		}
	}

	slog.Debug("Naive Bayes fitted", "features", d, "prior", p.Prior[1], "meanVariance", floats.Sum(p.Variance[1])/float64(d))
	return p, nil
}

func decodeNaiveBayes(raw json.RawMessage) (params, error) {
	var p naiveBayesParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	d := len(p.Mean[1])
	if len(p.Mean[0]) != d || len(p.Variance[0]) != d || len(p.Variance[1]) != d {
		return nil, errors.New("class parameters differ in length")
	}
	for c := 0; c < 2; c++ {
		if p.Prior[c] <= 0 {
			return nil, errors.New("class prior must be positive")
		}
		for _, v := range p.Variance[c] {
			if v <= 0 {
				return nil, errors.New("variance must be positive")
			}
		}
	}
	return &p, nil
}
