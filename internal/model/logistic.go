package model

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// convergenceTolerance stops gradient descent once the gradient norm falls below it
const convergenceTolerance = 1e-7

// logisticParams is a logistic regression over standardized features
type logisticParams struct {
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func (p *logisticParams) width() int {
	return len(p.Weights)
}

func (p *logisticParams) probability(x []float64) float64 {
	row := standardize(x, p.Mean, p.Scale)
	return sigmoid(p.Bias + floats.Dot(p.Weights, row))
}

// fitLogistic runs full-batch gradient descent from zero weights, which keeps
// training deterministic without a random seed
func fitLogistic(x [][]float64, y []bool, opts Options) (params, error) {
	n, d := len(x), len(x[0])
	mean, scale := standardization(x)

	rows := make([][]float64, n)
	for i, row := range x {
		rows[i] = standardize(row, mean, scale)
	}

	sampleWeights := classWeights(y, opts.BalanceClasses)
	totalWeight := floats.Sum(sampleWeights)

	weights := make([]float64, d)
	grad := make([]float64, d)
	bias := 0.0

	iterations := 0
	for iterations < opts.Iterations {
		iterations++
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0

		for i, row := range rows {
			p := sigmoid(bias + floats.Dot(weights, row))
			g := (p - label(y[i])) * sampleWeights[i]
			floats.AddScaled(grad, g, row)
			gradBias += g
		}
		floats.Scale(1/totalWeight, grad)
		gradBias /= totalWeight
		floats.AddScaled(grad, opts.L2, weights)

		floats.AddScaled(weights, -opts.LearningRate, grad)
		bias -= opts.LearningRate * gradBias

		if floats.Norm(grad, 2) < convergenceTolerance && math.Abs(gradBias) < convergenceTolerance {
			break
		}
	}

	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.New("logistic regression diverged")
		}
	}

	slog.Debug("Logistic regression fitted", "examples", n, "features", d, "iterations", iterations, "bias", bias)
	return &logisticParams{Mean: mean, Scale: scale, Weights: weights, Bias: bias}, nil
}

func decodeLogistic(raw json.RawMessage) (params, error) {
	var p logisticParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if len(p.Mean) != len(p.Weights) || len(p.Scale) != len(p.Weights) {
		return nil, errors.New("mean, scale and weights differ in length")
	}
	for _, s := range p.Scale {
		if s == 0 {
			return nil, errors.New("zero scale")
		}
	}
	return &p, nil
}

// standardization returns per-feature mean and standard deviation; constant
// features get a scale of 1
func standardization(x [][]float64) (mean, scale []float64) {
	d := len(x[0])
	mean = make([]float64, d)
	scale = make([]float64, d)
	for j := 0; j < d; j++ {
		m, s := stat.MeanStdDev(column(x, j), nil)
		if math.IsNaN(s) || s < 1e-12 {
			s = 1
		}
		mean[j], scale[j] = m, s
	}
	return mean, scale
}

func standardize(x, mean, scale []float64) []float64 {
	row := make([]float64, len(x))
	for j := range x {
		row[j] = (x[j] - mean[j]) / scale[j]
	}
	return row
}

// classWeights gives every example weight 1, or, when balancing, weights that
// make both classes contribute equally
func classWeights(y []bool, balance bool) []float64 {
	w := make([]float64, len(y))
	pos := 0
	for _, l := range y {
		if l {
			pos++
		}
	}
	neg := len(y) - pos
	for i, l := range y {
		switch {
		case !balance:
			w[i] = 1
		case l:
			w[i] = float64(len(y)) / (2 * float64(pos))
		default:
			w[i] = float64(len(y)) / (2 * float64(neg))
		}
	}
	return w
}

func label(l bool) float64 {
	if l {
		return 1
	}
	return 0
}
