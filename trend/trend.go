// Package trend fits ordinary least squares models to KPI series. It is
// independent from the delay classifier and keeps no state between calls.
package trend

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// maxCondition bounds the design matrix condition number; above it the
// features are treated as collinear.
const maxCondition = 1e12

type Sample struct {
	Features []float64 `json:"features"`
	Target   float64   `json:"target"`
}

// Model is a fitted linear model y = Intercept + Coefficients·x.
type Model struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	R2           float64   `json:"r2"`
}

// Fit estimates an intercept and one coefficient per feature.
func Fit(samples []Sample) (*Model, error) {
	if len(samples) < 2 {
		return nil, errors.Wrapf(models.ErrInsufficientData, "need at least 2 samples, got %d", len(samples))
	}
	p := len(samples[0].Features)
	if p == 0 {
		return nil, errors.Wrap(models.ErrFeatureMismatch, "samples have no features")
	}
	n := len(samples)
	if n < p+1 {
		return nil, errors.Wrapf(models.ErrInsufficientData, "need at least %d samples for %d features, got %d", p+1, p, n)
	}

	x := mat.NewDense(n, p+1, nil)
	y := mat.NewVecDense(n, nil)
	for i, s := range samples {
		if len(s.Features) != p {
			return nil, errors.Wrapf(models.ErrFeatureMismatch, "sample %d has %d features, want %d", i, len(s.Features), p)
		}
		x.Set(i, 0, 1)
		for j, v := range s.Features {
			x.Set(i, j+1, v)
		}
		y.SetVec(i, s.Target)
	}

	var qr mat.QR
	qr.Factorize(x)
	if c := qr.Cond(); c > maxCondition || math.IsNaN(c) {
		return nil, errors.Wrapf(models.ErrDegenerateFeature, "design matrix is rank deficient (condition %g)", c)
	}
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, errors.Wrap(models.ErrDegenerateFeature, err.Error())
	}

	m := &Model{
		Intercept:    beta.AtVec(0),
		Coefficients: make([]float64, p),
	}
	for j := range m.Coefficients {
		m.Coefficients[j] = beta.AtVec(j + 1)
	}
	m.R2 = m.rSquared(samples)
	return m, nil
}

func (m *Model) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, errors.Wrapf(models.ErrFeatureMismatch, "got %d features, want %d", len(x), len(m.Coefficients))
	}
	y := m.Intercept
	for j, v := range x {
		y += m.Coefficients[j] * v
	}
	return y, nil
}

// rSquared is 1 for a perfect fit of a constant target and 0 for an
// imperfect one.
func (m *Model) rSquared(samples []Sample) float64 {
	var mean float64
	for _, s := range samples {
		mean += s.Target
	}
	mean /= float64(len(samples))

	var ssRes, ssTot float64
	for _, s := range samples {
		pred, _ := m.Predict(s.Features)
		ssRes += (s.Target - pred) * (s.Target - pred)
		ssTot += (s.Target - mean) * (s.Target - mean)
	}
	if ssTot == 0 {
		if ssRes < 1e-12 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
