package ml

import (
	"slices"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// ScalerParams are the per-feature statistics fitted on a training partition.
type ScalerParams struct {
	Keys    []string  `json:"keys"`
	Means   []float64 `json:"means"`
	StdDevs []float64 `json:"stdDevs"`
}

// FitScaler computes the population mean and standard deviation of every
// column of X. Column j is named keys[j].
func FitScaler(X mat.Matrix, keys []string) (ScalerParams, error) {
	rows, cols := X.Dims()
	if cols != len(keys) {
		return ScalerParams{}, errors.Wrapf(models.ErrFeatureMismatch,
			"%d columns for %d feature keys", cols, len(keys))
	}
	if rows == 0 {
		return ScalerParams{}, errors.Wrap(models.ErrInsufficientData, "no rows to fit scaler")
	}

	p := ScalerParams{
		Keys:    slices.Clone(keys),
		Means:   make([]float64, cols),
		StdDevs: make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, X)
		p.Means[j], p.StdDevs[j] = stat.PopMeanStdDev(col, nil)
		if p.StdDevs[j] == 0 {
			return ScalerParams{}, errors.Wrapf(models.ErrDegenerateFeature,
				"feature %q is constant (%v) across %d training rows", keys[j], p.Means[j], rows)
		}
	}
	return p, nil
}

// Transform standardizes x. x must follow p.Keys order.
func (p ScalerParams) Transform(x []float64) ([]float64, error) {
	if len(x) != len(p.Means) {
		return nil, errors.Wrapf(models.ErrFeatureMismatch,
			"got %d features, scaler expects %d", len(x), len(p.Means))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		if p.StdDevs[j] == 0 {
			return nil, errors.Wrapf(models.ErrDegenerateFeature, "feature %q", p.Keys[j])
		}
		out[j] = (v - p.Means[j]) / p.StdDevs[j]
	}
	return out, nil
}
