package ml

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// Artifact pairs the scaler and the forest produced by one training run.
// The scaler must never be refit outside of training.
type Artifact struct {
	ID          uuid.UUID    `json:"id"`
	FeatureKeys []string     `json:"featureKeys"`
	Scaler      ScalerParams `json:"scaler"`
	Forest      *Forest      `json:"forest"`
	TrainedAt   time.Time    `json:"trainedAt"`
	Accuracy    float64      `json:"accuracy"`
	TrainRows   int          `json:"trainRows"`
	HeldOutRows int          `json:"heldOutRows"`
}

// Validate checks the artifact is complete and internally consistent.
func (a *Artifact) Validate() error {
	if a == nil || a.Forest == nil || len(a.Forest.Trees) == 0 {
		return errors.New("artifact has no classifier")
	}
	n := len(a.FeatureKeys)
	if n == 0 || len(a.Scaler.Means) != n || len(a.Scaler.StdDevs) != n || a.Forest.Features != n {
		return errors.Newf("artifact feature dimensions disagree (keys=%d means=%d stds=%d forest=%d)",
			n, len(a.Scaler.Means), len(a.Scaler.StdDevs), a.Forest.Features)
	}
	for i, t := range a.Forest.Trees {
		if err := t.validate(n); err != nil {
			return errors.Wrapf(err, "tree %d", i)
		}
	}
	return nil
}

// Score returns the delayed probability for v using the persisted scaler.
func (a *Artifact) Score(v models.FeatureVector) (float64, error) {
	if !v.Matches(a.FeatureKeys) {
		return 0, errors.Wrapf(models.ErrFeatureMismatch,
			"model expects %v, got %v", a.FeatureKeys, v.Keys)
	}
	scaled, err := a.Scaler.Transform(v.Values)
	if err != nil {
		return 0, err
	}
	p, err := a.Forest.Proba(scaled)
	if err != nil {
		return 0, err
	}
	return min(1, max(0, p)), nil
}

// Summary describes an artifact without its fitted parameters.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	FeatureKeys []string  `json:"featureKeys"`
	Trees       int       `json:"trees"`
	TrainedAt   time.Time `json:"trainedAt"`
	Accuracy    float64   `json:"accuracy"`
	TrainRows   int       `json:"trainRows"`
	HeldOutRows int       `json:"heldOutRows"`
}

func (a *Artifact) Summary() Summary {
	s := Summary{
		ID:          a.ID,
		FeatureKeys: append([]string(nil), a.FeatureKeys...),
		TrainedAt:   a.TrainedAt,
		Accuracy:    a.Accuracy,
		TrainRows:   a.TrainRows,
		HeldOutRows: a.HeldOutRows,
	}
	if a.Forest != nil {
		s.Trees = len(a.Forest.Trees)
	}
	return s
}
