package models

import (
	"slices"

	"github.com/cockroachdb/errors"
)

const (
	FeatureTasksCompleted = "tasksCompleted"
	FeatureTasksPending   = "tasksPending"
	FeatureIssuesReported = "issuesReported"
	FeatureLikertScore    = "likertScore"
)

// FeatureKeys is the fixed feature order used by the delay-risk model.
var FeatureKeys = []string{
	FeatureTasksCompleted,
	FeatureTasksPending,
	FeatureIssuesReported,
	FeatureLikertScore,
}

// FeatureVector pairs ordered feature names with their values.
type FeatureVector struct {
	Keys   []string
	Values []float64
}

func NewFeatureVector(keys []string, values []float64) (FeatureVector, error) {
	if len(keys) != len(values) {
		return FeatureVector{}, errors.Wrapf(ErrFeatureMismatch,
			"%d keys for %d values", len(keys), len(values))
	}
	return FeatureVector{
		Keys:   slices.Clone(keys),
		Values: slices.Clone(values),
	}, nil
}

// Matches reports whether v carries exactly keys, in the same order.
func (v FeatureVector) Matches(keys []string) bool {
	return len(v.Values) == len(v.Keys) && slices.Equal(v.Keys, keys)
}
