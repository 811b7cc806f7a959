package models

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSprint(t *testing.T) {
	tests := []struct {
		name    string
		metrics SprintMetrics
		status  string
		wantErr bool
	}{
		{"on time", SprintMetrics{25, 8, 2, 4}, "OnTime", false},
		{"delayed", SprintMetrics{20, 15, 5, 2}, "Delayed", false},
		{"zero pending is valid", SprintMetrics{40, 0, 0, 5}, "OnTime", false},
		{"unknown status", SprintMetrics{25, 8, 2, 4}, "Late", true},
		{"likert too low", SprintMetrics{25, 8, 2, 0}, "OnTime", true},
		{"likert too high", SprintMetrics{25, 8, 2, 6}, "OnTime", true},
		{"negative count", SprintMetrics{-1, 8, 2, 4}, "OnTime", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSprint(7, tt.metrics, tt.status)
			if tt.wantErr {
				assert.True(t, errors.Is(err, BadParameterError), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), s.ID)
			assert.Equal(t, tt.status == "Delayed", s.IsDelayed())
		})
	}
}

func TestSprintMetricsVectorOrder(t *testing.T) {
	m, err := NewSprintMetrics(30, 10, 2, 4)
	require.NoError(t, err)

	v := m.Vector()
	assert.Equal(t, FeatureKeys, v.Keys)
	assert.Equal(t, []float64{30, 10, 2, 4}, v.Values)
	assert.True(t, v.Matches(FeatureKeys))
}

func TestSprintMetricsSelectUnknownKey(t *testing.T) {
	m := SprintMetrics{30, 10, 2, 4}
	_, err := m.Select([]string{FeatureTasksPending, "velocity"})
	assert.True(t, errors.Is(err, ErrFeatureMismatch))

	v, err := m.Select([]string{FeatureLikertScore, FeatureTasksCompleted})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 30}, v.Values)
	assert.False(t, v.Matches(FeatureKeys))
}

func TestNewFeatureVector(t *testing.T) {
	_, err := NewFeatureVector(FeatureKeys, []float64{1, 2, 3})
	assert.True(t, errors.Is(err, ErrFeatureMismatch))

	keys := []string{"a", "b"}
	values := []float64{1, 2}
	v, err := NewFeatureVector(keys, values)
	require.NoError(t, err)
	values[0] = 99
	assert.Equal(t, 1.0, v.Values[0], "vector must not alias caller slices")
}

func TestNewPrediction(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	p, err := NewPrediction(3, 0.25, "team is progressing normally", now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.SprintID)
	assert.Equal(t, int64(0), p.ID)
	assert.Equal(t, time.UTC, p.CreatedAt.Location())

	for _, prob := range []float64{-0.1, 1.01, math.NaN()} {
		_, err := NewPrediction(3, prob, "x", now)
		assert.True(t, errors.Is(err, BadParameterError), "probability %v", prob)
	}
	_, err = NewPrediction(3, 0.5, "  ", now)
	assert.True(t, errors.Is(err, BadParameterError))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "none", ErrorKind(nil))
	assert.Equal(t, "connection", ErrorKind(errors.Wrap(ErrConnection, "fetch sprints")))
	assert.Equal(t, "not_trained", ErrorKind(ErrNotTrained))
	assert.Equal(t, "feature_mismatch", ErrorKind(errors.Wrapf(ErrFeatureMismatch, "key %d", 2)))
	assert.Equal(t, "unknown", ErrorKind(errors.New("boom")))
}
