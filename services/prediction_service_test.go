package services

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

func TestPredictRecordsAndPublishes(t *testing.T) {
	recorder := &memoryRecorder{}
	publisher := &recordingPublisher{}
	svc := NewPredictionService(staticSource{artifact: trainedArtifact(t)}, recorder, publisher, discardLogger())

	p, err := svc.Predict(context.Background(), 16, vector(t, 15, 25, 7, 1))
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, int64(16), p.SprintID)
	assert.Greater(t, p.DelayProbability, ml.DelayThreshold)
	assert.Equal(t, ml.RecommendationReduceBacklog, p.Recommendation)
	assert.False(t, p.CreatedAt.IsZero())

	require.Len(t, recorder.rows, 1)
	assert.Equal(t, p, recorder.rows[0])
	require.Len(t, publisher.messages, 1)
	assert.Equal(t, ChannelPredictions, publisher.messages[0].channel)
	assert.Equal(t, p, publisher.messages[0].payload)
}

func TestPredictOnTrackSprint(t *testing.T) {
	svc := NewPredictionService(staticSource{artifact: trainedArtifact(t)}, &memoryRecorder{}, nil, discardLogger())

	p, err := svc.Predict(context.Background(), 17, vector(t, 36, 4, 0, 5))
	require.NoError(t, err)
	assert.LessOrEqual(t, p.DelayProbability, ml.DelayThreshold)
	assert.Equal(t, ml.RecommendationOnTrack, p.Recommendation)
}

func TestPredictIsDeterministic(t *testing.T) {
	svc := NewPredictionService(staticSource{artifact: trainedArtifact(t)}, &memoryRecorder{}, nil, discardLogger())

	first, err := svc.Predict(context.Background(), 1, vector(t, 27, 11, 3, 3))
	require.NoError(t, err)
	second, err := svc.Predict(context.Background(), 1, vector(t, 27, 11, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, first.DelayProbability, second.DelayProbability)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPredictFailuresAppendNothing(t *testing.T) {
	art := trainedArtifact(t)
	mismatched, err := models.NewFeatureVector(
		[]string{models.FeatureTasksCompleted, models.FeatureTasksPending},
		[]float64{30, 10},
	)
	require.NoError(t, err)

	tests := []struct {
		name   string
		source ModelSource
		vector models.FeatureVector
		kind   error
	}{
		{
			name:   "not trained",
			source: staticSource{err: errors.Wrap(models.ErrNotTrained, "load artifact")},
			vector: vector(t, 30, 10, 2, 4),
			kind:   models.ErrNotTrained,
		},
		{
			name:   "feature mismatch",
			source: staticSource{artifact: art},
			vector: mismatched,
			kind:   models.ErrFeatureMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &memoryRecorder{}
			publisher := &recordingPublisher{}
			svc := NewPredictionService(tt.source, recorder, publisher, discardLogger())

			_, err := svc.Predict(context.Background(), 1, tt.vector)
			assert.ErrorIs(t, err, tt.kind)
			assert.Empty(t, recorder.rows)
			assert.Empty(t, publisher.messages)
		})
	}
}

func TestPredictStoreFailure(t *testing.T) {
	recorder := &memoryRecorder{err: errors.Wrap(models.ErrConnection, "insert prediction")}
	publisher := &recordingPublisher{}
	svc := NewPredictionService(staticSource{artifact: trainedArtifact(t)}, recorder, publisher, discardLogger())

	_, err := svc.Predict(context.Background(), 1, vector(t, 30, 10, 2, 4))
	assert.ErrorIs(t, err, models.ErrConnection)
	assert.Empty(t, publisher.messages)
}

func TestPredictPublishFailureIsNotFatal(t *testing.T) {
	recorder := &memoryRecorder{}
	publisher := &recordingPublisher{err: errors.New("redis: connection refused")}
	svc := NewPredictionService(staticSource{artifact: trainedArtifact(t)}, recorder, publisher, discardLogger())

	p, err := svc.Predict(context.Background(), 1, vector(t, 30, 10, 2, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Len(t, recorder.rows, 1)
}
