package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
	"github.com/JorjanDorjan/ML-for-agile-methodology/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticSource struct {
	artifact *ml.Artifact
	err      error
}

func (s staticSource) Get(context.Context) (*ml.Artifact, error) {
	return s.artifact, s.err
}

type memoryRecorder struct {
	mu     sync.Mutex
	rows   []models.Prediction
	nextID int64
	err    error
}

func (r *memoryRecorder) InsertPrediction(_ context.Context, p models.Prediction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	p.ID = r.nextID
	r.rows = append(r.rows, p)
	return p.ID, nil
}

type message struct {
	channel string
	payload any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message{channel: channel, payload: payload})
	return nil
}

type staticSprints struct {
	records []models.Sprint
	err     error
}

func (s staticSprints) FetchAll(context.Context) ([]models.Sprint, error) {
	return s.records, s.err
}

func testTrainerConfig() ml.TrainerConfig {
	cfg := ml.DefaultTrainerConfig()
	cfg.Forest.Trees = 20
	return cfg
}

func trainedArtifact(t *testing.T) *ml.Artifact {
	t.Helper()
	a, err := ml.Train(context.Background(), repository.DemoSprints(), testTrainerConfig())
	require.NoError(t, err)
	return a
}

func vector(t *testing.T, completed, pending, issues, likert int) models.FeatureVector {
	t.Helper()
	m, err := models.NewSprintMetrics(completed, pending, issues, likert)
	require.NoError(t, err)
	return m.Vector()
}
