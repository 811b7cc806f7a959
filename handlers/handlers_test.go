package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
	"github.com/JorjanDorjan/ML-for-agile-methodology/repository"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryStore struct {
	mu          sync.Mutex
	sprints     []models.Sprint
	predictions []models.Prediction
	err         error
}

func (s *memoryStore) FetchAll(context.Context) ([]models.Sprint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sprints, nil
}

func (s *memoryStore) InsertPrediction(_ context.Context, p models.Prediction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	p.ID = int64(len(s.predictions) + 1)
	s.predictions = append(s.predictions, p)
	return p.ID, nil
}

func (s *memoryStore) FetchRecentPredictions(_ context.Context, limit int) ([]models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Prediction{}
	for i := len(s.predictions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.predictions[i])
	}
	return out, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.predictions)
}

type staticSource struct {
	artifact *ml.Artifact
	err      error
}

func (s staticSource) Get(context.Context) (*ml.Artifact, error) {
	return s.artifact, s.err
}

var (
	artifactOnce sync.Once
	demoArtifact *ml.Artifact
	artifactErr  error
)

func trainedArtifact(t *testing.T) *ml.Artifact {
	t.Helper()
	artifactOnce.Do(func() {
		cfg := ml.DefaultTrainerConfig()
		cfg.Forest.Trees = 20
		demoArtifact, artifactErr = ml.Train(context.Background(), repository.DemoSprints(), cfg)
	})
	require.NoError(t, artifactErr)
	return demoArtifact
}

type testServer struct {
	router *gin.Engine
	store  *memoryStore
}

func newTestServer(t *testing.T, source ModelSource, store *memoryStore, auth *services.AuthService) testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if auth == nil {
		auth = services.NewAuthService(config.JWTConfig{})
	}
	cache := &services.CacheService{}
	router := NewRouter(Dependencies{
		Predictor:   services.NewPredictionService(source, store, cache, logger),
		Predictions: store,
		Sprints:     store,
		Models:      source,
		Cache:       cache,
		Auth:        auth,
		CORS:        config.CORSConfig{AllowedOrigins: "*"},
		CacheTTL:    time.Minute,
		Logger:      logger,
	})
	return testServer{router: router, store: store}
}

func (s testServer) do(t *testing.T, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestPredictAppendsOneRow(t *testing.T) {
	srv := newTestServer(t, staticSource{artifact: trainedArtifact(t)}, &memoryStore{}, nil)

	w := srv.do(t, http.MethodPost, "/api/predict",
		`{"sprintId":16,"tasksCompleted":15,"tasksPending":25,"issuesReported":7,"likertScore":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Prediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, int64(16), got.SprintID)
	assert.Greater(t, got.DelayProbability, 0.5)
	assert.Equal(t, ml.RecommendationReduceBacklog, got.Recommendation)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, 1, srv.store.count())
}

func TestPredictRejectsInvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"sprintId":`},
		{"missing likert", `{"sprintId":1,"tasksCompleted":30,"tasksPending":10,"issuesReported":2}`},
		{"likert above range", `{"sprintId":1,"tasksCompleted":30,"tasksPending":10,"issuesReported":2,"likertScore":6}`},
		{"likert below range", `{"sprintId":1,"tasksCompleted":30,"tasksPending":10,"issuesReported":2,"likertScore":0}`},
		{"negative count", `{"sprintId":1,"tasksCompleted":-3,"tasksPending":10,"issuesReported":2,"likertScore":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, staticSource{artifact: trainedArtifact(t)}, &memoryStore{}, nil)

			w := srv.do(t, http.MethodPost, "/api/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, srv.store.count())
		})
	}
}

func TestPredictErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		source ModelSource
		store  *memoryStore
		status int
	}{
		{
			name:   "not trained",
			source: staticSource{err: errors.Wrap(models.ErrNotTrained, "load artifact")},
			store:  &memoryStore{},
			status: http.StatusConflict,
		},
		{
			name:   "store unreachable",
			source: staticSource{artifact: trainedArtifact(t)},
			store:  &memoryStore{err: errors.Wrap(models.ErrConnection, "insert prediction")},
			status: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.source, tt.store, nil)

			w := srv.do(t, http.MethodPost, "/api/predict",
				`{"sprintId":1,"tasksCompleted":30,"tasksPending":10,"issuesReported":2,"likertScore":4}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestGetPredictionsLimit(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 150; i++ {
		p, err := models.NewPrediction(int64(i), 0.25, ml.RecommendationOnTrack, time.Now())
		require.NoError(t, err)
		_, err = store.InsertPrediction(context.Background(), p)
		require.NoError(t, err)
	}
	srv := newTestServer(t, staticSource{artifact: trainedArtifact(t)}, store, nil)

	tests := []struct {
		query string
		want  int
	}{
		{"", DefaultLimit},
		{"?limit=5", 5},
		{"?limit=500", MaxLimit},
		{"?limit=abc", DefaultLimit},
		{"?limit=-1", DefaultLimit},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/api/predictions"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				Data []models.Prediction `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Len(t, resp.Data, tt.want)
			assert.Equal(t, int64(150), resp.Data[0].ID)
			assert.Greater(t, resp.Data[0].ID, resp.Data[len(resp.Data)-1].ID)
		})
	}
}

func TestGetSprints(t *testing.T) {
	store := &memoryStore{sprints: repository.DemoSprints()[:3]}
	srv := newTestServer(t, staticSource{}, store, nil)

	w := srv.do(t, http.MethodGet, "/api/sprints", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Sprint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, 25, resp.Data[0].TasksCompleted)
	assert.Equal(t, models.StatusDelayed, resp.Data[2].Status)
}

func TestGetSprintsSchemaError(t *testing.T) {
	store := &memoryStore{err: errors.Wrap(models.ErrSchema, "scan sprint row")}
	srv := newTestServer(t, staticSource{}, store, nil)

	w := srv.do(t, http.MethodGet, "/api/sprints", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestGetModel(t *testing.T) {
	art := trainedArtifact(t)
	srv := newTestServer(t, staticSource{artifact: art}, &memoryStore{}, nil)

	w := srv.do(t, http.MethodGet, "/api/model", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got ml.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, art.ID, got.ID)
	assert.Equal(t, models.FeatureKeys, got.FeatureKeys)
	assert.Equal(t, 20, got.Trees)

	srv = newTestServer(t, staticSource{err: models.ErrNotTrained}, &memoryStore{}, nil)
	w = srv.do(t, http.MethodGet, "/api/model", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "train the model first")
}

func TestFitTrend(t *testing.T) {
	srv := newTestServer(t, staticSource{}, &memoryStore{}, nil)

	w := srv.do(t, http.MethodPost, "/api/trend", map[string]any{
		"samples": []map[string]any{
			{"features": []float64{1}, "target": 35},
			{"features": []float64{2}, "target": 40},
			{"features": []float64{3}, "target": 45},
		},
		"probes": [][]float64{{4}, {10}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TrendResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 2)
	assert.InDelta(t, 50, resp.Predictions[0], 1e-9)
	assert.InDelta(t, 80, resp.Predictions[1], 1e-9)

	w = srv.do(t, http.MethodPost, "/api/trend", `{"samples":[{"features":[1],"target":3}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodPost, "/api/trend", map[string]any{
		"samples": []map[string]any{
			{"features": []float64{1}, "target": 35},
			{"features": []float64{2}, "target": 40},
		},
		"probes": [][]float64{{4, 5}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndAuth(t *testing.T) {
	auth := services.NewAuthService(config.JWTConfig{Secret: "handler-secret", ExpiryHours: 1})
	srv := newTestServer(t, staticSource{artifact: trainedArtifact(t)}, &memoryStore{}, auth)

	w := srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)

	w = srv.do(t, http.MethodGet, "/api/predictions", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.GenerateToken("dashboard", "viewer")
	require.NoError(t, err)
	w = srv.do(t, http.MethodGet, "/api/predictions", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLivePredictionsWithoutRedis(t *testing.T) {
	srv := newTestServer(t, staticSource{}, &memoryStore{}, nil)

	w := srv.do(t, http.MethodGet, "/ws/predictions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
