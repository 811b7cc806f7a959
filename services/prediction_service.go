package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/JorjanDorjan/ML-for-agile-methodology/metrics"
	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// ModelSource yields the current trained artifact.
type ModelSource interface {
	Get(ctx context.Context) (*ml.Artifact, error)
}

type PredictionRecorder interface {
	InsertPrediction(ctx context.Context, p models.Prediction) (int64, error)
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

// PredictionService scores a sprint against the stored model and records
// the outcome.
type PredictionService struct {
	source    ModelSource
	recorder  PredictionRecorder
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewPredictionService builds the service. publisher may be nil.
func NewPredictionService(source ModelSource, recorder PredictionRecorder, publisher Publisher, logger *slog.Logger) *PredictionService {
	return &PredictionService{
		source:    source,
		recorder:  recorder,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Predict scores v for sprintID and appends the resulting prediction. On
// error nothing is appended.
func (s *PredictionService) Predict(ctx context.Context, sprintID int64, v models.FeatureVector) (models.Prediction, error) {
	p, err := s.predict(ctx, sprintID, v)
	if err != nil {
		metrics.PredictionsFailed.WithLabelValues(models.ErrorKind(err)).Inc()
		return models.Prediction{}, err
	}
	metrics.PredictionsServed.Inc()
	metrics.DelayProbability.Observe(p.DelayProbability)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ChannelPredictions, p); err != nil {
			s.logger.Warn("publish prediction failed", "prediction_id", p.ID, "error", err)
		} else {
			metrics.PredictionsPublished.Inc()
		}
	}
	return p, nil
}

func (s *PredictionService) predict(ctx context.Context, sprintID int64, v models.FeatureVector) (models.Prediction, error) {
	model, err := s.source.Get(ctx)
	if err != nil {
		return models.Prediction{}, err
	}
	probability, err := model.Score(v)
	if err != nil {
		return models.Prediction{}, err
	}
	p, err := models.NewPrediction(sprintID, probability, ml.Recommend(probability), s.now())
	if err != nil {
		return models.Prediction{}, err
	}
	id, err := s.recorder.InsertPrediction(ctx, p)
	if err != nil {
		return models.Prediction{}, err
	}
	p.ID = id

	s.logger.Debug("sprint scored",
		"sprint_id", sprintID,
		"probability", probability,
		"model_id", model.ID,
		"prediction_id", id,
	)
	return p, nil
}
