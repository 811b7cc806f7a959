package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JorjanDorjan/ML-for-agile-methodology/artifact"
	"github.com/JorjanDorjan/ML-for-agile-methodology/metrics"
	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

type SprintSource interface {
	FetchAll(ctx context.Context) ([]models.Sprint, error)
}

// TrainingService fits a new model from the full sprint history and
// replaces the stored artifact. It is meant for batch jobs, not request
// handlers.
type TrainingService struct {
	sprints   SprintSource
	store     artifact.Store
	cfg       ml.TrainerConfig
	publisher Publisher
	logger    *slog.Logger
}

// NewTrainingService builds the service. publisher may be nil.
func NewTrainingService(sprints SprintSource, store artifact.Store, cfg ml.TrainerConfig, publisher Publisher, logger *slog.Logger) *TrainingService {
	return &TrainingService{
		sprints:   sprints,
		store:     store,
		cfg:       cfg,
		publisher: publisher,
		logger:    logger,
	}
}

// Run trains and stores a model. The stored artifact is only replaced when
// every step succeeds.
func (s *TrainingService) Run(ctx context.Context) (*ml.Artifact, error) {
	start := time.Now()
	defer func() {
		metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	}()

	a, err := s.run(ctx)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues(models.ErrorKind(err)).Inc()
		return nil, err
	}
	metrics.TrainingRuns.WithLabelValues("success").Inc()

	s.logger.Info("model trained",
		"model_id", a.ID,
		"accuracy", a.Accuracy,
		"train_rows", a.TrainRows,
		"held_out_rows", a.HeldOutRows,
		"trees", len(a.Forest.Trees),
		"duration", time.Since(start),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ChannelModels, a.Summary()); err != nil {
			s.logger.Warn("publish model notification failed", "model_id", a.ID, "error", err)
		}
	}
	return a, nil
}

func (s *TrainingService) run(ctx context.Context) (*ml.Artifact, error) {
	records, err := s.sprints.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("training data fetched", "records", len(records))

	a, err := ml.Train(ctx, records, s.cfg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Store(ctx, a); err != nil {
		return nil, errors.Wrap(err, "store artifact")
	}
	return a, nil
}
