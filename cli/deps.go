package cli

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JorjanDorjan/ML-for-agile-methodology/artifact"
	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
	"github.com/JorjanDorjan/ML-for-agile-methodology/metrics"
	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

func openPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.GetDSN())
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}
	if db.MaxConns > 0 {
		poolCfg.MaxConns = db.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "db pool init failed")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrapf(models.ErrConnection, "db ping failed: %v", err)
	}
	logger.Info("db connected", "host", db.Host, "database", db.Name)
	return pool, nil
}

// openCache connects to Redis. Redis is optional, so failures only disable
// caching and pub/sub.
func openCache(ctx context.Context) *services.CacheService {
	cache, err := services.NewCacheService(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, caching and live feed disabled", "error", err)
		return cache
	}
	if cache.Available() {
		logger.Info("redis connected", "addr", cfg.Redis.Addr())
	}
	return cache
}

func openArtifactStore() (artifact.Store, func(), error) {
	path := cfg.Model.ArtifactPath()
	store, err := artifact.Open(cfg.Model.Backend, path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("closing artifact store failed", "error", err)
			}
		}
	}
	logger.Debug("artifact store opened", "backend", cfg.Model.Backend, "path", path)
	return store, closeFn, nil
}

func trainerConfig(m config.ModelConfig) ml.TrainerConfig {
	tc := ml.DefaultTrainerConfig()
	tc.TestSize = m.TestSize
	tc.Seed = m.Seed
	tc.MinRecords = m.MinRecords
	tc.Forest.Trees = m.Trees
	tc.Forest.MaxDepth = m.MaxDepth
	tc.Forest.Seed = m.Seed
	return tc
}

func onModelReload(a *ml.Artifact) {
	metrics.ModelReloads.Inc()
	metrics.ModelAccuracy.Set(a.Accuracy)
	logger.Info("model loaded",
		"model_id", a.ID,
		"trained_at", a.TrainedAt,
		"accuracy", a.Accuracy,
	)
}
