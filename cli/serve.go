package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JorjanDorjan/ML-for-agile-methodology/artifact"
	"github.com/JorjanDorjan/ML-for-agile-methodology/collector"
	"github.com/JorjanDorjan/ML-for-agile-methodology/handlers"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
	"github.com/JorjanDorjan/ML-for-agile-methodology/repository"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction API",
	Long: `Serve starts the HTTP API. It scores sprints with the most recently
stored model and never trains; run 'agilerisk train' to produce a model.

When MQTT_BROKER is set the telemetry collector runs alongside the API.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache := openCache(ctx)
	defer cache.Close()

	store, closeStore, err := openArtifactStore()
	if err != nil {
		return err
	}
	defer closeStore()

	repo := repository.NewSprintRepository(pool)
	modelCache := artifact.NewCache(store, onModelReload)
	warmModel(ctx, modelCache)

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.Dependencies{
		Predictor:   services.NewPredictionService(modelCache, repo, cache, logger),
		Predictions: repo,
		Sprints:     repo,
		Models:      modelCache,
		Cache:       cache,
		Auth:        services.NewAuthService(cfg.JWT),
		CORS:        cfg.CORS,
		CacheTTL:    cfg.Redis.CacheTTL,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	if cfg.MQTT.Broker != "" {
		c := collector.New(repo, cache, logger)
		g.Go(func() error {
			return c.Run(gctx, cfg.MQTT)
		})
	}
	return g.Wait()
}

// warmModel loads the stored artifact so the first request does not pay for
// it. A missing model is not fatal.
func warmModel(ctx context.Context, cache *artifact.Cache) {
	if _, err := cache.Get(ctx); err != nil {
		if errors.Is(err, models.ErrNotTrained) {
			logger.Warn("no trained model yet, predictions will fail until 'agilerisk train' runs")
			return
		}
		logger.Error("loading model failed", "error", err)
	}
}
