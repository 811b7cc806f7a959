package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
	"github.com/JorjanDorjan/ML-for-agile-methodology/middleware"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

type Dependencies struct {
	Predictor   Predictor
	Predictions PredictionLister
	Sprints     SprintLister
	Models      ModelSource
	Cache       *services.CacheService
	Auth        *services.AuthService
	CORS        config.CORSConfig
	CacheTTL    time.Duration
	Logger      *slog.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Metrics(), middleware.SetupCORS(deps.CORS))

	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	predictions := NewPredictionHandler(deps.Predictor, deps.Predictions, deps.Logger)
	sprints := NewSprintsHandler(deps.Sprints, deps.Cache, deps.CacheTTL, deps.Logger)
	model := NewModelHandler(deps.Models, deps.Logger)

	api := router.Group("/api", middleware.RequireToken(deps.Auth))
	{
		api.POST("/predict", predictions.Predict)
		api.GET("/predictions", predictions.GetPredictions)
		api.GET("/sprints", sprints.GetSprints)
		api.GET("/model", model.GetModel)
		api.POST("/trend", FitTrend(deps.Logger))
	}

	router.GET("/ws/predictions", middleware.RequireToken(deps.Auth), LivePredictions(deps.Cache, deps.Logger))

	return router
}
