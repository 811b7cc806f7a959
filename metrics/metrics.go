// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agilerisk_predictions_served_total",
		Help: "Total number of predictions scored and stored.",
	})
	PredictionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agilerisk_predictions_failed_total",
		Help: "Total number of prediction failures by error kind.",
	}, []string{"kind"})
	PredictionsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agilerisk_predictions_published_total",
		Help: "Total number of predictions published to Redis.",
	})
	DelayProbability = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agilerisk_delay_probability",
		Help:    "Distribution of predicted delay probabilities.",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
	})

	TrainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agilerisk_training_runs_total",
		Help: "Total number of training runs by outcome.",
	}, []string{"outcome"})
	TrainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agilerisk_training_duration_seconds",
		Help:    "Duration of a full training run.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})
	ModelAccuracy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agilerisk_model_accuracy",
		Help: "Held-out accuracy of the currently loaded model.",
	})
	ModelReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agilerisk_model_reloads_total",
		Help: "Total number of model artifact reloads.",
	})

	SprintsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agilerisk_collector_sprints_inserted_total",
		Help: "Total number of sprint rows inserted by the collector.",
	})
	CollectorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agilerisk_collector_errors_total",
		Help: "Total number of collector insert errors.",
	})
	CollectorParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agilerisk_collector_parse_errors_total",
		Help: "Total number of telemetry messages that failed to parse.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agilerisk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
