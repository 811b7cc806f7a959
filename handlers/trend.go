package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorjanDorjan/ML-for-agile-methodology/trend"
)

type TrendRequest struct {
	Samples []trend.Sample `json:"samples" binding:"required"`
	Probes  [][]float64    `json:"probes"`
}

type TrendResponse struct {
	Model       *trend.Model `json:"model"`
	Predictions []float64    `json:"predictions"`
}

// FitTrend fits a linear model to the posted samples and evaluates it at
// each probe. Nothing is kept between requests.
func FitTrend(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TrendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		m, err := trend.Fit(req.Samples)
		if presentError(c, logger, err) {
			return
		}

		predictions := make([]float64, len(req.Probes))
		for i, x := range req.Probes {
			y, err := m.Predict(x)
			if presentError(c, logger, err) {
				return
			}
			predictions[i] = y
		}
		c.JSON(http.StatusOK, TrendResponse{Model: m, Predictions: predictions})
	}
}
