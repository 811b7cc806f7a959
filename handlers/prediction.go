package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

type Predictor interface {
	Predict(ctx context.Context, sprintID int64, v models.FeatureVector) (models.Prediction, error)
}

type PredictionLister interface {
	FetchRecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error)
}

type PredictionHandler struct {
	predictor Predictor
	lister    PredictionLister
	logger    *slog.Logger
}

func NewPredictionHandler(predictor Predictor, lister PredictionLister, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{predictor: predictor, lister: lister, logger: logger}
}

type PredictRequest struct {
	SprintID       *int64 `json:"sprintId" binding:"required,min=0"`
	TasksCompleted *int   `json:"tasksCompleted" binding:"required,min=0"`
	TasksPending   *int   `json:"tasksPending" binding:"required,min=0"`
	IssuesReported *int   `json:"issuesReported" binding:"required,min=0"`
	LikertScore    *int   `json:"likertScore" binding:"required,min=1,max=5"`
}

func (h *PredictionHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics, err := models.NewSprintMetrics(*req.TasksCompleted, *req.TasksPending, *req.IssuesReported, *req.LikertScore)
	if presentError(c, h.logger, err) {
		return
	}

	p, err := h.predictor.Predict(c.Request.Context(), *req.SprintID, metrics.Vector())
	if presentError(c, h.logger, err) {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	p := ParsePagination(c)

	predictions, err := h.lister.FetchRecentPredictions(c.Request.Context(), p.Limit)
	if presentError(c, h.logger, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": predictions})
}
