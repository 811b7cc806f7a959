package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
)

type ModelSource interface {
	Get(ctx context.Context) (*ml.Artifact, error)
}

type ModelHandler struct {
	source ModelSource
	logger *slog.Logger
}

func NewModelHandler(source ModelSource, logger *slog.Logger) *ModelHandler {
	return &ModelHandler{source: source, logger: logger}
}

// GetModel describes the currently stored artifact.
func (h *ModelHandler) GetModel(c *gin.Context) {
	a, err := h.source.Get(c.Request.Context())
	if presentError(c, h.logger, err) {
		return
	}
	c.JSON(http.StatusOK, a.Summary())
}
