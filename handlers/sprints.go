package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

type SprintLister interface {
	FetchAll(ctx context.Context) ([]models.Sprint, error)
}

type ResponseCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type SprintsHandler struct {
	sprints SprintLister
	cache   ResponseCache
	ttl     time.Duration
	logger  *slog.Logger
}

func NewSprintsHandler(sprints SprintLister, cache ResponseCache, ttl time.Duration, logger *slog.Logger) *SprintsHandler {
	return &SprintsHandler{sprints: sprints, cache: cache, ttl: ttl, logger: logger}
}

type sprintsResponse struct {
	Data []models.Sprint `json:"data"`
}

func (h *SprintsHandler) GetSprints(c *gin.Context) {
	var cached sprintsResponse
	found, err := h.cache.Get(c.Request.Context(), services.CacheKeySprints, &cached)
	if err != nil {
		h.logger.Warn("sprint cache read failed", "error", err)
	}
	if found && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	sprints, err := h.sprints.FetchAll(c.Request.Context())
	if presentError(c, h.logger, err) {
		return
	}

	resp := sprintsResponse{Data: sprints}
	go func() {
		if err := h.cache.Set(context.Background(), services.CacheKeySprints, resp, h.ttl); err != nil {
			h.logger.Warn("sprint cache write failed", "error", err)
		}
	}()

	c.JSON(http.StatusOK, resp)
}
