package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

// LivePredictions streams every stored prediction and model update to the
// websocket client.
func LivePredictions(sub Subscriber, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		pubsub := sub.Subscribe(c.Request.Context(), services.ChannelPredictions)
		if pubsub == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live feed requires redis"})
			return
		}
		defer pubsub.Close()
		if err := pubsub.Subscribe(c.Request.Context(), services.ChannelModels); err != nil {
			logger.Warn("model channel subscribe failed", "error", err)
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				kind := "prediction"
				if msg.Channel == services.ChannelModels {
					kind = "model"
				}
				if err := conn.WriteJSON(gin.H{"type": kind, "data": json.RawMessage(msg.Payload)}); err != nil {
					logger.Debug("ws write failed", "error", err)
					return
				}
			}
		}
	}
}
