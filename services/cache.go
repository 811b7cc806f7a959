package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
)

// Redis pub/sub channels and cache keys.
const (
	ChannelPredictions = "agilerisk:predictions"
	ChannelModels      = "agilerisk:models"
	ChannelSprints     = "agilerisk:sprints"

	CacheKeySprints = "agilerisk:cache:sprints"
)

// CacheService wraps the optional Redis client. Every method is a no-op
// when no client is configured.
type CacheService struct {
	client *redis.Client
}

// NewCacheService connects to Redis, retrying the ping until attempts are
// exhausted. On failure it still returns a usable, disabled service.
func NewCacheService(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*CacheService, error) {
	if cfg.Host == "" {
		return &CacheService{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	const attempts = 10
	var lastErr error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = client.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			return &CacheService{client: client}, nil
		}
		logger.Warn("redis ping failed", "attempt", i+1, "of", attempts, "error", lastErr)
		select {
		case <-ctx.Done():
			_ = client.Close()
			return &CacheService{}, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	_ = client.Close()
	return &CacheService{}, errors.Wrapf(lastErr, "redis ping failed after %d attempts", attempts)
}

func (s *CacheService) Available() bool {
	return s.client != nil
}

// Get decodes the value at key into dest and reports whether it was found.
func (s *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, errors.Wrapf(err, "decode cached %s", key)
	}
	return true, nil
}

func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, key).Err()
}

func (s *CacheService) Publish(ctx context.Context, channel string, message any) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, data).Err()
}

// Subscribe returns nil when Redis is not configured.
func (s *CacheService) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	if s.client == nil {
		return nil
	}
	return s.client.Subscribe(ctx, channel)
}

func (s *CacheService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
