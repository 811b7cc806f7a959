// Package collector ingests labelled sprint telemetry from MQTT into the
// sprints table.
package collector

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
	"github.com/JorjanDorjan/ML-for-agile-methodology/metrics"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

// SprintPayload is the JSON message published by upstream project tooling
// when a sprint closes.
type SprintPayload struct {
	TasksCompleted *int   `json:"tasksCompleted"`
	TasksPending   *int   `json:"tasksPending"`
	IssuesReported *int   `json:"issuesReported"`
	LikertScore    *int   `json:"likertScore"`
	Status         string `json:"status"`
}

// Sprint validates the payload and converts it to a new sprint row.
func (p SprintPayload) Sprint() (models.Sprint, error) {
	if p.TasksCompleted == nil || p.TasksPending == nil || p.IssuesReported == nil || p.LikertScore == nil {
		return models.Sprint{}, errors.Wrap(models.BadParameterError, "missing required fields in payload")
	}
	m, err := models.NewSprintMetrics(*p.TasksCompleted, *p.TasksPending, *p.IssuesReported, *p.LikertScore)
	if err != nil {
		return models.Sprint{}, err
	}
	return models.NewSprint(0, m, p.Status)
}

type SprintWriter interface {
	InsertSprint(ctx context.Context, s models.Sprint) (int64, error)
}

// Notifier announces new sprints and drops stale cached listings.
type Notifier interface {
	Publish(ctx context.Context, channel string, message any) error
	Delete(ctx context.Context, key string) error
}

type Collector struct {
	writer   SprintWriter
	notifier Notifier
	logger   *slog.Logger
}

// New builds a collector. notifier may be nil.
func New(writer SprintWriter, notifier Notifier, logger *slog.Logger) *Collector {
	return &Collector{writer: writer, notifier: notifier, logger: logger}
}

// HandleMessage stores one telemetry message.
func (c *Collector) HandleMessage(ctx context.Context, raw []byte) error {
	var payload SprintPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		metrics.CollectorParseErrors.Inc()
		return errors.Wrap(models.BadParameterError, "invalid payload: "+err.Error())
	}
	s, err := payload.Sprint()
	if err != nil {
		metrics.CollectorParseErrors.Inc()
		return err
	}

	id, err := c.writer.InsertSprint(ctx, s)
	if err != nil {
		metrics.CollectorErrors.Inc()
		return err
	}
	s.ID = id
	metrics.SprintsCollected.Inc()

	if c.notifier != nil {
		if err := c.notifier.Delete(ctx, services.CacheKeySprints); err != nil {
			c.logger.Warn("sprint cache invalidation failed", "error", err)
		}
		if err := c.notifier.Publish(ctx, services.ChannelSprints, s); err != nil {
			c.logger.Warn("publish sprint failed", "sprint_id", id, "error", err)
		}
	}
	c.logger.Debug("sprint collected", "sprint_id", id, "status", s.Status)
	return nil
}

// Run subscribes to the configured topic and handles messages until ctx is
// cancelled.
func (c *Collector) Run(ctx context.Context, cfg config.MQTTConfig) error {
	if cfg.Broker == "" {
		return errors.New("MQTT_BROKER is not configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID + "-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(cfg.Topic, cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
			if err := c.HandleMessage(ctx, msg.Payload()); err != nil {
				c.logger.Warn("telemetry message rejected", "topic", msg.Topic(), "error", err)
			}
		})
		token.Wait()
		if err := token.Error(); err != nil {
			c.logger.Error("mqtt subscribe failed", "topic", cfg.Topic, "error", err)
			return
		}
		c.logger.Info("collector subscribed", "topic", cfg.Topic)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		c.logger.Warn("mqtt connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return errors.Wrap(err, "mqtt connection failed")
		}
	case <-ctx.Done():
		client.Disconnect(250)
		return nil
	}
	c.logger.Info("collector running", "broker", cfg.Broker)

	<-ctx.Done()
	c.logger.Info("collector shutting down")
	client.Disconnect(250)
	return nil
}
