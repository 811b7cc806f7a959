package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"

	"github.com/JorjanDorjan/ML-for-agile-methodology/artifact"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	CORS     CORSConfig     `envPrefix:"CORS_"`
	Model    ModelConfig    `envPrefix:"MODEL_"`
	MQTT     MQTTConfig     `envPrefix:"MQTT_"`
}

type ServerConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"agilerisk"`
	Password string `env:"PASSWORD" envDefault:"agilerisk_dev_password"`
	Name     string `env:"NAME" envDefault:"agilerisk"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"10"`
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig is optional: an empty Host disables caching and pub/sub.
type RedisConfig struct {
	Host     string        `env:"HOST"`
	Port     int           `env:"PORT" envDefault:"6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"60s"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig guards the API with bearer tokens when Secret is set.
type JWTConfig struct {
	Secret      string `env:"SECRET"`
	ExpiryHours int    `env:"EXPIRY_HOURS" envDefault:"24"`
}

type CORSConfig struct {
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

// Origins splits the comma separated origin list.
func (c CORSConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

type ModelConfig struct {
	Backend    string  `env:"BACKEND" envDefault:"file"`
	Path       string  `env:"PATH"`
	Seed       uint64  `env:"SEED" envDefault:"42"`
	Trees      int     `env:"TREES" envDefault:"100"`
	MaxDepth   int     `env:"MAX_DEPTH" envDefault:"0"`
	TestSize   float64 `env:"TEST_SIZE" envDefault:"0.3"`
	MinRecords int     `env:"MIN_RECORDS" envDefault:"2"`
}

// ArtifactPath returns Path, or the backend's default location when unset.
func (m ModelConfig) ArtifactPath() string {
	if m.Path != "" {
		return m.Path
	}
	if m.Backend == artifact.BackendSQLite {
		return filepath.Join("data", "model.db")
	}
	return filepath.Join("data", "model.json")
}

// MQTTConfig configures the telemetry collector. An empty Broker keeps the
// collector out of the serve command.
type MQTTConfig struct {
	Broker   string `env:"BROKER"`
	Topic    string `env:"TOPIC" envDefault:"agilerisk/sprints"`
	ClientID string `env:"CLIENT_ID" envDefault:"agilerisk-collector"`
	QoS      byte   `env:"QOS" envDefault:"1"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Newf("invalid SERVER_PORT %d", c.Server.Port)
	}
	switch c.Model.Backend {
	case artifact.BackendFile, artifact.BackendSQLite:
	default:
		return errors.Newf("invalid MODEL_BACKEND %q, want %q or %q", c.Model.Backend, artifact.BackendFile, artifact.BackendSQLite)
	}
	if c.Model.TestSize <= 0 || c.Model.TestSize >= 1 {
		return errors.Newf("invalid MODEL_TEST_SIZE %v, want a value in (0,1)", c.Model.TestSize)
	}
	if c.Model.Trees < 1 {
		return errors.Newf("invalid MODEL_TREES %d", c.Model.Trees)
	}
	if c.Model.MinRecords < 2 {
		return errors.Newf("invalid MODEL_MIN_RECORDS %d, want at least 2", c.Model.MinRecords)
	}
	if c.MQTT.QoS > 2 {
		return errors.Newf("invalid MQTT_QOS %d", c.MQTT.QoS)
	}
	return nil
}
