package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Rabbit   Rabbit   `yaml:"rabbit"`
	Pipeline Pipeline `yaml:"pipeline"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"wagerpipe-api"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel maps the configured level name onto slog's levels. Unknown
// values fall back to info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"casino_db"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Rabbit struct {
	Host     string `yaml:"host" env:"RABBIT_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"RABBIT_PORT" env-default:"5672"`
	User     string `yaml:"user" env:"RABBIT_USER" env-default:"guest"`
	Password string `yaml:"password" env:"RABBIT_PASSWORD" env-default:"guest"`
	Queue    string `yaml:"queue" env:"RABBIT_QUEUE" env-default:"casino-wagers"`
	Durable  bool   `yaml:"durable" env:"RABBIT_DURABLE" env-default:"true"`
	Prefetch int    `yaml:"prefetch" env:"RABBIT_PREFETCH" env-default:"500"`
}

// Pipeline holds the tuning knobs of the buffered ingestion pipeline.
// The defaults match the values the service has always run with; larger
// batches amortize round trips at the price of more at-risk items per failure.
type Pipeline struct {
	IngestCapacity int           `yaml:"ingest_capacity" env:"PIPELINE_INGEST_CAPACITY" env-default:"50000"`
	BufferCapacity int           `yaml:"buffer_capacity" env:"PIPELINE_BUFFER_CAPACITY" env-default:"10000"`
	PublishBatch   int           `yaml:"publish_batch" env:"PIPELINE_PUBLISH_BATCH" env-default:"500"`
	PublishTick    time.Duration `yaml:"publish_tick" env:"PIPELINE_PUBLISH_TICK" env-default:"150ms"`
	PublishBackoff time.Duration `yaml:"publish_backoff" env:"PIPELINE_PUBLISH_BACKOFF" env-default:"200ms"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout" env:"PIPELINE_CONFIRM_TIMEOUT" env-default:"15s"`
	WriteBatch     int           `yaml:"write_batch" env:"PIPELINE_WRITE_BATCH" env-default:"1000"`
	WriteTick      time.Duration `yaml:"write_tick" env:"PIPELINE_WRITE_TICK" env-default:"200ms"`
	WriteBackoff   time.Duration `yaml:"write_backoff" env:"PIPELINE_WRITE_BACKOFF" env-default:"100ms"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
