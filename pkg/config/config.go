package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Cache     Cache     `envPrefix:"CACHE_"`
		Store     Store     `envPrefix:"STORE_"`
		Postgres  Postgres  `envPrefix:"POSTGRES_"`
		Tile      Tile      `envPrefix:"TILE_"`
	}

	HTTP struct {
		Server  Server        `envPrefix:"SERVER_"`
		Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	}

	Server struct {
		Port         string        `env:"PORT" envDefault:"8080"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"ritcher-map-tiles"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	// Cache selects the fast tile cache backend.
	Cache struct {
		Backend    string        `env:"BACKEND" envDefault:"redis"` // redis | sqlite | memory
		TTL        time.Duration `env:"TTL" envDefault:"1h"`
		SQLitePath string        `env:"SQLITE_PATH" envDefault:"tile_cache.db"`
		Redis      Redis         `envPrefix:"REDIS_"`
	}

	Redis struct {
		Addr     string `env:"ADDR" envDefault:"localhost:6379"`
		Password string `env:"PASSWORD" envDefault:""`
		DB       int    `env:"DB" envDefault:"0"`
	}

	// Store selects the durable origin blob store backend.
	Store struct {
		Backend string `env:"BACKEND" envDefault:"s3"` // s3 | filesystem
		BaseDir string `env:"BASE_DIR" envDefault:"./tiles"`
		S3      S3     `envPrefix:"S3_"`
	}

	S3 struct {
		Bucket    string `env:"BUCKET" envDefault:"map-tiles"`
		Region    string `env:"REGION" envDefault:"us-west-1"`
		Endpoint  string `env:"ENDPOINT" envDefault:""`
		AccessKey string `env:"ACCESS_KEY" envDefault:""`
		SecretKey string `env:"SECRET_KEY" envDefault:""`
	}

	Postgres struct {
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     int    `env:"PORT" envDefault:"5432"`
		Database string `env:"DATABASE" envDefault:"ritcher_map"`
		User     string `env:"USER" envDefault:"postgres"`
		Password string `env:"PASSWORD" envDefault:""`
		SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
	}

	Tile struct {
		Size    int   `env:"SIZE" envDefault:"256"`
		MinZoom uint8 `env:"MIN_ZOOM" envDefault:"0"`
		MaxZoom uint8 `env:"MAX_ZOOM" envDefault:"18"`
		Quality int   `env:"QUALITY" envDefault:"85"`
		// AssumeWorldBounds controls the bounds recorded in pyramid
		// metadata for single-image maps. When false the generation
		// request must carry explicit bounds.
		AssumeWorldBounds bool `env:"ASSUME_WORLD_BOUNDS" envDefault:"true"`
		// CacheMaxAge feeds the Cache-Control header on tile responses.
		CacheMaxAge int `env:"CACHE_MAX_AGE" envDefault:"3600"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
