package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	v1 "github.com/richiexuetang/ritcher-map/internal/infrastructure/http/v1"
	"github.com/richiexuetang/ritcher-map/internal/infrastructure/http/v1/handler"
	"github.com/richiexuetang/ritcher-map/internal/imageproc"
	"github.com/richiexuetang/ritcher-map/internal/repository/cache"
	"github.com/richiexuetang/ritcher-map/internal/repository/store"
	"github.com/richiexuetang/ritcher-map/internal/usecase"
	"github.com/richiexuetang/ritcher-map/pkg/config"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
	"github.com/richiexuetang/ritcher-map/pkg/metrics"
	"github.com/richiexuetang/ritcher-map/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)
	defer l.Sync()

	l.Info("starting tile service", "port", cfg.HTTP.Server.Port)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
		l.Info("telemetry initialized", "service", cfg.Telemetry.ServiceName)
	}

	tileCache, err := cache.New(cfg.Cache, l)
	if err != nil {
		l.Fatal("failed to initialize tile cache", "backend", cfg.Cache.Backend, "error", err)
	}
	defer tileCache.Close()

	blobs, err := store.NewBlobStore(cfg.Store, l)
	if err != nil {
		l.Fatal("failed to initialize blob store", "backend", cfg.Store.Backend, "error", err)
	}

	meta, err := store.NewPostgresStore(cfg.Postgres, l)
	if err != nil {
		l.Fatal("failed to connect to postgres", "error", err)
	}
	defer meta.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusRecorder(registry)

	generator := usecase.NewGenerator(
		tileCache,
		blobs,
		meta,
		imageproc.NewProcessor(cfg.Tile.Size, cfg.Tile.Quality),
		cfg.Tile,
		l,
		recorder,
	)

	h := handler.NewHandler(generator, validator.New(), cfg.Tile, l)

	router := v1.NewRouter(h, l, registry, cfg.Telemetry.Enabled)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.Server.ReadTimeout,
		WriteTimeout: cfg.HTTP.Server.WriteTimeout,
		IdleTimeout:  cfg.HTTP.Server.IdleTimeout,
	}

	go func() {
		l.Info("starting http server", "port", cfg.HTTP.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Fatal("server forced to shutdown", "error", err)
	}

	l.Info("server stopped")
}
