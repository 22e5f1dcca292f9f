package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richiexuetang/ritcher-map/internal/infrastructure/http/v1/handler"
	"github.com/richiexuetang/ritcher-map/pkg/logger"
	"github.com/richiexuetang/ritcher-map/pkg/telemetry"
)

func NewRouter(h *handler.Handler, l logger.Logger, registry *prometheus.Registry, telemetryEnabled bool) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())

	if telemetryEnabled {
		r.Use(telemetry.GinMiddleware("ritcher-map-tiles"))
	}

	r.Use(ginZapLogger(l))

	api := r.Group("/api")
	v1 := api.Group("/v1")

	v1.GET("/healthz", h.Healthz)
	v1.GET("/tiles/:game_id/:z/:x/:y_format", h.Tile)
	v1.POST("/generate", h.GeneratePyramid)
	v1.POST("/generate/batch", h.GenerateBatch)
	v1.DELETE("/cache/:game_id", h.InvalidateCache)
	v1.GET("/metadata/:game_id", h.Metadata)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func ginZapLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), l))

		start := time.Now()

		c.Next()

		latency := time.Since(start)

		l.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
