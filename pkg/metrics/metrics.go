// Package metrics defines the counters the tile pipeline records. The
// Recorder interface is passed by reference into the generator and cache
// instead of registering process-wide singletons, so tests can swap in a
// nop recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder interface {
	TileRequest(format string)
	CacheHit()
	CacheMiss()
	TileGenerated(d time.Duration)
	TilesInvalidated(count int)
	UpstreamFetch(d time.Duration, failed bool)
}

type PrometheusRecorder struct {
	tileRequests     *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	generateDuration prometheus.Histogram
	invalidated      prometheus.Counter
	upstreamLatency  prometheus.Histogram
	upstreamErrors   prometheus.Counter
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers the tile metrics on reg. Pass
// prometheus.DefaultRegisterer outside tests.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		tileRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tiles_requests_total",
			Help: "Total number of tile requests",
		}, []string{"format"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "tiles_cache_hits_total",
			Help: "Total number of tile cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "tiles_cache_misses_total",
			Help: "Total number of tile cache misses",
		}),
		generateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tiles_generate_duration_seconds",
			Help:    "Duration of tile synthesis in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		invalidated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tiles_cache_invalidated_total",
			Help: "Total number of cache entries removed by invalidation",
		}),
		upstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tiles_upstream_latency_seconds",
			Help:    "Latency of base-map upstream fetches in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "tiles_upstream_errors_total",
			Help: "Total number of failed base-map upstream fetches",
		}),
	}
}

func (r *PrometheusRecorder) TileRequest(format string) {
	r.tileRequests.WithLabelValues(format).Inc()
}

func (r *PrometheusRecorder) CacheHit()  { r.cacheHits.Inc() }
func (r *PrometheusRecorder) CacheMiss() { r.cacheMisses.Inc() }

func (r *PrometheusRecorder) TileGenerated(d time.Duration) {
	r.generateDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) TilesInvalidated(count int) {
	r.invalidated.Add(float64(count))
}

func (r *PrometheusRecorder) UpstreamFetch(d time.Duration, failed bool) {
	r.upstreamLatency.Observe(d.Seconds())
	if failed {
		r.upstreamErrors.Inc()
	}
}

type nopRecorder struct{}

var _ Recorder = nopRecorder{}

func NewNop() Recorder { return nopRecorder{} }

func (nopRecorder) TileRequest(string)                {}
func (nopRecorder) CacheHit()                         {}
func (nopRecorder) CacheMiss()                        {}
func (nopRecorder) TileGenerated(time.Duration)       {}
func (nopRecorder) TilesInvalidated(int)              {}
func (nopRecorder) UpstreamFetch(time.Duration, bool) {}
