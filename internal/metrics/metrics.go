// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LoadsTotal counts Loader calls by outcome: parsed, cached, failed.
	LoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zurichmap_loads_total",
		Help: "Feature collection loads by outcome",
	}, []string{"outcome"})
	LoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zurichmap_load_duration_ms",
		Help:    "Fetch and parse duration in milliseconds for cache misses",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	// RendersTotal counts dashboard render passes by final page state.
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zurichmap_renders_total",
		Help: "Dashboard render passes by resulting page state",
	}, []string{"state"})
	SessionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zurichmap_sessions_created_total",
		Help: "Dashboard sessions created",
	})
)

func init() {
	prometheus.MustRegister(LoadsTotal)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(RendersTotal)
	prometheus.MustRegister(SessionsCreatedTotal)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
