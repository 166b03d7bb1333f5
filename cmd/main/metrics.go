package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records generation activity.
type Metrics interface {
	IncGenerations(corpus, status string)
	AddTokensGenerated(corpus string, n int)
	ObserveTableBuild(corpus string, durationSeconds float64)
}

// NoopMetrics implements Metrics without emitting anything.
type NoopMetrics struct{}

func (NoopMetrics) IncGenerations(string, string)     {}
func (NoopMetrics) AddTokensGenerated(string, int)    {}
func (NoopMetrics) ObserveTableBuild(string, float64) {}

// PromMetrics implements Metrics backed by Prometheus collectors.
type PromMetrics struct {
	generations     *prometheus.CounterVec
	tokensGenerated *prometheus.CounterVec
	tableBuild      *prometheus.HistogramVec
}

// NewPromMetrics creates the collectors and registers them with reg. Each server
// cycle uses its own registry so a restart never registers a collector twice.
func NewPromMetrics(namespace string, reg prometheus.Registerer) *PromMetrics {
	p := &PromMetrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation requests by corpus and outcome",
		}, []string{"corpus", "status"}),
		tokensGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_generated_total",
			Help:      "Tokens generated by corpus",
		}, []string{"corpus"}),
		tableBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_build_duration_seconds",
			Help:      "Time spent loading a corpus and building its transition table",
			Buckets:   prometheus.DefBuckets,
		}, []string{"corpus"}),
	}
	reg.MustRegister(p.generations, p.tokensGenerated, p.tableBuild)
	return p
}

func (p *PromMetrics) IncGenerations(corpus, status string) {
	p.generations.WithLabelValues(corpus, status).Inc()
}

func (p *PromMetrics) AddTokensGenerated(corpus string, n int) {
	p.tokensGenerated.WithLabelValues(corpus).Add(float64(n))
}

func (p *PromMetrics) ObserveTableBuild(corpus string, durationSeconds float64) {
	p.tableBuild.WithLabelValues(corpus).Observe(durationSeconds)
}

// metricsHandler returns an HTTP handler serving the collectors in reg.
func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
