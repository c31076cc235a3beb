// Package metrics exposes game counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SeamusWaldron/cubetac"
	"github.com/SeamusWaldron/cubetac/pkg/types"
)

const namespace = "cubetac"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	moves          *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	wins           *prometheus.CounterVec
	rotation       prometheus.Histogram
	wsClients      prometheus.Gauge
	recorderErrors prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Committed moves by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected requests by outcome.",
		}, []string{"outcome"}),
		wins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wins_total",
			Help:      "Finished games by winner.",
		}, []string{"winner"}),
		rotation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rotation_seconds",
			Help:      "Wall time from layer turn request to commit.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.4, 0.5, 0.75, 1, 2},
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected WebSocket clients.",
		}),
		recorderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorder_errors_total",
			Help:      "Match history writes that failed.",
		}),
	}

	m.registry.MustRegister(
		m.moves, m.rejections, m.wins, m.rotation, m.wsClients, m.recorderErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMove counts a committed move.
func (m *Metrics) ObserveMove(mv types.Move) {
	m.moves.WithLabelValues(string(mv.Kind)).Inc()
}

// ObserveOutcome counts rejected requests. Accepted outcomes are ignored.
func (m *Metrics) ObserveOutcome(o cubetac.Outcome) {
	if o.OK() {
		return
	}
	m.rejections.WithLabelValues(o.String()).Inc()
}

// ObserveWin counts a finished game.
func (m *Metrics) ObserveWin(winner types.Mark) {
	m.wins.WithLabelValues(winner.String()).Inc()
}

// ObserveRotation records how long a layer turn took to commit.
func (m *Metrics) ObserveRotation(d time.Duration) {
	m.rotation.Observe(d.Seconds())
}

// ClientConnected and ClientDisconnected track WebSocket subscribers.
func (m *Metrics) ClientConnected() {
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	m.wsClients.Dec()
}

// RecorderError counts a failed history write.
func (m *Metrics) RecorderError(error) {
	m.recorderErrors.Inc()
}
