// Package metrics exposes dialogue playback as Prometheus metrics.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	registry *prometheus.Registry

	NodeVisits       *prometheus.CounterVec
	VariableChanges  *prometheus.CounterVec
	StorySessions    *prometheus.CounterVec
	SyncSkipped      *prometheus.CounterVec
	TrackedVariables prometheus.Histogram
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"kind"},
		),
		VariableChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_variable_changes_total",
				Help: "Committed changes to live variable values",
			},
			[]string{"variable"},
		),
		StorySessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_story_sessions_total",
				Help: "External story sessions by lifecycle phase",
			},
			[]string{"phase"},
		),
		SyncSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "colloquy_sync_skipped_total",
				Help: "Values the story bridge refused to forward",
			},
			[]string{"variable"},
		),
		TrackedVariables: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "colloquy_story_tracked_variables",
				Help:    "Shared variables tracked by a story session when it ends",
				Buckets: []float64{0, 1, 2, 5, 10, 25},
			},
		),
	}
	m.registry.MustRegister(m.NodeVisits, m.VariableChanges, m.StorySessions, m.SyncSkipped, m.TrackedVariables)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every lifecycle event and logs it at debug level.
// A nil logger disables the logging half.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) {
			logger.Debug("node_enter", "node_id", e.NodeID, "name", e.NodeName, "kind", e.Kind)
			m.NodeVisits.WithLabelValues(string(e.Kind)).Inc()
		},
		OnVariableChanged: func(e *domain.VariableEvent) {
			logger.Debug("variable_changed", "variable", e.Name, "old", e.Old.String(), "new", e.New.String())
			m.VariableChanges.WithLabelValues(e.Name).Inc()
		},
		OnSessionBegin: func(e *domain.SessionEvent) {
			logger.Debug("session_begin", "script", e.Script, "label", e.Label)
			m.StorySessions.WithLabelValues("begin").Inc()
		},
		OnSessionEnd: func(e *domain.SessionEvent) {
			logger.Debug("session_end", "script", e.Script, "label", e.Label, "tracked", len(e.Tracked))
			m.StorySessions.WithLabelValues("end").Inc()
			m.TrackedVariables.Observe(float64(len(e.Tracked)))
		},
		OnSyncSkipped: func(e *domain.SyncEvent) {
			logger.Debug("sync_skipped", "variable", e.Name, "reason", e.Reason)
			m.SyncSkipped.WithLabelValues(e.Name).Inc()
		},
	}
}
