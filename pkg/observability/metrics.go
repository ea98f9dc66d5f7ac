package observability

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/aretw0/docmodel/pkg/model"
)

const namespace = "docmodel"

// Outcome label values of docmodel_documents_total.
const (
	OutcomeBuilt  = "built"
	OutcomeFailed = "failed"
)

// Metrics records model and document events as Prometheus metrics.
type Metrics struct {
	models    *prometheus.CounterVec
	documents *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		models: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "models_defined_total",
				Help:      "Total number of model definitions attached to a registry",
			},
			[]string{"model"},
		),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "Total number of document constructions by outcome",
			},
			[]string{"model", "outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_failures_total",
				Help:      "Total number of rejected documents by error kind",
			},
			[]string{"model", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "document_build_duration_seconds",
				Help:      "Duration of document constructions",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"model"},
		),
	}

	for _, c := range []prometheus.Collector{m.models, m.documents, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// MustNewMetrics is like NewMetrics but panics on error.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m, err := NewMetrics(reg)
	if err != nil {
		panic(err)
	}
	return m
}

// Hooks returns the lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() model.LifecycleHooks {
	return model.LifecycleHooks{
		OnModelDefined: func(e *model.ModelEvent) {
			m.models.WithLabelValues(e.Model).Inc()
		},
		OnDocumentBuilt: func(e *model.DocumentEvent) {
			m.documents.WithLabelValues(e.Model, OutcomeBuilt).Inc()
			m.duration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
		},
		OnDocumentFailed: func(e *model.DocumentEvent) {
			m.documents.WithLabelValues(e.Model, OutcomeFailed).Inc()
			m.failures.WithLabelValues(e.Model, e.Kind).Inc()
			m.duration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
		},
	}
}

// LoggingHooks logs every event with logger. Rejected documents are logged at
// warn level, everything else at debug.
func LoggingHooks(logger *slog.Logger) model.LifecycleHooks {
	return model.LifecycleHooks{
		OnModelDefined: func(e *model.ModelEvent) {
			logger.Debug("model_defined", "model", e.Model, "fields", e.Fields, "replaced", e.Replaced)
		},
		OnDocumentBuilt: func(e *model.DocumentEvent) {
			logger.Debug("document_built", "model", e.Model, "duration", e.Duration)
		},
		OnDocumentFailed: func(e *model.DocumentEvent) {
			logger.Warn("document_failed", "model", e.Model, "kind", e.Kind, "error", e.Err)
		},
	}
}

// WriteText writes every metric family gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
