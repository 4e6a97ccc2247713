package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a private registry for one batch run. Counters are safe for
// concurrent use, so the training and evaluation branches share it.
type Metrics struct {
	Registry *prometheus.Registry

	RowsTransformed  *prometheus.CounterVec
	Predictions      *prometheus.CounterVec
	TrainingScore    *prometheus.GaugeVec
	DegradedFeatures *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsTransformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "titanic",
			Name:      "rows_transformed_total",
			Help:      "Rows passed through the feature transformer.",
		}, []string{"set"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "titanic",
			Name:      "predictions_total",
			Help:      "Predictions emitted, by predicted label.",
		}, []string{"label"}),
		TrainingScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "titanic",
			Name:      "training_score",
			Help:      "Accuracy of the fitted predictor on its own training set.",
		}, []string{"predictor"}),
		DegradedFeatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "titanic",
			Name:      "degraded_features_total",
			Help:      "Optional features skipped because their source columns were absent.",
		}, []string{"feature"}),
	}
	m.Registry.MustRegister(m.RowsTransformed, m.Predictions, m.TrainingScore, m.DegradedFeatures)
	return m
}

// WriteFile exports the registry in the Prometheus text format, for a
// node_exporter textfile collector. An empty path is a no-op.
func (m *Metrics) WriteFile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
