package culturegen

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are registered on the App's own registry and served at /metrics
// next to the request metrics of echoprometheus.
type Metrics struct {
	EditorActions *prometheus.CounterVec
	Saves         *prometheus.CounterVec
	Uploads       *prometheus.CounterVec
	RenderSeconds prometheus.Histogram
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EditorActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "culturegen",
				Name:      "editor_actions_total",
				Help:      "Content editor operations applied, by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "culturegen",
				Name:      "saves_total",
				Help:      "Admin saves, by kind (article, theme) and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "culturegen",
				Name:      "uploads_total",
				Help:      "Media uploads, by kind (image, document) and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		RenderSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "culturegen",
				Name:      "article_render_seconds",
				Help:      "Time spent rendering an article content document.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
			},
		),
	}
	reg.MustRegister(m.EditorActions, m.Saves, m.Uploads, m.RenderSeconds)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
