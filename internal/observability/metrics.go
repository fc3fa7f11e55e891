package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the clock service.
type Metrics struct {
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	FramesRendered prometheus.Counter
	RenderErrors   *prometheus.CounterVec // labels: kind={layout,frame,chrome}

	// Scheduling metrics.
	TickLateness prometheus.Histogram

	// Hand wraparound and geometry metrics.
	HandWraps          *prometheus.CounterVec // labels: hand={hour,minute,second}
	LayoutComputations prometheus.Counter
	LayoutCache        *prometheus.CounterVec // labels: result={hit,miss,error}

	// Collaborator metrics.
	PreferenceErrors   *prometheus.CounterVec // labels: op={load,save}
	FullscreenFailures prometheus.Counter
	ReadingsPublished  prometheus.Counter
	PublishErrors      prometheus.Counter

	// Transport metrics.
	InboundDropped *prometheus.CounterVec // labels: reason={rate,malformed}
}

// NewMetrics creates and registers all clock metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SessionsActive,
		m.SessionsTotal,
		m.FramesRendered,
		m.RenderErrors,
		m.TickLateness,
		m.HandWraps,
		m.LayoutComputations,
		m.LayoutCache,
		m.PreferenceErrors,
		m.FullscreenFailures,
		m.ReadingsPublished,
		m.PublishErrors,
		m.InboundDropped,
	)

	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clockface",
			Name:      "sessions_active",
			Help:      "Presentation sessions currently mounted.",
		}),
		SessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "sessions_total",
			Help:      "Presentation sessions started since process start.",
		}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "frames_rendered_total",
			Help:      "Clock frames handed to a renderer.",
		}),
		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "render_errors_total",
			Help:      "Renderer failures by output kind.",
		}, []string{"kind"}),
		TickLateness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clockface",
			Name:      "tick_lateness_seconds",
			Help:      "Delay between the targeted second boundary and the actual sample.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		HandWraps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "hand_wraps_total",
			Help:      "Updates applied without transition because a hand wrapped past 12.",
		}, []string{"hand"}),
		LayoutComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "layout_computations_total",
			Help:      "Dial layouts recomputed after a mount or a diameter change.",
		}),
		LayoutCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "layout_cache_total",
			Help:      "Dial layout cache lookups by result.",
		}, []string{"result"}),
		PreferenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "preference_errors_total",
			Help:      "Preference store failures by operation. Failures are otherwise silent.",
		}, []string{"op"}),
		FullscreenFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "fullscreen_failures_total",
			Help:      "Fullscreen requests refused by the host.",
		}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "readings_published_total",
			Help:      "Clock readings written to the broadcast topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "publish_errors_total",
			Help:      "Failed broadcast writes.",
		}),
		InboundDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clockface",
			Name:      "inbound_messages_dropped_total",
			Help:      "Websocket messages from surfaces that were discarded.",
		}, []string{"reason"}),
	}
}
