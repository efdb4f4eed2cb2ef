package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the spot pipeline.
type Metrics struct {
	// Feed reader metrics.
	LinesRead     prometheus.Counter
	LinesByKind   *prometheus.CounterVec // labels: kind={progress,reset,unrecognized,rbn,rbn_echo,sked,unexpected}
	ExtractErrors prometheus.Counter
	ReaderRunning prometheus.Gauge
	QueueDepth    prometheus.Gauge

	// Dispatcher metrics.
	SpotsApplied  *prometheus.CounterVec // labels: source={RBN,SKED}
	SpotsEvicted  prometheus.Counter
	SkedResets    prometheus.Counter
	StoreSize     *prometheus.GaugeVec // labels: source={RBN,SKED}
	DispatchBatch prometheus.Histogram
	Renders       prometheus.Counter

	// Export metrics.
	SpotsPublished prometheus.Counter
	PublishErrors  prometheus.Counter

	// HTTP metrics.
	StreamClients prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LinesRead,
		m.LinesByKind,
		m.ExtractErrors,
		m.ReaderRunning,
		m.QueueDepth,
		m.SpotsApplied,
		m.SpotsEvicted,
		m.SkedResets,
		m.StoreSize,
		m.DispatchBatch,
		m.Renders,
		m.SpotsPublished,
		m.PublishErrors,
		m.StreamClients,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "lines_read_total",
			Help:      "Total non-empty lines read from the skimmer process.",
		}),
		LinesByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "lines_classified_total",
			Help:      "Lines by classification outcome.",
		}, []string{"kind"}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "extract_errors_total",
			Help:      "Spot-shaped lines whose fields could not be extracted.",
		}),
		ReaderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skimmer",
			Name:      "reader_running",
			Help:      "1 while the feed reader loop is active, 0 otherwise.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skimmer",
			Name:      "queue_depth",
			Help:      "Events read but not yet applied by the dispatcher.",
		}),
		SpotsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "spots_applied_total",
			Help:      "Spots upserted into the store by source.",
		}, []string{"source"}),
		SpotsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "spots_evicted_total",
			Help:      "Spots removed for exceeding the maximum age.",
		}),
		SkedResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "sked_resets_total",
			Help:      "Sked page sentinels applied.",
		}),
		StoreSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "skimmer",
			Name:      "store_spots",
			Help:      "Spots currently held per source.",
		}, []string{"source"}),
		DispatchBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skimmer",
			Name:      "dispatch_batch_size",
			Help:      "Events applied per non-empty dispatcher tick.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		Renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "renders_total",
			Help:      "Snapshots pushed to the presentation layer.",
		}),
		SpotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "spots_published_total",
			Help:      "Spots written to the Kafka export topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer",
			Name:      "publish_errors_total",
			Help:      "Spots that could not be written to the Kafka export topic.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skimmer",
			Name:      "stream_clients",
			Help:      "Connected websocket snapshot subscribers.",
		}),
	}
}
