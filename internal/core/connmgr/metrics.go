package connmgr

import "github.com/prometheus/client_golang/prometheus"

// coordinatorMetrics are the Prometheus series this core exposes: how
// many downloads/uploads got associated with a running UC, how many
// UCs ended in failure (transient or protocol), and the live depth of
// both queues. Each Coordinator owns its own registry rather than
// registering into prometheus.DefaultRegisterer, so tests can build
// more than one Coordinator without a duplicate-registration panic.
type coordinatorMetrics struct {
	registry *prometheus.Registry

	downloadsAssociated prometheus.Counter
	uploadsAssociated   prometheus.Counter
	failures            prometheus.Counter
	downloadQueueDepth  prometheus.Gauge
	uploadQueueDepth    prometheus.Gauge
}

func newCoordinatorMetrics() *coordinatorMetrics {
	m := &coordinatorMetrics{
		registry: prometheus.NewRegistry(),
		downloadsAssociated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerconnd",
			Subsystem: "connmgr",
			Name:      "downloads_associated_total",
			Help:      "Download UserConnections that reached FLAG_ASSOCIATED.",
		}),
		uploadsAssociated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerconnd",
			Subsystem: "connmgr",
			Name:      "uploads_associated_total",
			Help:      "Upload UserConnections that reached FLAG_ASSOCIATED.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "peerconnd",
			Subsystem: "connmgr",
			Name:      "failures_total",
			Help:      "UserConnections that ended via handleFailure, transient or protocol.",
		}),
		downloadQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "peerconnd",
			Subsystem: "connmgr",
			Name:      "download_queue_depth",
			Help:      "Current number of download ConnectionQueueItems.",
		}),
		uploadQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "peerconnd",
			Subsystem: "connmgr",
			Name:      "upload_queue_depth",
			Help:      "Current number of upload ConnectionQueueItems.",
		}),
	}
	m.registry.MustRegister(m.downloadsAssociated, m.uploadsAssociated, m.failures,
		m.downloadQueueDepth, m.uploadQueueDepth)
	return m
}

// Registry exposes the coordinator's Prometheus registry for a caller
// to mount under an HTTP /metrics handler.
func (co *Coordinator) Registry() *prometheus.Registry {
	return co.metrics.registry
}

// syncQueueGauges refreshes the two queue-depth gauges from the live
// CQI lists. Called from the admission tick; cheap enough not to
// warrant a GaugeFunc callback.
func (co *Coordinator) syncQueueGauges() {
	co.metrics.downloadQueueDepth.Set(float64(co.downloads.len()))
	co.metrics.uploadQueueDepth.Set(float64(co.uploads.len()))
}
