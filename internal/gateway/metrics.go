package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload result labels.
const (
	resultOK              = "ok"
	resultValidationError = "validation_error"
	resultUploadError     = "upload_error"
)

// Metrics holds the prometheus collectors for the gateway.
type Metrics struct {
	uploads        *prometheus.CounterVec
	uploadBytes    prometheus.Counter
	uploadDuration prometheus.Histogram
	messages       *prometheus.CounterVec
}

// NewMetrics creates and registers the gateway collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attachd",
			Name:      "uploads_total",
			Help:      "Attachment uploads by terminal result.",
		}, []string{"result"}),

		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "attachd",
			Name:      "upload_bytes_total",
			Help:      "Bytes successfully uploaded to object storage.",
		}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "attachd",
			Name:      "upload_duration_seconds",
			Help:      "Wall time of attachment uploads, including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),

		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attachd",
			Name:      "messages_total",
			Help:      "Stored messages by content kind.",
		}, []string{"kind"}),
	}
}
