package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Job results used as the "result" label of tiledec_jobs_completed_total.
const (
	resultSuccess  = "success"
	resultFailed   = "decode_error"
	resultRejected = "rejected"
	resultClosed   = "closed"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	JobsSubmitted     prometheus.Counter
	JobsCompleted     *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
	BandDecodeSeconds prometheus.Histogram
	DecodedBytes      prometheus.Counter
	BufferGrows       *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	jobsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tiledec_jobs_submitted_total",
		Help: "Decompression requests accepted into the job queue",
	})

	jobsCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tiledec_jobs_completed_total",
		Help: "Decompression requests resolved, by result",
	}, []string{"result"})

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tiledec_queue_depth",
		Help: "Requests waiting for the worker pool",
	})

	bandDecode := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tiledec_band_decode_seconds",
		Help:    "Time a worker spent decoding one band",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	decodedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tiledec_decoded_bytes_total",
		Help: "Float32 bytes produced by reassembly",
	})

	bufferGrows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tiledec_buffer_grows_total",
		Help: "Worker buffer reallocations",
	}, []string{"buffer"})

	reg.MustRegister(jobsSubmitted, jobsCompleted, queueDepth, bandDecode, decodedBytes, bufferGrows)

	return &Metrics{
		JobsSubmitted:     jobsSubmitted,
		JobsCompleted:     jobsCompleted,
		QueueDepth:        queueDepth,
		BandDecodeSeconds: bandDecode,
		DecodedBytes:      decodedBytes,
		BufferGrows:       bufferGrows,
	}
}
