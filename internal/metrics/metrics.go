// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edutrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edutrack_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// outcome: accepted, rejected, failed; reason is empty unless rejected
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edutrack_extractions_total",
			Help: "Extraction results by outcome and rejection reason",
		},
		[]string{"source", "outcome", "reason"},
	)

	ExtractionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edutrack_extraction_confidence",
			Help:    "Recognition confidence of extracted marksheets",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	ExtractedSubjects = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edutrack_extracted_subjects",
			Help:    "Subjects found per accepted marksheet",
			Buckets: []float64{1, 2, 4, 6, 8, 10, 15, 20},
		},
	)

	RecognitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edutrack_recognition_duration_seconds",
			Help:    "Time spent in the recognition engine",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 25, 60},
		},
	)

	UploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edutrack_upload_size_bytes",
			Help:    "Size of accepted uploads",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)

	ExtractionQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edutrack_extraction_queue_depth",
			Help: "Extraction jobs waiting in the queue",
		},
	)
)
