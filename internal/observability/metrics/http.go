package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answerTotal        *prometheus.CounterVec
	answerDuration     *prometheus.HistogramVec
	answerConfidence   *prometheus.HistogramVec
	retrievalHitTotal  *prometheus.CounterVec
	noContextTotal     *prometheus.CounterVec
	retrievedPassages  *prometheus.HistogramVec
	snapshotChunkCount prometheus.Gauge
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "compass",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "compass",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answerTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "qa",
			Name:      "answers_total",
			Help:      "Total completed question-answer requests.",
		},
		[]string{"service", "endpoint"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "compass",
			Subsystem: "qa",
			Name:      "answer_duration_seconds",
			Help:      "End-to-end answer latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	answerConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "compass",
			Subsystem: "qa",
			Name:      "answer_confidence",
			Help:      "Distribution of answer confidence scores.",
			Buckets:   []float64{0, 0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 1},
		},
		[]string{"service", "endpoint"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "qa",
			Name:      "retrieval_hit_total",
			Help:      "Total answers with at least one cited source.",
		},
		[]string{"service", "endpoint"},
	)
	noContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "compass",
			Subsystem: "qa",
			Name:      "no_context_total",
			Help:      "Total answers produced without any cited source.",
		},
		[]string{"service", "endpoint"},
	)
	retrievedPassages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "compass",
			Subsystem: "qa",
			Name:      "retrieved_passages",
			Help:      "Distribution of cited sources per answer.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8},
		},
		[]string{"service", "endpoint"},
	)
	snapshotChunkCount := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "compass",
			Subsystem: "index",
			Name:      "snapshot_chunks",
			Help:      "Chunk count of the currently served index snapshot.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answerTotal,
		answerDuration,
		answerConfidence,
		retrievalHitTotal,
		noContextTotal,
		retrievedPassages,
		snapshotChunkCount,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		answerTotal:        answerTotal,
		answerDuration:     answerDuration,
		answerConfidence:   answerConfidence,
		retrievalHitTotal:  retrievalHitTotal,
		noContextTotal:     noContextTotal,
		retrievedPassages:  retrievedPassages,
		snapshotChunkCount: snapshotChunkCount,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordAnswer(service, endpoint string, sourceCount int, confidence float64, duration time.Duration) {
	m.answerTotal.WithLabelValues(service, endpoint).Inc()
	m.answerDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
	m.answerConfidence.WithLabelValues(service, endpoint).Observe(confidence)
	m.retrievedPassages.WithLabelValues(service, endpoint).Observe(float64(sourceCount))

	if sourceCount > 0 {
		m.retrievalHitTotal.WithLabelValues(service, endpoint).Inc()
		return
	}
	m.noContextTotal.WithLabelValues(service, endpoint).Inc()
}

func (m *HTTPServerMetrics) SetSnapshotChunks(count int) {
	m.snapshotChunkCount.Set(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
