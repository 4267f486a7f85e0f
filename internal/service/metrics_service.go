package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	seatsAssigned   *prometheus.CounterVec
	recognitions    *prometheus.CounterVec
	exportJobs      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	seatsAssigned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seats_assigned_total",
		Help: "Total seats assigned, labelled by placement mode",
	}, []string{"mode"})

	recognitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recognition_attempts_total",
		Help: "Total recognition attempts by outcome",
	}, []string{"outcome"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Total export jobs by final status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, seatsAssigned, recognitions, exportJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		seatsAssigned:   seatsAssigned,
		recognitions:    recognitions,
		exportJobs:      exportJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSeatsAssigned counts seat placements by mode ("bulk", "single",
// "recognition").
func (m *MetricsService) RecordSeatsAssigned(mode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.seatsAssigned.WithLabelValues(mode).Add(float64(count))
}

// RecordRecognition counts a recognition attempt by outcome
// ("matched", "unmatched", "error").
func (m *MetricsService) RecordRecognition(outcome string) {
	if m == nil {
		return
	}
	m.recognitions.WithLabelValues(outcome).Inc()
}

// RecordExportJob counts export jobs by final status.
func (m *MetricsService) RecordExportJob(status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(status).Inc()
}
