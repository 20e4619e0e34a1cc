package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	accessDenials     *prometheus.CounterVec
	activityRecorded  prometheus.Counter
	milestonesGranted *prometheus.CounterVec
	jobsTotal         *prometheus.CounterVec
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenloop_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greenloop_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	denials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenloop_access_denials_total",
		Help: "Access guard denials by rule kind and role.",
	}, []string{"rule", "role"})
	activity := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "greenloop_activity_recorded_total",
		Help: "Qualifying activity recordings that mutated a streak.",
	})
	milestones := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenloop_streak_milestones_total",
		Help: "Streak milestone rewards granted, by milestone value.",
	}, []string{"milestone"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenloop_jobs_total",
		Help: "Background jobs processed by type and result.",
	}, []string{"type", "result"})
	registry.MustRegister(requests, duration, denials, activity, milestones, jobs)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		accessDenials:     denials,
		activityRecorded:  activity,
		milestonesGranted: milestones,
		jobsTotal:         jobs,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// AccessDenied increments the denial counter.
func (m *Metrics) AccessDenied(rule, role string) {
	if m == nil {
		return
	}
	m.accessDenials.WithLabelValues(rule, role).Inc()
}

// ActivityRecorded increments the activity counter.
func (m *Metrics) ActivityRecorded() {
	if m == nil {
		return
	}
	m.activityRecorded.Inc()
}

// MilestoneGranted increments the milestone counter.
func (m *Metrics) MilestoneGranted(milestone int) {
	if m == nil {
		return
	}
	m.milestonesGranted.WithLabelValues(strconv.Itoa(milestone)).Inc()
}

// JobProcessed increments the job counter.
func (m *Metrics) JobProcessed(taskType, result string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(taskType, result).Inc()
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
