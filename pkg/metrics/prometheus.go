// Package metrics provides Prometheus metrics for the BabelLM quiz service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Quiz flow
	roundsCreated    prometheus.Counter
	moves            *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	exactMatches     prometheus.Counter
	analysisLatency  prometheus.Histogram
	fixtureMisses    *prometheus.CounterVec
	handoffOps       *prometheus.CounterVec
	activeRounds     prometheus.Gauge
	revealSessions   *prometheus.CounterVec
	activeReveals    prometheus.Gauge
	celebrationBurst prometheus.Counter

	// Sharing
	shareTexts     prometheus.Counter
	shareImages    *prometheus.CounterVec
	renderLatency  prometheus.Histogram
	renderQueue    prometheus.Gauge
	renderCapacity prometheus.Gauge
	renderWorkers  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "babellm",
		subsystem:        "quiz",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 150, 250, 500, 1000, 2500},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.roundsCreated = m.counter("rounds_created_total", "Rounds created by the translate flow")
	m.moves = m.counterVec("moves_total", "Reorder gestures by outcome", "outcome")
	m.submissions = m.counterVec("submissions_total", "Round submissions by outcome", "outcome")
	m.exactMatches = m.counter("exact_matches_total", "Submitted orderings that matched the truth order")
	m.analysisLatency = m.histogram("analysis_latency_milliseconds", "Simulated model analysis latency")
	m.fixtureMisses = m.counterVec("fixture_misses_total", "Lookups that hit missing fixture data", "table")
	m.handoffOps = m.counterVec("handoff_operations_total", "Session handoff operations", "op", "outcome")
	m.activeRounds = m.gauge("active_rounds", "Rounds currently held in memory")
	m.revealSessions = m.counterVec("reveal_sessions_total", "Reveal sessions by terminal phase", "phase")
	m.activeReveals = m.gauge("active_reveal_sessions", "Reveal sessions currently streaming")
	m.celebrationBurst = m.counter("celebration_bursts_total", "Celebration particle bursts emitted")

	m.shareTexts = m.counter("share_texts_total", "Share texts built")
	m.shareImages = m.counterVec("share_images_total", "Share card renders by outcome", "outcome")
	m.renderLatency = m.histogram("render_latency_milliseconds", "Share card render and encode latency")
	m.renderQueue = m.gauge("render_queue_size", "Share card jobs waiting for a worker")
	m.renderCapacity = m.gauge("render_queue_capacity", "Share card queue capacity")
	m.renderWorkers = m.gauge("render_workers", "Share card render workers")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "http_request_duration_milliseconds",
		Help: "HTTP request duration in milliseconds", ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRoundCreated counts a new round.
func RecordRoundCreated() { globalManager.roundsCreated.Inc() }

// RecordMove counts a reorder gesture; outcome is "ok" or an error kind.
func RecordMove(outcome string) { globalManager.moves.WithLabelValues(outcome).Inc() }

// RecordSubmission counts a submission; outcome is "accepted", "duplicate" or an error kind.
func RecordSubmission(outcome string) { globalManager.submissions.WithLabelValues(outcome).Inc() }

// RecordExactMatch counts a perfect prediction.
func RecordExactMatch() { globalManager.exactMatches.Inc() }

// RecordAnalysisLatency observes simulated analysis latency.
func RecordAnalysisLatency(latencyMs float64) { globalManager.analysisLatency.Observe(latencyMs) }

// RecordFixtureMiss counts a lookup against a missing fixture row.
func RecordFixtureMiss(table string) { globalManager.fixtureMisses.WithLabelValues(table).Inc() }

// RecordHandoff counts a session handoff read or write.
func RecordHandoff(op, outcome string) { globalManager.handoffOps.WithLabelValues(op, outcome).Inc() }

// UpdateActiveRounds sets the number of rounds in memory.
func UpdateActiveRounds(n int) { globalManager.activeRounds.Set(float64(n)) }

// RecordRevealSession counts a reveal session reaching phase.
func RecordRevealSession(phase string) { globalManager.revealSessions.WithLabelValues(phase).Inc() }

// AddActiveReveals adjusts the streaming reveal gauge by delta.
func AddActiveReveals(delta int) { globalManager.activeReveals.Add(float64(delta)) }

// RecordCelebrationBurst counts one particle burst.
func RecordCelebrationBurst() { globalManager.celebrationBurst.Inc() }

// RecordShareText counts a built share text.
func RecordShareText() { globalManager.shareTexts.Inc() }

// RecordShareImage counts a share card render by outcome.
func RecordShareImage(outcome string) { globalManager.shareImages.WithLabelValues(outcome).Inc() }

// RecordRenderLatency observes share card render latency.
func RecordRenderLatency(latencyMs float64) { globalManager.renderLatency.Observe(latencyMs) }

// UpdateRenderQueueSize sets the number of queued render jobs.
func UpdateRenderQueueSize(n int) { globalManager.renderQueue.Set(float64(n)) }

// UpdateRenderQueueCapacity sets the render queue capacity.
func UpdateRenderQueueCapacity(n int) { globalManager.renderCapacity.Set(float64(n)) }

// UpdateRenderWorkers sets the render worker count.
func UpdateRenderWorkers(n int) { globalManager.renderWorkers.Set(float64(n)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
