package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes used as the "outcome" label.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeCached  = "cached"
)

// Metrics holds the collectors recorded by the engine and the HTTP server.
type Metrics struct {
	registry *prometheus.Registry

	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
	findings    *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// NewMetrics creates and registers every collector, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revitgen_generations_total",
				Help: "Total number of generation requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "revitgen_completion_duration_seconds",
				Help:    "Duration of language model completions",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"provider"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revitgen_tokens_total",
				Help: "Tokens consumed by direction",
			},
			[]string{"provider", "direction"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revitgen_lint_findings_total",
				Help: "Lint findings raised against generated scripts",
			},
			[]string{"rule", "severity"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revitgen_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
	m.registry.MustRegister(
		m.generations, m.latency, m.tokens, m.findings, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCompletion records a finished completion call.
func (m *Metrics) ObserveCompletion(provider string, d time.Duration, usage domain.Usage) {
	m.latency.WithLabelValues(provider).Observe(d.Seconds())
	m.tokens.WithLabelValues(provider, "input").Add(float64(usage.InputTokens))
	m.tokens.WithLabelValues(provider, "output").Add(float64(usage.OutputTokens))
}

// ObserveGeneration counts a request by its outcome.
func (m *Metrics) ObserveGeneration(provider, outcome string) {
	m.generations.WithLabelValues(provider, outcome).Inc()
}

// ObserveFindings counts each diagnostic in report.
func (m *Metrics) ObserveFindings(report domain.Report) {
	for _, d := range report.Diagnostics {
		m.findings.WithLabelValues(d.Rule, string(d.Severity)).Inc()
	}
}

// ObserveRequest counts an HTTP request.
func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
