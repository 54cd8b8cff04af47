// Package metrics counts run outcomes and listing extraction results for the textfile collector.
package metrics

import (
	"time"

	"github.com/law-makers/marketscan/internal/engine"
	"github.com/law-makers/marketscan/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics bundles Prometheus collectors for search runs.
type Metrics struct {
	Registry        *prometheus.Registry
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	ListingsTotal   prometheus.Counter
	FailuresTotal   prometheus.Counter
	StrategyTotal   *prometheus.CounterVec
	ListingsMissing prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscan_runs_total",
			Help: "Search runs by outcome.",
		},
		[]string{"outcome"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marketscan_run_duration_seconds",
			Help:    "Wall time of a search run, browser start to export.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60},
		},
	)
	listings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketscan_listings_extracted_total",
			Help: "Listings turned into records.",
		},
	)
	failures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketscan_listing_failures_total",
			Help: "Listings skipped because extraction failed.",
		},
	)
	strategy := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketscan_listing_strategy_total",
			Help: "Which listing selector matched.",
		},
		[]string{"selector"},
	)
	missing := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketscan_listings_missing_total",
			Help: "Result pages where no listing selector matched.",
		},
	)

	registry.MustRegister(runs, duration, listings, failures, strategy, missing)

	return &Metrics{
		Registry:        registry,
		RunsTotal:       runs,
		RunDuration:     duration,
		ListingsTotal:   listings,
		FailuresTotal:   failures,
		StrategyTotal:   strategy,
		ListingsMissing: missing,
	}
}

// ObserveRun records the outcome and duration of one run.
func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// WriteFile writes every metric in the text exposition format, replacing path atomically.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

// Reporter returns a Reporter that counts events before passing them to next.
func (m *Metrics) Reporter(next engine.Reporter) engine.Reporter {
	if next == nil {
		next = engine.NopReporter{}
	}
	if m == nil {
		return next
	}
	return &reporter{m: m, next: next}
}

type reporter struct {
	m    *Metrics
	next engine.Reporter
}

func (r *reporter) Stage(msg string) { r.next.Stage(msg) }

func (r *reporter) ListingsFound(s engine.Strategy, total, processing int) {
	r.m.StrategyTotal.WithLabelValues(s.Selector).Inc()
	r.next.ListingsFound(s, total, processing)
}

func (r *reporter) ListingsMissing(debugPath string) {
	r.m.ListingsMissing.Inc()
	r.next.ListingsMissing(debugPath)
}

func (r *reporter) ItemDone(index int, rec models.Record) {
	r.m.ListingsTotal.Inc()
	r.next.ItemDone(index, rec)
}

func (r *reporter) ItemFailed(index int, err error) {
	r.m.FailuresTotal.Inc()
	r.next.ItemFailed(index, err)
}
