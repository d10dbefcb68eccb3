// Package metrics exposes Prometheus instrumentation for the letter pipeline.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries constant labels applied to every metric.
type Config struct {
	ServiceName string
	Environment string
}

// LetterMetrics instruments collation, dispatch and reconciliation.
type LetterMetrics struct {
	collateRuns        *prometheus.CounterVec
	batchesDispatched  *prometheus.CounterVec
	lettersDispatched  *prometheus.CounterVec
	callbacksProcessed *prometheus.CounterVec
	missingAckBatches  prometheus.Gauge
	stuckLetters       prometheus.Gauge
}

var (
	letterMetricsOnce sync.Once
	letterMetrics     *LetterMetrics
)

// Letters returns the process-wide letter metrics, registering them on first use.
func Letters() *LetterMetrics {
	return LettersWithConfig(Config{})
}

func LettersWithConfig(cfg Config) *LetterMetrics {
	letterMetricsOnce.Do(func() {
		letterMetrics = newLetterMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return letterMetrics
}

func ResetLetterMetricsForTest() {
	letterMetricsOnce = sync.Once{}
	letterMetrics = nil
}

func newLetterMetrics(registerer prometheus.Registerer, cfg Config) *LetterMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "letterpipe"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &LetterMetrics{
		collateRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "letterpipe_collate_runs_total",
				Help:        "Collation runs by outcome (ok, partial, error).",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		batchesDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "letterpipe_batches_dispatched_total",
				Help:        "Archive batches submitted for dispatch, by postage code.",
				ConstLabels: constLabels,
			},
			[]string{"postage"},
		),
		lettersDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "letterpipe_letters_dispatched_total",
				Help:        "Letters submitted for dispatch, by postage code and transport.",
				ConstLabels: constLabels,
			},
			[]string{"postage", "transport"},
		),
		callbacksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "letterpipe_callbacks_processed_total",
				Help:        "Provider callbacks processed, by result (applied, duplicate, rejected, invalid).",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		missingAckBatches: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "letterpipe_missing_ack_batches",
				Help:        "Batches sent today with no acknowledgement file, as of the last audit.",
				ConstLabels: constLabels,
			},
		),
		stuckLetters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "letterpipe_stuck_sending_letters",
				Help:        "Letters still sending past the expected window, as of the last check.",
				ConstLabels: constLabels,
			},
		),
	}

	registerer.MustRegister(
		m.collateRuns,
		m.batchesDispatched,
		m.lettersDispatched,
		m.callbacksProcessed,
		m.missingAckBatches,
		m.stuckLetters,
	)
	return m
}

func (m *LetterMetrics) CollateRun(outcome string) {
	if m == nil {
		return
	}
	m.collateRuns.WithLabelValues(outcome).Inc()
}

func (m *LetterMetrics) BatchDispatched(postage string, letters int) {
	if m == nil {
		return
	}
	m.batchesDispatched.WithLabelValues(postage).Inc()
	m.lettersDispatched.WithLabelValues(postage, "archive").Add(float64(letters))
}

func (m *LetterMetrics) LetterDispatchedViaAPI(postage string) {
	if m == nil {
		return
	}
	m.lettersDispatched.WithLabelValues(postage, "api").Inc()
}

func (m *LetterMetrics) CallbackProcessed(result string) {
	if m == nil {
		return
	}
	m.callbacksProcessed.WithLabelValues(result).Inc()
}

func (m *LetterMetrics) SetMissingAckBatches(count int) {
	if m == nil {
		return
	}
	m.missingAckBatches.Set(float64(count))
}

func (m *LetterMetrics) SetStuckLetters(count int) {
	if m == nil {
		return
	}
	m.stuckLetters.Set(float64(count))
}
