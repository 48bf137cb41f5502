package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed analyses.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels requests rejected by validation.
	OutcomeInvalid = "invalid"
	// OutcomeError labels failed analyses (source or pipeline issues).
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trigger_rca",
			Name:      "analyses_total",
			Help:      "Total number of analysis runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "trigger_rca",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	triggersScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trigger_rca",
			Name:      "triggers_scored_total",
			Help:      "Trigger probabilities published in analysis results.",
		},
	)

	patternsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trigger_rca",
			Name:      "patterns_detected_total",
			Help:      "Symptom patterns published in analysis results, by pattern type.",
		},
		[]string{"type"},
	)
)

// Register attaches trigger-rca collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		triggersScoredTotal,
		patternsDetectedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeError, OutcomeInvalid:
	default:
		outcome = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// AddTriggers counts published trigger probabilities.
func AddTriggers(n int) {
	if n > 0 {
		triggersScoredTotal.Add(float64(n))
	}
}

// AddPattern counts one published pattern of the given type.
func AddPattern(patternType string) {
	patternsDetectedTotal.WithLabelValues(patternType).Inc()
}
