// Package observability exposes Prometheus metrics for report building and
// activity persistence.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carbon_dashboard"

var (
	reportsBuilt = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "built_total",
		Help:      "Reports assembled, labelled by period kind.",
	}, []string{"period"})
	rangeFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "range_fallbacks_total",
		Help:      "Custom ranges that were not found in the data and fell back to all months.",
	})
	reportBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reports",
		Name:      "build_duration_seconds",
		Help:      "Time spent loading, aggregating and assembling a report.",
		Buckets:   prometheus.DefBuckets,
	})
	narrativeFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "narrative",
		Name:      "fallbacks_total",
		Help:      "Reports delivered without an AI narrative, labelled by reason.",
	}, []string{"reason"})
	activityRecomputed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "activity",
		Name:      "recomputed_total",
		Help:      "Activity records whose CO2e total was recomputed on save.",
	})
)

func init() {
	prometheus.MustRegister(reportsBuilt, rangeFallbacks, reportBuildDuration, narrativeFallbacks, activityRecomputed)
}

// RecordReportBuilt counts a report for the given period kind and observes its build time.
func RecordReportBuilt(kind string, elapsed time.Duration) {
	reportsBuilt.WithLabelValues(kind).Inc()
	reportBuildDuration.Observe(elapsed.Seconds())
}

// RecordRangeFallback counts a custom range that fell back to all months.
func RecordRangeFallback() {
	rangeFallbacks.Inc()
}

// RecordNarrativeFallback counts a report served without a narrative.
func RecordNarrativeFallback(reason string) {
	narrativeFallbacks.WithLabelValues(reason).Inc()
}

// RecordActivityRecomputed counts a saved activity record.
func RecordActivityRecomputed() {
	activityRecomputed.Inc()
}
