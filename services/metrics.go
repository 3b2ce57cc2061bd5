package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// plannerMetrics holds Prometheus metrics for the planning pipeline.
type plannerMetrics struct {
	plansStarted     prometheus.Counter
	plansFailed      prometheus.Counter
	providerFailures *prometheus.CounterVec
	planDuration     prometheus.Histogram
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	plannerMetricsInstance *plannerMetrics
	plannerMetricsOnce     sync.Once
	plannerMetricsRegistry = prometheus.DefaultRegisterer
)

func newPlannerMetrics() *plannerMetrics {
	plannerMetricsOnce.Do(func() {
		plannerMetricsInstance = &plannerMetrics{
			plansStarted: promauto.With(plannerMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "planner_plans_started_total",
				Help: "Total number of plan requests accepted by the pipeline",
			}),
			plansFailed: promauto.With(plannerMetricsRegistry).NewCounter(prometheus.CounterOpts{
				Name: "planner_plans_failed_total",
				Help: "Total number of plan requests that ended in a fatal error",
			}),
			providerFailures: promauto.With(plannerMetricsRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "planner_provider_failures_total",
				Help: "Total number of isolated provider failures by provider name",
			}, []string{"provider"}),
			planDuration: promauto.With(plannerMetricsRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "planner_plan_duration_seconds",
				Help:    "Wall-clock time to produce a phase-one plan",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
			}),
		}
	})
	return plannerMetricsInstance
}

// resetPlannerMetricsForTesting resets the metrics singleton for test
// isolation. This should only be called from tests.
func resetPlannerMetricsForTesting() {
	plannerMetricsRegistry = prometheus.NewRegistry()
	plannerMetricsInstance = nil
	plannerMetricsOnce = sync.Once{}
}
