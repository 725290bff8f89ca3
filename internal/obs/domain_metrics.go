package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Solve outcomes recorded on PricingSolveTotal.
const (
	SolveExact      = "exact"
	SolveInfeasible = "infeasible"
	SolveInvalid    = "invalid"
	SolveCached     = "cached"
)

var (
	domainOnce sync.Once

	// PricingSolveTotal counts solver invocations by outcome.
	PricingSolveTotal *prometheus.CounterVec
	// PricingSolveDuration records solver latency in milliseconds.
	PricingSolveDuration prometheus.Histogram
	// PricingClampPasses records how many clamp passes a solve needed.
	PricingClampPasses prometheus.Histogram
	// QuoteCacheErrors counts cache reads and writes that failed.
	QuoteCacheErrors *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers pricing Prometheus collectors.
// Only the first call has an effect.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingSolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_solve_total",
			Help:      "Count of pricing solves by outcome.",
		}, []string{"result"})
		PricingSolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_solve_duration_ms",
			Help:      "Latency of the pricing solver in milliseconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		})
		PricingClampPasses = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_clamp_passes",
			Help:      "Number of clamp-and-redistribute passes per solve.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		})
		QuoteCacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_errors_total",
			Help:      "Count of failed quote cache operations.",
		}, []string{"op"})

		mustRegisterCollector(reg, PricingSolveTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingSolveTotal = v
			}
		})
		mustRegisterCollector(reg, PricingSolveDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				PricingSolveDuration = v
			}
		})
		mustRegisterCollector(reg, PricingClampPasses, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				PricingClampPasses = v
			}
		})
		mustRegisterCollector(reg, QuoteCacheErrors, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteCacheErrors = v
			}
		})
	})
}

// ObserveSolve records a solve outcome. It is a no-op until the domain
// metrics are registered.
func ObserveSolve(result string, passes int, durationMs float64) {
	if PricingSolveTotal != nil {
		PricingSolveTotal.WithLabelValues(result).Inc()
	}
	if passes > 0 && PricingClampPasses != nil {
		PricingClampPasses.Observe(float64(passes))
	}
	if PricingSolveDuration != nil && (result == SolveExact || result == SolveInfeasible) {
		PricingSolveDuration.Observe(durationMs)
	}
}

// ObserveCacheError counts a failed cache operation.
func ObserveCacheError(op string) {
	if QuoteCacheErrors != nil {
		QuoteCacheErrors.WithLabelValues(op).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
