// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Outcome labels for customer operations.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var (
	// Business metrics
	customerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custd_customer_operations_total",
		Help: "Customer operations by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|not_found|invalid|error

	customerFilterFieldsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custd_customer_filter_fields_total",
		Help: "Fields used in customer list filters",
	}, []string{"field"})

	customerCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custd_customer_cache_lookups_total",
		Help: "Customer cache lookups by result",
	}, []string{"result"}) // result=hit|miss

	customerListResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "custd_customer_list_results",
		Help:    "Number of customers returned per list call",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// Operational metrics
	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custd_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "custd_build_info",
		Help: "Build information, value is always 1",
	}, []string{"version", "backend"})
)

func RecordCustomerOperation(operation, outcome string) {
	customerOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordFilterFields(fields []string) {
	for _, f := range fields {
		customerFilterFieldsTotal.WithLabelValues(f).Inc()
	}
}

func RecordCacheLookup(hit bool) {
	if hit {
		customerCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	customerCacheLookupsTotal.WithLabelValues("miss").Inc()
}

func ObserveListResults(n int) { customerListResults.Observe(float64(n)) }

func IncConfigReload(outcome string) { configReloadsTotal.WithLabelValues(outcome).Inc() }

// SetBuildInfo publishes the running version and store backend.
func SetBuildInfo(version, backend string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, backend).Set(1)
}

// CustomerOperationCount returns the current counter value (for testing).
func CustomerOperationCount(operation, outcome string) float64 {
	var m dto.Metric
	if err := customerOperationsTotal.WithLabelValues(operation, outcome).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// CacheLookupCount returns the current counter value (for testing).
func CacheLookupCount(result string) float64 {
	var m dto.Metric
	if err := customerCacheLookupsTotal.WithLabelValues(result).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// ConfigReloadCount returns the current counter value (for testing).
func ConfigReloadCount(outcome string) float64 {
	var m dto.Metric
	if err := configReloadsTotal.WithLabelValues(outcome).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
