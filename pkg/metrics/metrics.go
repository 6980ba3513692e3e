package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AggregationRuns counts completed aggregation passes by outcome
	// ("success", "failed").
	AggregationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_aggregation_runs_total",
			Help: "Number of treasury aggregation passes by outcome.",
		},
		[]string{"outcome"},
	)

	// AggregationDuration observes wall-clock duration of full passes.
	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treasury_aggregation_duration_seconds",
			Help:    "Duration of a full treasury aggregation pass.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// UpstreamErrors counts provider failures by provider name
	// ("solana_rpc", "ethereum_rpc", "jupiter", "coingecko").
	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_upstream_errors_total",
			Help: "Number of upstream provider failures by provider.",
		},
		[]string{"provider"},
	)

	// WalletFetchFailures counts per-wallet degradations by wallet name.
	WalletFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_wallet_fetch_failures_total",
			Help: "Number of wallets degraded to an empty snapshot.",
		},
		[]string{"wallet"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Panics on duplicate registration, which only happens on programmer error.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		AggregationRuns,
		AggregationDuration,
		UpstreamErrors,
		WalletFetchFailures,
	)
}
