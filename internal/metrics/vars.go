package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds only chamber collectors; Go runtime metrics are not exported.
var Registry = prometheus.NewRegistry()

var (
	QuoteLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chamber_quote_latency_seconds",
		Help:    "Time to obtain a quote from a liquidity source",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	QuoteErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_quote_errors_total",
		Help: "Failed quote requests per liquidity source",
	}, []string{"source"})

	BestQuotes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_best_quotes_total",
		Help: "How often each source won the ranking",
	}, []string{"source"})

	SwapOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chamber_swap_outcomes_total",
		Help: "Swap executor terminal states",
	}, []string{"state"})

	SpotPrice = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chamber_spot_price_usd",
		Help: "Last observed spot price (USD)",
	}, []string{"symbol", "provider"})
)

func init() {
	Registry.MustRegister(
		QuoteLatency,
		QuoteErrors,
		BestQuotes,
		SwapOutcomes,
		SpotPrice,
	)
}
