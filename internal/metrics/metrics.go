// Package metrics exposes Prometheus counters for the cache and provider
// spend paths, so operators can watch hit ratios and quota burn.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventease_cache_hits_total",
		Help: "Cache hits by cache kind.",
	}, []string{"kind"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventease_cache_misses_total",
		Help: "Cache misses (including stale entries) by cache kind.",
	}, []string{"kind"})

	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventease_provider_calls_total",
		Help: "Billable third-party API calls by provider.",
	}, []string{"provider"})

	BudgetSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventease_budget_skips_total",
		Help: "Scheduled fetches skipped because a budget cap was reached.",
	})
)
