package judy

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every counter and gauge a Handle updates. Unlike
// promauto-based metrics, these are never registered against the global
// default registry: a library has no business mutating process-wide
// state behind its caller's back. Call Collectors and register them with
// whatever registry the embedding application uses, or ignore them
// entirely.
type Metrics struct {
	promotions  prometheus.Counter
	splits      prometheus.Counter
	keys        prometheus.Gauge
	live        *prometheus.GaugeVec
	allocations prometheus.Gauge
	reuses      prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "judy_trie_promotions_total",
			Help: "Linear node promotions to the next larger size class.",
		}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "judy_trie_splits_total",
			Help: "Linear-32 nodes split into a radix pair.",
		}),
		keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "judy_trie_keys",
			Help: "Keys currently present in the trie.",
		}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "judy_arena_live_nodes",
			Help: "Live arena nodes, by node kind.",
		}, []string{"tag"}),
		allocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "judy_arena_allocations_total",
			Help: "Nodes ever allocated from a per-type slice, including freed ones.",
		}),
		reuses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "judy_arena_reuses_total",
			Help: "Allocations satisfied from a free-list instead of growing a slice.",
		}),
	}
}

// Collectors returns every collector backing h's metrics, for a caller
// to register with its own prometheus.Registerer. The arena-derived
// gauges are refreshed from the arena's current stats at call time, so
// scrape after registering rather than caching the returned slice across
// a long idle period if live counts matter.
func (h *Handle) Collectors() []prometheus.Collector {
	if h.closed {
		return nil
	}
	stats := h.arena.Stats()
	for tag, n := range stats.LiveByTag {
		h.metrics.live.WithLabelValues(tag.String()).Set(float64(n))
	}
	h.metrics.allocations.Set(float64(stats.Allocations))
	h.metrics.reuses.Set(float64(stats.Reuses))
	return []prometheus.Collector{
		h.metrics.promotions,
		h.metrics.splits,
		h.metrics.keys,
		h.metrics.live,
		h.metrics.allocations,
		h.metrics.reuses,
	}
}
