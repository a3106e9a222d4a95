package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the sync layer's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Reads         *prometheus.CounterVec // result: hit|stale|miss
	Fetches       *prometheus.CounterVec // outcome: committed|discarded|failed
	Invalidations prometheus.Counter
	Evictions     prometheus.Counter
	Mutations     *prometheus.CounterVec // outcome: committed|rolled_back|rejected
}

// NewMetrics creates and registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetops",
			Subsystem: "cache",
			Name:      "reads_total",
			Help:      "Cache reads by freshness result.",
		}, []string{"result"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetops",
			Subsystem: "cache",
			Name:      "fetches_total",
			Help:      "Completed fetches by outcome.",
		}, []string{"outcome"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleetops",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Keys marked stale.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleetops",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Entries evicted by the capacity policy.",
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetops",
			Subsystem: "mutation",
			Name:      "total",
			Help:      "Optimistic mutations by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Reads, m.Fetches, m.Invalidations, m.Evictions, m.Mutations)
	}
	return m
}

func (m *Metrics) Read(result string) {
	if m != nil {
		m.Reads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Fetch(outcome string) {
	if m != nil {
		m.Fetches.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Mutation(outcome string) {
	if m != nil {
		m.Mutations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) invalidated() {
	if m != nil {
		m.Invalidations.Inc()
	}
}

func (m *Metrics) evicted() {
	if m != nil {
		m.Evictions.Inc()
	}
}
