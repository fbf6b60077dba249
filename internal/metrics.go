package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

const _namespace = "bookshelf"

// memoMetrics tracks how a single Memo table is doing. Every table registers
// the same metric names distinguished by a constant "cache" label.
type memoMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	coalesced prometheus.Counter
	computes  prometheus.Counter
	failures  prometheus.Counter
}

func newMemoMetrics(reg prometheus.Registerer, name string) *memoMetrics {
	labels := prometheus.Labels{"cache": name}
	counter := func(metric, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   _namespace,
			Subsystem:   "memo",
			Name:        metric,
			Help:        help,
			ConstLabels: labels,
		})
	}
	m := &memoMetrics{
		hits:      counter("hits_total", "Lookups served from a fresh entry."),
		misses:    counter("misses_total", "Lookups which found no fresh entry."),
		coalesced: counter("coalesced_total", "Callers which attached to an in-flight computation."),
		computes:  counter("computes_total", "Computations started."),
		failures:  counter("failures_total", "Computations which returned an error."),
	}
	registry(reg).MustRegister(m.hits, m.misses, m.coalesced, m.computes, m.failures)
	return m
}

// storeMetrics tracks tiered storage behavior.
type storeMetrics struct {
	promotions        prometheus.Counter
	promotionFailures prometheus.Counter
	remoteReads       prometheus.Counter
}

func newStoreMetrics(reg prometheus.Registerer) *storeMetrics {
	m := &storeMetrics{
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "storage",
			Name:      "promotions_total",
			Help:      "Remote reads copied back into the local tier.",
		}),
		promotionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "storage",
			Name:      "promotion_failures_total",
			Help:      "Remote reads which couldn't be copied into the local tier.",
		}),
		remoteReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: _namespace,
			Subsystem: "storage",
			Name:      "remote_reads_total",
			Help:      "Reads which fell through to the remote tier.",
		}),
	}
	registry(reg).MustRegister(m.promotions, m.promotionFailures, m.remoteReads)
	return m
}

// registry returns reg, or a private registry if none was provided so tests
// and tools don't collide on the global one.
func registry(reg prometheus.Registerer) prometheus.Registerer {
	if reg == nil {
		return prometheus.NewRegistry()
	}
	return reg
}
