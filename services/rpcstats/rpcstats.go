// Package rpcstats tracks how often each RPC method is called.
package rpcstats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// RPCUsageStats holds per-method call counters.
type RPCUsageStats struct {
	total            uint
	counterPerMethod *sync.Map
}

var (
	stats *RPCUsageStats
	mu    sync.Mutex // guards stats and its counters

	callCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "web3pipe_rpc_calls_total",
		Help: "Number of RPC calls entering the pipeline, per method.",
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(callCounter)
}

// instanceLocked returns the singleton; mu must be held.
func instanceLocked() *RPCUsageStats {
	if stats == nil {
		stats = &RPCUsageStats{}
		stats.counterPerMethod = &sync.Map{}
	}
	return stats
}

// CountCall records one call of the given method. Safe for concurrent
// use; it sits on the pipeline's request path.
func CountCall(method string) {
	mu.Lock()
	defer mu.Unlock()

	stats := instanceLocked()
	stats.total++
	value, _ := stats.counterPerMethod.LoadOrStore(method, uint(0))
	stats.counterPerMethod.Store(method, value.(uint)+1)
	callCounter.WithLabelValues(method).Inc()
}

// GetStats returns the total call count and the per-method counters.
func GetStats() (uint, *sync.Map) {
	mu.Lock()
	defer mu.Unlock()

	stats := instanceLocked()
	return stats.total, stats.counterPerMethod
}

// Reset clears all counters.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	stats := instanceLocked()
	stats.total = 0
	stats.counterPerMethod = &sync.Map{}
	callCounter.Reset()
}
