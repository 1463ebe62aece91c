package core

import "sync"

type MetricsState struct {
	CacheHits   map[string]uint64
	CacheMisses map[string]uint64
	Reloads     map[string]uint64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			CacheHits:   make(map[string]uint64),
			CacheMisses: make(map[string]uint64),
			Reloads:     make(map[string]uint64),
		}
	})
	return nil
}

// MetricsCacheHit records a cache hit for the named resource kind.
func MetricsCacheHit(kind string) {
	if metricsState == nil {
		return
	}
	metricsState.CacheHits[kind]++
}

// MetricsCacheMiss records a cache miss (and therefore a construction)
// for the named resource kind.
func MetricsCacheMiss(kind string) {
	if metricsState == nil {
		return
	}
	metricsState.CacheMisses[kind]++
}

// MetricsReload records one recipe replay for the named resource kind.
func MetricsReload(kind string) {
	if metricsState == nil {
		return
	}
	metricsState.Reloads[kind]++
}

func MetricsCache(kind string) (uint64, uint64) {
	if metricsState == nil {
		return 0, 0
	}
	return metricsState.CacheHits[kind], metricsState.CacheMisses[kind]
}

func MetricsReloadCount(kind string) uint64 {
	if metricsState == nil {
		return 0
	}
	return metricsState.Reloads[kind]
}
