// Package cmap provides a sharded, concurrency-safe map keyed by string.
//
// Keys are spread over a power-of-two number of shards, each guarded by its
// own RWMutex, so callers touching different keys rarely contend.
//
// Usage:
//
//	m := cmap.New[*rate.Limiter]()
//	l := m.GetOrCreate(clientIP, newLimiter)
//	m.DeleteIf(func(_ string, l *rate.Limiter) bool { return idle(l) })
package cmap
