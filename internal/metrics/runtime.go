// Package metrics reads Go runtime statistics for the health endpoint.
package metrics

import (
	"runtime"
	"sync"
	"time"
)

// RuntimeSnapshot holds a point-in-time reading of the process runtime.
type RuntimeSnapshot struct {
	HeapAllocBytes uint64        `json:"heap_alloc_bytes"` // bytes in use by application
	HeapSysBytes   uint64        `json:"heap_sys_bytes"`   // bytes obtained from OS for heap
	SysBytes       uint64        `json:"sys_bytes"`        // total bytes obtained from OS
	HeapObjects    uint64        `json:"heap_objects"`
	NumGC          uint32        `json:"num_gc"`
	GCPauseTotal   time.Duration `json:"gc_pause_total_ns"`
	Goroutines     int           `json:"goroutines"`
}

// RuntimeCollector reads runtime statistics. Readings are reused for
// maxAge, so a busy /health endpoint does not stop the world on
// every call.
type RuntimeCollector struct {
	maxAge time.Duration
	now    func() time.Time

	mu    sync.Mutex
	last  RuntimeSnapshot
	taken time.Time
}

// NewRuntimeCollector creates a collector that refreshes at most once per
// maxAge. A zero maxAge reads fresh statistics on every call.
func NewRuntimeCollector(maxAge time.Duration) *RuntimeCollector {
	return &RuntimeCollector{maxAge: maxAge, now: time.Now}
}

// Snapshot returns runtime statistics no older than maxAge.
func (rc *RuntimeCollector) Snapshot() RuntimeSnapshot {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	now := rc.now()
	if !rc.taken.IsZero() && now.Sub(rc.taken) < rc.maxAge {
		return rc.last
	}
	rc.last = readRuntime()
	rc.taken = now
	return rc.last
}

// readRuntime stops the world briefly while reading MemStats.
func readRuntime() RuntimeSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeSnapshot{
		HeapAllocBytes: m.HeapAlloc,
		HeapSysBytes:   m.HeapSys,
		SysBytes:       m.Sys,
		HeapObjects:    m.HeapObjects,
		NumGC:          m.NumGC,
		GCPauseTotal:   time.Duration(m.PauseTotalNs),
		Goroutines:     runtime.NumGoroutine(),
	}
}
