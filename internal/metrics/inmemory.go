package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SharesCreated            uint64
	SharesUpdated            uint64
	SharesDeleted            uint64
	ShareCacheHits           uint64
	ShareCacheMisses         uint64
	ViewsRecorded            uint64
	UniqueViewsRecorded      uint64
	EngagementsByAction      map[string]uint64
	ResharesRecorded         uint64
	AnalyticsCacheHits       uint64
	AnalyticsCacheMisses     uint64
	AnalyticsDurationCount   uint64
	AnalyticsDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	sharesCreated            uint64
	sharesUpdated            uint64
	sharesDeleted            uint64
	shareCacheHits           uint64
	shareCacheMisses         uint64
	viewsRecorded            uint64
	uniqueViewsRecorded      uint64
	resharesRecorded         uint64
	analyticsCacheHits       uint64
	analyticsCacheMisses     uint64
	analyticsDurationCount   uint64
	analyticsDurationTotalNs int64

	mu                  sync.Mutex
	engagementsByAction map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		engagementsByAction: make(map[string]uint64),
	}
}

func (r *InMemoryRecorder) IncShareCreated()   { atomic.AddUint64(&r.sharesCreated, 1) }
func (r *InMemoryRecorder) IncShareUpdated()   { atomic.AddUint64(&r.sharesUpdated, 1) }
func (r *InMemoryRecorder) IncShareDeleted()   { atomic.AddUint64(&r.sharesDeleted, 1) }
func (r *InMemoryRecorder) IncShareCacheHit()  { atomic.AddUint64(&r.shareCacheHits, 1) }
func (r *InMemoryRecorder) IncShareCacheMiss() { atomic.AddUint64(&r.shareCacheMisses, 1) }

func (r *InMemoryRecorder) IncViewRecorded(firstSeen bool) {
	atomic.AddUint64(&r.viewsRecorded, 1)
	if firstSeen {
		atomic.AddUint64(&r.uniqueViewsRecorded, 1)
	}
}

func (r *InMemoryRecorder) IncEngagementRecorded(action string) {
	r.mu.Lock()
	r.engagementsByAction[action]++
	r.mu.Unlock()
}

func (r *InMemoryRecorder) IncReshareRecorded()    { atomic.AddUint64(&r.resharesRecorded, 1) }
func (r *InMemoryRecorder) IncAnalyticsCacheHit()  { atomic.AddUint64(&r.analyticsCacheHits, 1) }
func (r *InMemoryRecorder) IncAnalyticsCacheMiss() { atomic.AddUint64(&r.analyticsCacheMisses, 1) }

func (r *InMemoryRecorder) ObserveAnalyticsDuration(duration time.Duration) {
	atomic.AddUint64(&r.analyticsDurationCount, 1)
	atomic.AddInt64(&r.analyticsDurationTotalNs, duration.Nanoseconds())
}

// Snapshot returns a copy of the current counters.
func (r *InMemoryRecorder) Snapshot() Snapshot {
	r.mu.Lock()
	byAction := make(map[string]uint64, len(r.engagementsByAction))
	for action, count := range r.engagementsByAction {
		byAction[action] = count
	}
	r.mu.Unlock()

	return Snapshot{
		SharesCreated:            atomic.LoadUint64(&r.sharesCreated),
		SharesUpdated:            atomic.LoadUint64(&r.sharesUpdated),
		SharesDeleted:            atomic.LoadUint64(&r.sharesDeleted),
		ShareCacheHits:           atomic.LoadUint64(&r.shareCacheHits),
		ShareCacheMisses:         atomic.LoadUint64(&r.shareCacheMisses),
		ViewsRecorded:            atomic.LoadUint64(&r.viewsRecorded),
		UniqueViewsRecorded:      atomic.LoadUint64(&r.uniqueViewsRecorded),
		EngagementsByAction:      byAction,
		ResharesRecorded:         atomic.LoadUint64(&r.resharesRecorded),
		AnalyticsCacheHits:       atomic.LoadUint64(&r.analyticsCacheHits),
		AnalyticsCacheMisses:     atomic.LoadUint64(&r.analyticsCacheMisses),
		AnalyticsDurationCount:   atomic.LoadUint64(&r.analyticsDurationCount),
		AnalyticsDurationTotalNs: atomic.LoadInt64(&r.analyticsDurationTotalNs),
	}
}
