// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Share store metrics
	IncShareCreated()
	IncShareUpdated()
	IncShareDeleted()
	IncShareCacheHit()
	IncShareCacheMiss()

	// Engagement recorder metrics
	IncViewRecorded(firstSeen bool)
	IncEngagementRecorded(action string)
	IncReshareRecorded()

	// Analytics metrics
	IncAnalyticsCacheHit()
	IncAnalyticsCacheMiss()
	ObserveAnalyticsDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
