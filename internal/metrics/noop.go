package metrics

import "time"

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder { return &NoopRecorder{} }

func (NoopRecorder) IncShareCreated()                        {}
func (NoopRecorder) IncShareUpdated()                        {}
func (NoopRecorder) IncShareDeleted()                        {}
func (NoopRecorder) IncShareCacheHit()                       {}
func (NoopRecorder) IncShareCacheMiss()                      {}
func (NoopRecorder) IncViewRecorded(bool)                    {}
func (NoopRecorder) IncEngagementRecorded(string)            {}
func (NoopRecorder) IncReshareRecorded()                     {}
func (NoopRecorder) IncAnalyticsCacheHit()                   {}
func (NoopRecorder) IncAnalyticsCacheMiss()                  {}
func (NoopRecorder) ObserveAnalyticsDuration(time.Duration)  {}
