package metrics

import "time"

// NoopRecorder discards every metric. Useful in tests and as a safe default
// when no recorder is wired.
type NoopRecorder struct{}

func NewNoop() *NoopRecorder { return &NoopRecorder{} }

func (NoopRecorder) IncDocumentIngested(string)                {}
func (NoopRecorder) ObserveIngestDuration(time.Duration)       {}
func (NoopRecorder) IncChunkCacheHit()                         {}
func (NoopRecorder) IncChunkCacheMiss()                        {}
func (NoopRecorder) IncIndexCacheHit()                         {}
func (NoopRecorder) IncIndexCacheMiss()                        {}
func (NoopRecorder) IncQuestionAnswered(string)                {}
func (NoopRecorder) ObserveAnswerDuration(time.Duration)       {}
func (NoopRecorder) ObserveAnswerBatchSize(int)                {}
func (NoopRecorder) IncHistoryEventPublished(string)           {}
func (NoopRecorder) IncHistoryEventProcessed(string)           {}
func (NoopRecorder) ObserveHistoryBatchSize(int)               {}
func (NoopRecorder) ObserveHistoryBatchDuration(time.Duration) {}
func (NoopRecorder) SetHistoryQueueDepth(int64)                {}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*InMemoryRecorder)(nil)
