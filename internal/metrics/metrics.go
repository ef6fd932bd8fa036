// Package metrics provides lightweight application metrics recording.
package metrics

import "time"

// Recorder captures application metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// Document ingestion.
	IncDocumentIngested(status string)
	ObserveIngestDuration(d time.Duration)
	IncChunkCacheHit()
	IncChunkCacheMiss()

	// Vector index cache.
	IncIndexCacheHit()
	IncIndexCacheMiss()

	// Question answering.
	IncQuestionAnswered(status string)
	ObserveAnswerDuration(d time.Duration)
	ObserveAnswerBatchSize(n int)

	// Query history pipeline.
	IncHistoryEventPublished(status string)
	IncHistoryEventProcessed(status string)
	ObserveHistoryBatchSize(size int)
	ObserveHistoryBatchDuration(d time.Duration)
	SetHistoryQueueDepth(depth int64)
}

// Snapshotter exposes a point-in-time view of recorded metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Status labels used across recorders.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
