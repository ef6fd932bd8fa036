package metrics

import (
	"sync/atomic"
	"time"
)

// InMemoryRecorder keeps counters in process memory using atomics. It backs
// the /metrics endpoint and is cheap enough to run in every environment.
type InMemoryRecorder struct {
	documentsIngestedOK     atomic.Uint64
	documentsIngestedFailed atomic.Uint64
	ingestDurationMsTotal   atomic.Uint64
	ingestCount             atomic.Uint64
	chunkCacheHits          atomic.Uint64
	chunkCacheMisses        atomic.Uint64

	indexCacheHits   atomic.Uint64
	indexCacheMisses atomic.Uint64

	questionsAnsweredOK     atomic.Uint64
	questionsAnsweredFailed atomic.Uint64
	answerDurationMsTotal   atomic.Uint64
	answerCount             atomic.Uint64
	answerBatchSizeTotal    atomic.Uint64
	answerBatchCount        atomic.Uint64

	historyPublishedOK     atomic.Uint64
	historyPublishedFailed atomic.Uint64
	historyProcessedOK     atomic.Uint64
	historyProcessedFailed atomic.Uint64
	historyBatchSizeTotal  atomic.Uint64
	historyBatchCount      atomic.Uint64
	historyBatchDurationMs atomic.Uint64
	historyQueueDepth      atomic.Int64
}

// NewInMemory returns a recorder with all counters at zero.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

func (r *InMemoryRecorder) IncDocumentIngested(status string) {
	if status == StatusSuccess {
		r.documentsIngestedOK.Add(1)
	} else {
		r.documentsIngestedFailed.Add(1)
	}
}

func (r *InMemoryRecorder) ObserveIngestDuration(d time.Duration) {
	r.ingestDurationMsTotal.Add(uint64(d.Milliseconds()))
	r.ingestCount.Add(1)
}

func (r *InMemoryRecorder) IncChunkCacheHit()  { r.chunkCacheHits.Add(1) }
func (r *InMemoryRecorder) IncChunkCacheMiss() { r.chunkCacheMisses.Add(1) }

func (r *InMemoryRecorder) IncIndexCacheHit()  { r.indexCacheHits.Add(1) }
func (r *InMemoryRecorder) IncIndexCacheMiss() { r.indexCacheMisses.Add(1) }

func (r *InMemoryRecorder) IncQuestionAnswered(status string) {
	if status == StatusSuccess {
		r.questionsAnsweredOK.Add(1)
	} else {
		r.questionsAnsweredFailed.Add(1)
	}
}

func (r *InMemoryRecorder) ObserveAnswerDuration(d time.Duration) {
	r.answerDurationMsTotal.Add(uint64(d.Milliseconds()))
	r.answerCount.Add(1)
}

func (r *InMemoryRecorder) ObserveAnswerBatchSize(n int) {
	r.answerBatchSizeTotal.Add(uint64(n))
	r.answerBatchCount.Add(1)
}

func (r *InMemoryRecorder) IncHistoryEventPublished(status string) {
	if status == StatusSuccess {
		r.historyPublishedOK.Add(1)
	} else {
		r.historyPublishedFailed.Add(1)
	}
}

func (r *InMemoryRecorder) IncHistoryEventProcessed(status string) {
	if status == StatusSuccess {
		r.historyProcessedOK.Add(1)
	} else {
		r.historyProcessedFailed.Add(1)
	}
}

func (r *InMemoryRecorder) ObserveHistoryBatchSize(size int) {
	r.historyBatchSizeTotal.Add(uint64(size))
	r.historyBatchCount.Add(1)
}

func (r *InMemoryRecorder) ObserveHistoryBatchDuration(d time.Duration) {
	r.historyBatchDurationMs.Add(uint64(d.Milliseconds()))
}

func (r *InMemoryRecorder) SetHistoryQueueDepth(depth int64) {
	r.historyQueueDepth.Store(depth)
}

// Snapshot is a point-in-time copy of every counter, consumed by the
// metrics handler.
type Snapshot struct {
	DocumentsIngestedOK     uint64
	DocumentsIngestedFailed uint64
	IngestDurationMsTotal   uint64
	IngestCount             uint64
	ChunkCacheHits          uint64
	ChunkCacheMisses        uint64

	IndexCacheHits   uint64
	IndexCacheMisses uint64

	QuestionsAnsweredOK     uint64
	QuestionsAnsweredFailed uint64
	AnswerDurationMsTotal   uint64
	AnswerCount             uint64
	AnswerBatchSizeTotal    uint64
	AnswerBatchCount        uint64

	HistoryPublishedOK     uint64
	HistoryPublishedFailed uint64
	HistoryProcessedOK     uint64
	HistoryProcessedFailed uint64
	HistoryBatchSizeTotal  uint64
	HistoryBatchCount      uint64
	HistoryBatchDurationMs uint64
	HistoryQueueDepth      int64
}

// Snapshot reads every counter atomically. Individual reads are atomic but
// the snapshot as a whole is not, which is fine for monitoring.
func (r *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		DocumentsIngestedOK:     r.documentsIngestedOK.Load(),
		DocumentsIngestedFailed: r.documentsIngestedFailed.Load(),
		IngestDurationMsTotal:   r.ingestDurationMsTotal.Load(),
		IngestCount:             r.ingestCount.Load(),
		ChunkCacheHits:          r.chunkCacheHits.Load(),
		ChunkCacheMisses:        r.chunkCacheMisses.Load(),

		IndexCacheHits:   r.indexCacheHits.Load(),
		IndexCacheMisses: r.indexCacheMisses.Load(),

		QuestionsAnsweredOK:     r.questionsAnsweredOK.Load(),
		QuestionsAnsweredFailed: r.questionsAnsweredFailed.Load(),
		AnswerDurationMsTotal:   r.answerDurationMsTotal.Load(),
		AnswerCount:             r.answerCount.Load(),
		AnswerBatchSizeTotal:    r.answerBatchSizeTotal.Load(),
		AnswerBatchCount:        r.answerBatchCount.Load(),

		HistoryPublishedOK:     r.historyPublishedOK.Load(),
		HistoryPublishedFailed: r.historyPublishedFailed.Load(),
		HistoryProcessedOK:     r.historyProcessedOK.Load(),
		HistoryProcessedFailed: r.historyProcessedFailed.Load(),
		HistoryBatchSizeTotal:  r.historyBatchSizeTotal.Load(),
		HistoryBatchCount:      r.historyBatchCount.Load(),
		HistoryBatchDurationMs: r.historyBatchDurationMs.Load(),
		HistoryQueueDepth:      r.historyQueueDepth.Load(),
	}
}
