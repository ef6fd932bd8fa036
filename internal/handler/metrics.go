package handler

import (
	"fmt"
	"net/http"

	"github.com/docqa/docqa/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "docqa_documents_ingested_total{status=\"success\"} %d\n", snap.DocumentsIngestedOK)
	writeMetric(w, "docqa_documents_ingested_total{status=\"failed\"} %d\n", snap.DocumentsIngestedFailed)
	writeMetric(w, "docqa_ingest_duration_seconds_count %d\n", snap.IngestCount)
	writeMetric(w, "docqa_ingest_duration_seconds_sum %.3f\n", float64(snap.IngestDurationMsTotal)/1000)

	writeMetric(w, "docqa_chunk_cache_hits_total %d\n", snap.ChunkCacheHits)
	writeMetric(w, "docqa_chunk_cache_misses_total %d\n", snap.ChunkCacheMisses)
	writeMetric(w, "docqa_index_cache_hits_total %d\n", snap.IndexCacheHits)
	writeMetric(w, "docqa_index_cache_misses_total %d\n", snap.IndexCacheMisses)

	writeMetric(w, "docqa_questions_answered_total{status=\"success\"} %d\n", snap.QuestionsAnsweredOK)
	writeMetric(w, "docqa_questions_answered_total{status=\"failed\"} %d\n", snap.QuestionsAnsweredFailed)
	writeMetric(w, "docqa_answer_duration_seconds_count %d\n", snap.AnswerCount)
	writeMetric(w, "docqa_answer_duration_seconds_sum %.3f\n", float64(snap.AnswerDurationMsTotal)/1000)
	writeMetric(w, "docqa_answer_batches_total %d\n", snap.AnswerBatchCount)
	writeMetric(w, "docqa_answer_batch_questions_total %d\n", snap.AnswerBatchSizeTotal)

	writeMetric(w, "docqa_history_events_published_total{status=\"success\"} %d\n", snap.HistoryPublishedOK)
	writeMetric(w, "docqa_history_events_published_total{status=\"dropped\"} %d\n", snap.HistoryPublishedFailed)
	writeMetric(w, "docqa_history_events_processed_total{status=\"success\"} %d\n", snap.HistoryProcessedOK)
	writeMetric(w, "docqa_history_events_processed_total{status=\"failed\"} %d\n", snap.HistoryProcessedFailed)
	writeMetric(w, "docqa_history_batches_total %d\n", snap.HistoryBatchCount)
	writeMetric(w, "docqa_history_batch_duration_seconds_sum %.3f\n", float64(snap.HistoryBatchDurationMs)/1000)
	writeMetric(w, "docqa_history_queue_depth %d\n", snap.HistoryQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
