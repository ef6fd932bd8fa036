package model

import "time"

// QueryRecord is one answered question, persisted for history.
type QueryRecord struct {
	ID         string    `json:"id"`
	EventID    string    `json:"-"` // Redis stream ID, idempotency key
	URLHash    string    `json:"url_hash"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Failed     bool      `json:"failed"`
	CacheHit   bool      `json:"cache_hit"`
	DurationMs int64     `json:"duration_ms"`
	AskedAt    time.Time `json:"asked_at"`
}
