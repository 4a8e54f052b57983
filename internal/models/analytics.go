package models

import "time"

// FeedbackStats aggregates explicit feedback signal for the admin surface.
type FeedbackStats struct {
	TotalFeedback int64   `db:"total_feedback" json:"total_feedback"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}

// EngineStats is the combined admin statistics snapshot.
type EngineStats struct {
	Scores      ScoreStats          `json:"scores"`
	Queue       QueueStats          `json:"queue"`
	Feedback    FeedbackStats       `json:"feedback"`
	System      EngineSystemMetrics `json:"system"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// EngineSystemMetrics is a lightweight process-level snapshot derived from
// the Prometheus instrumentation.
type EngineSystemMetrics struct {
	ComputationsTotal        uint64  `json:"computations_total"`
	ComputationFailures      uint64  `json:"computation_failures"`
	AverageComputationMs     float64 `json:"average_computation_ms"`
	CacheHitRatio            float64 `json:"cache_hit_ratio"`
	CacheHits                uint64  `json:"cache_hits"`
	CacheMisses              uint64  `json:"cache_misses"`
	RequestsTotal            uint64  `json:"requests_total"`
	AverageRequestDurationMs float64 `json:"average_request_duration_ms"`
	Goroutines               int     `json:"goroutines"`
}
