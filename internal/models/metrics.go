package models

import "time"

// SystemMetrics summarises runtime counters for the status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	OptimizationRuns         uint64    `json:"optimization_runs"`
	AverageRunDurationMs     float64   `json:"average_run_duration_ms"`
	ChangesProposed          uint64    `json:"changes_proposed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
