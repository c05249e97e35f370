package models

import "time"

// SystemMetrics is a JSON snapshot of the process counters exposed to admins.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	EnrollmentsCommitted     uint64    `json:"enrollmentsCommitted"`
	EnrollmentsRejected      uint64    `json:"enrollmentsRejected"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
