package model

import (
	"time"
)

// RequestLog is the metadata recorded for one /chat call.
type RequestLog struct {
	ID                string    `db:"id" json:"id"`
	ProviderID        string    `db:"provider_id" json:"provider_id"`
	RequestedProvider string    `db:"requested_provider" json:"requested_provider"`
	StatusCode        int       `db:"status_code" json:"status_code"`
	LatencyMS         int64     `db:"latency_ms" json:"latency_ms"`
	MessageCount      int       `db:"message_count" json:"message_count"`
	ErrorMessage      string    `db:"error_message" json:"error_message,omitempty"`
	Day               string    `db:"day" json:"day"` // YYYY-MM-DD, UTC
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// DailyStats represents aggregated usage for one provider on one day.
type DailyStats struct {
	Date           string  `db:"day" json:"date"`
	ProviderID     string  `db:"provider_id" json:"provider"`
	TotalRequests  int     `db:"total_requests" json:"total_requests"`
	FailedRequests int     `db:"failed_requests" json:"failed_requests"`
	AverageLatency float64 `db:"avg_latency" json:"avg_latency_ms"`
}
