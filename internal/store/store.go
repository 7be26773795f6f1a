package store

import (
	"context"

	"github.com/nulzo/llm-relay/internal/store/model"
)

type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
)

// RequestID returns the id the request-id middleware stored on ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// Repository is the main contract for the data layer.
type Repository interface {
	Requests() RequestRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

type RequestRepository interface {
	// Log stores a completed relay request. Message content is never stored.
	Log(ctx context.Context, log *model.RequestLog) error
	// GetByID returns a single request log by ID.
	GetByID(ctx context.Context, id string) (*model.RequestLog, error)
	// GetDailyStats returns per-day, per-provider aggregates for the last N days.
	GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error)
}
