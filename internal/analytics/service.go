package analytics

import (
	"context"

	"github.com/nulzo/llm-relay/internal/store"
	"github.com/nulzo/llm-relay/internal/store/model"
)

const (
	defaultDays = 7
	maxDays     = 90
)

type Service interface {
	GetUsageOverview(ctx context.Context, days int) ([]model.DailyStats, error)
}

type service struct {
	repo store.Repository
}

// NewService reports usage from repo. A nil repo yields an always-empty overview.
func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetUsageOverview(ctx context.Context, days int) ([]model.DailyStats, error) {
	if s.repo == nil {
		return []model.DailyStats{}, nil
	}
	if days <= 0 {
		days = defaultDays
	}
	if days > maxDays {
		days = maxDays
	}
	return s.repo.Requests().GetDailyStats(ctx, days)
}
