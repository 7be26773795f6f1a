package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nulzo/llm-relay/internal/store"
	"github.com/nulzo/llm-relay/internal/store/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T, now time.Time) *SqliteRepository {
	t.Helper()
	repo, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "relay.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	r := repo.(*SqliteRepository)
	r.now = func() time.Time { return now }
	return r
}

func TestRequestLog_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := newTestRepo(t, now)
	ctx := context.Background()

	require.NoError(t, repo.Requests().Log(ctx, &model.RequestLog{
		ID:                "req-1",
		ProviderID:        "groq",
		RequestedProvider: "groq",
		StatusCode:        200,
		LatencyMS:         120,
		MessageCount:      2,
	}))

	got, err := repo.Requests().GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "groq", got.ProviderID)
	assert.Equal(t, "2024-05-01", got.Day)
	assert.Equal(t, 2, got.MessageCount)
}

func TestGetDailyStats(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := newTestRepo(t, now)
	ctx := context.Background()

	logs := []*model.RequestLog{
		{ID: "a", ProviderID: "mock", StatusCode: 200, LatencyMS: 10, CreatedAt: now},
		{ID: "b", ProviderID: "mock", StatusCode: 200, LatencyMS: 30, CreatedAt: now},
		{ID: "c", ProviderID: "groq", StatusCode: 500, LatencyMS: 100, CreatedAt: now},
		{ID: "d", ProviderID: "groq", StatusCode: 200, LatencyMS: 50, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "old", ProviderID: "groq", StatusCode: 200, LatencyMS: 50, CreatedAt: now.AddDate(0, 0, -30)},
	}
	for _, l := range logs {
		require.NoError(t, repo.Requests().Log(ctx, l))
	}

	stats, err := repo.Requests().GetDailyStats(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, model.DailyStats{Date: "2024-05-10", ProviderID: "groq", TotalRequests: 1, FailedRequests: 1, AverageLatency: 100}, stats[0])
	assert.Equal(t, model.DailyStats{Date: "2024-05-10", ProviderID: "mock", TotalRequests: 2, FailedRequests: 0, AverageLatency: 20}, stats[1])
	assert.Equal(t, "2024-05-09", stats[2].Date)
}

func TestWithTx_RollsBack(t *testing.T) {
	repo := newTestRepo(t, time.Now())
	ctx := context.Background()

	err := repo.WithTx(ctx, func(tx store.Repository) error {
		if err := tx.Requests().Log(ctx, &model.RequestLog{ID: "tx-1", ProviderID: "mock", StatusCode: 200}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = repo.Requests().GetByID(ctx, "tx-1")
	assert.Error(t, err)
}
