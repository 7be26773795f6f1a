package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/llm-relay/internal/store"
	"github.com/nulzo/llm-relay/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
	now      func() time.Time
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
		now:      time.Now,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
		now:      r.now,
	}

	if err := fn(txRepo); err != nil {
		// roll back, but report the first error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Requests() store.RequestRepository {
	return &requestRepo{db: r.executor, now: r.now}
}

type requestRepo struct {
	db  DB
	now func() time.Time
}

func (r *requestRepo) Log(ctx context.Context, log *model.RequestLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.now()
	}
	log.CreatedAt = log.CreatedAt.UTC()
	log.Day = log.CreatedAt.Format(time.DateOnly)

	query := `
	INSERT INTO request_logs (
		id, provider_id, requested_provider, status_code,
		latency_ms, message_count, error_message, day, created_at
	) VALUES (
		:id, :provider_id, :requested_provider, :status_code,
		:latency_ms, :message_count, :error_message, :day, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.RequestLog, error) {
	var log model.RequestLog
	query := `SELECT * FROM request_logs WHERE id = ?`
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *requestRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	stats := make([]model.DailyStats, 0)
	since := r.now().UTC().AddDate(0, 0, -(days - 1)).Format(time.DateOnly)
	query := `
		SELECT
			day,
			provider_id,
			COUNT(*) AS total_requests,
			SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END) AS failed_requests,
			AVG(latency_ms) AS avg_latency
		FROM request_logs
		WHERE day >= ?
		GROUP BY day, provider_id
		ORDER BY day DESC, provider_id ASC
	`
	err := r.db.SelectContext(ctx, &stats, query, since)
	return stats, err
}
