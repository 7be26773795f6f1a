package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/nulzo/llm-relay/internal/store"
	"github.com/nulzo/llm-relay/internal/store/model"
	"go.uber.org/zap"
)

// Ingestor handles the asynchronous persistence of request logs.
type Ingestor interface {
	Log(log *model.RequestLog)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	logChan   chan *model.RequestLog
	batchSize int
	flushTime time.Duration

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return newIngestor(logger, repo, 10000, 50, 5*time.Second)
}

func newIngestor(logger *zap.Logger, repo store.Repository, buffer, batchSize int, flushTime time.Duration) *ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		logChan:   make(chan *model.RequestLog, buffer),
		batchSize: batchSize,
		flushTime: flushTime,
		done:      make(chan struct{}),
	}
}

// Log never blocks the request path; when the buffer is full the entry is dropped.
func (i *ingestor) Log(log *model.RequestLog) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.stopped {
		return
	}

	select {
	case i.logChan <- log:
	default:
		i.logger.Warn("Analytics buffer full, dropping log", zap.String("request_id", log.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

// Stop drains buffered logs and waits for the worker to exit.
func (i *ingestor) Stop() {
	i.mu.Lock()
	if i.stopped {
		i.mu.Unlock()
		return
	}
	i.stopped = true
	close(i.logChan)
	i.mu.Unlock()

	<-i.done
}

func (i *ingestor) worker(ctx context.Context) {
	defer close(i.done)

	batch := make([]*model.RequestLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		err := i.repo.WithTx(context.Background(), func(repo store.Repository) error {
			for _, log := range batch {
				if err := repo.Requests().Log(context.Background(), log); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			i.logger.Error("Failed to persist request logs", zap.Int("batch", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case log, ok := <-i.logChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, log)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// keep draining until Stop closes the channel
			flush()
			for log := range i.logChan {
				batch = append(batch, log)
			}
			flush()
			return
		}
	}
}

type noopIngestor struct{}

// NewNoopIngestor discards every log; used when the usage ledger is disabled.
func NewNoopIngestor() Ingestor { return noopIngestor{} }

func (noopIngestor) Log(*model.RequestLog)   {}
func (noopIngestor) Start(context.Context) {}
func (noopIngestor) Stop()                 {}
