// Package historian drains the Redis event queue and persists room events in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/partyhall/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// InsertFunc persists one batch. It must be safe to retry with the same records.
type InsertFunc func(ctx context.Context, records []cache.RoomEventRecord) error

// Options tunes batching.
type Options struct {
	Queue       string
	BatchSize   int
	FlushDelay  time.Duration
	PollTimeout time.Duration
	// MaxPending bounds the records kept for retry while inserts fail; the oldest are dropped.
	MaxPending int
}

func (o Options) withDefaults() Options {
	if o.Queue == "" {
		o.Queue = cache.DefaultQueueName
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	// BLPOP timeouts have one-second resolution.
	if o.PollTimeout < time.Second {
		o.PollTimeout = time.Second
	}
	if o.MaxPending < o.BatchSize {
		o.MaxPending = 10 * o.BatchSize
	}
	return o
}

// Service pops records off the queue, accumulates them and flushes them through insert
// once a batch is full or FlushDelay has passed since the last flush.
type Service struct {
	rdb    *redis.Client
	insert InsertFunc
	logger *logrus.Logger
	opts   Options

	batchMu   sync.Mutex
	batch     []cache.RoomEventRecord
	lastFlush time.Time
}

func NewService(rdb *redis.Client, insert InsertFunc, logger *logrus.Logger, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		rdb:    rdb,
		insert: insert,
		logger: logger,
		opts:   opts,
		batch:  make([]cache.RoomEventRecord, 0, opts.BatchSize),
	}
}

// Run blocks until ctx is cancelled, then makes a final flush attempt.
func (s *Service) Run(ctx context.Context) error {
	s.logger.WithField("queue", s.opts.Queue).Info("historian started")
	s.batchMu.Lock()
	s.lastFlush = time.Now()
	s.batchMu.Unlock()

	for {
		if ctx.Err() != nil {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.Flush(flushCtx)
			cancel()
			s.logger.Info("historian stopped")
			return nil
		}

		res, err := s.rdb.BLPop(ctx, s.opts.PollTimeout, s.opts.Queue).Result()
		switch {
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
		case err != nil:
			s.logger.WithError(err).Error("BLPop failed")
			time.Sleep(s.opts.PollTimeout)
		case len(res) == 2:
			// res[0] is the queue name and res[1] the payload.
			var rec cache.RoomEventRecord
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				s.logger.WithError(err).Warn("invalid room event record")
				break
			}
			s.appendToBatch(ctx, rec)
		}

		if s.flushDue() {
			s.Flush(ctx)
		}
	}
}

func (s *Service) appendToBatch(ctx context.Context, rec cache.RoomEventRecord) {
	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.opts.BatchSize
	s.batchMu.Unlock()
	if full {
		s.Flush(ctx)
	}
}

func (s *Service) flushDue() bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return time.Since(s.lastFlush) >= s.opts.FlushDelay
}

// Flush inserts everything pending. On failure the records stay queued for the next flush.
func (s *Service) Flush(ctx context.Context) int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.lastFlush = time.Now()

	if len(s.batch) == 0 {
		return 0
	}
	pending := make([]cache.RoomEventRecord, len(s.batch))
	copy(pending, s.batch)

	if err := s.insert(ctx, pending); err != nil {
		if over := len(s.batch) - s.opts.MaxPending; over > 0 {
			s.logger.WithField("dropped", over).Error("historian backlog full, dropping oldest events")
			s.batch = append(s.batch[:0], s.batch[over:]...)
		}
		s.logger.WithError(err).WithField("pending", len(s.batch)).Error("failed to flush room events")
		return 0
	}
	s.batch = s.batch[:0]
	s.logger.WithField("count", len(pending)).Debug("flushed room events")
	return len(pending)
}

// Pending reports how many records wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}
