// Package audit persists security events off the request path.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/idx"
	"github.com/cenkalti/backoff/v5"
)

// ErrClosed is returned by Close when the sink was already closed.
var ErrClosed = errors.New("audit: sink closed")

// Options tunes an AsyncSink. Zero values fall back to the defaults below.
type Options struct {
	BufferSize      int           // entries queued before new ones are dropped
	WriteTimeout    time.Duration // per attempt
	MaxTries        uint          // attempts per entry, including the first
	MaxElapsed      time.Duration // give up on an entry after this long
	InitialInterval time.Duration // first retry delay
}

func (o *Options) setDefaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = 1024
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 2 * time.Second
	}
	if o.MaxTries == 0 {
		o.MaxTries = 5
	}
	if o.MaxElapsed <= 0 {
		o.MaxElapsed = 30 * time.Second
	}
	if o.InitialInterval <= 0 {
		o.InitialInterval = 200 * time.Millisecond
	}
}

// AsyncSink queues audit entries and writes them to the store from a
// single worker, so entries are persisted in the order they were recorded.
// Failed writes are retried with exponential backoff; an entry that still
// cannot be written, or that arrives while the buffer is full, is logged
// and dropped. Callers never see audit failures.
type AsyncSink struct {
	log     store.AuditLog
	logger  *slog.Logger
	opts    Options
	entries chan domain.AuditEntry

	mu     sync.RWMutex
	closed bool

	stop    context.CancelFunc
	stopCtx context.Context
	done    chan struct{}
}

// NewAsyncSink starts the worker. Call Close to flush and stop it.
func NewAsyncSink(log store.AuditLog, logger *slog.Logger, opts Options) *AsyncSink {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	s := &AsyncSink{
		log:     log,
		logger:  logger.With("component", "audit"),
		opts:    opts,
		entries: make(chan domain.AuditEntry, opts.BufferSize),
		stop:    cancel,
		stopCtx: ctx,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Record queues e without blocking.
func (s *AsyncSink) Record(_ context.Context, e domain.AuditEntry) {
	if e.ID == "" {
		e.ID = idx.New().String()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.logger.Warn("audit entry dropped: sink closed", "action", e.Action, "target_id", e.TargetID)
		return
	}

	select {
	case s.entries <- e:
	default:
		s.logger.Error("audit entry dropped: buffer full", "action", e.Action, "target_id", e.TargetID)
	}
}

// Close stops accepting entries and waits for the queue to drain. If ctx
// ends first, in-flight retries are abandoned and ctx.Err() is returned.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	close(s.entries)
	s.mu.Unlock()

	select {
	case <-s.done:
		s.stop()
		return nil
	case <-ctx.Done():
		s.stop()
		<-s.done
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)

	for e := range s.entries {
		if err := s.write(e); err != nil {
			s.logger.Error("audit entry lost",
				"action", e.Action,
				"target_id", e.TargetID,
				"entry_id", e.ID,
				"error", err,
			)
		}
	}
}

func (s *AsyncSink) write(e domain.AuditEntry) error {
	op := func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(s.stopCtx, s.opts.WriteTimeout)
		defer cancel()

		err := s.log.AppendAuditEntry(ctx, e)
		if errors.Is(err, store.ErrAlreadyExists) {
			// A previous attempt landed after its deadline fired.
			return struct{}{}, nil
		}
		return struct{}{}, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.InitialInterval

	_, err := backoff.Retry(s.stopCtx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.opts.MaxTries),
		backoff.WithMaxElapsedTime(s.opts.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("audit write failed, retrying", "action", e.Action, "retry_in", next, "error", err)
		}),
	)
	return err
}
