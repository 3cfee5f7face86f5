// Package usersync mirrors added holdings into the per-user document store
// on a background worker so request handlers never wait on it.
package usersync

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/interfaces"
	"github.com/bobmcallan/haito/internal/models"
)

const (
	DefaultQueueSize = 64
	DefaultTimeout   = 5 * time.Second
)

// Outcome reports the result of one document write.
type Outcome struct {
	UserID string
	Ticker string
	Err    error
	At     time.Time
}

type job struct {
	identity models.Identity
	holding  models.Holding
}

// Syncer implements interfaces.HoldingSyncer.
type Syncer struct {
	store    interfaces.UserDocumentStore
	logger   *common.Logger
	timeout  time.Duration
	now      func() time.Time
	queue    chan job
	outcomes chan Outcome

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Option configures the syncer
type Option func(*Syncer)

// WithQueueSize sets the number of pending writes held before new ones are dropped.
func WithQueueSize(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.queue = make(chan job, n)
		}
	}
}

// WithTimeout sets the per-write timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSyncer creates a syncer and starts its worker.
func NewSyncer(store interfaces.UserDocumentStore, logger *common.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		store:    store,
		logger:   logger,
		timeout:  DefaultTimeout,
		now:      time.Now,
		queue:    make(chan job, DefaultQueueSize),
		outcomes: make(chan Outcome, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()

	return s
}

// Outcomes returns the channel on which write results are published.
// Results are dropped when nobody drains the channel.
func (s *Syncer) Outcomes() <-chan Outcome {
	return s.outcomes
}

// Submit queues a document write and returns immediately.
func (s *Syncer) Submit(identity *models.Identity, holding models.Holding) {
	if identity == nil || identity.UserID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn().Str("ticker", holding.Ticker).Msg("User sync stopped, document write dropped")
		return
	}

	select {
	case s.queue <- job{identity: *identity, holding: holding}:
	default:
		s.logger.Warn().
			Str("user_id", identity.UserID).
			Str("ticker", holding.Ticker).
			Msg("User sync queue full, document write dropped")
	}
}

func (s *Syncer) run() {
	for j := range s.queue {
		s.process(j)
	}
}

func (s *Syncer) process(j job) {
	out := Outcome{UserID: j.identity.UserID, Ticker: j.holding.Ticker}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in user sync worker")
		}
		out.At = s.now()
		s.publish(out)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	doc := &models.UserHoldingDocument{
		UserID:    j.identity.UserID,
		Email:     j.identity.Email,
		Holding:   j.holding,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	}

	if err := s.store.PutUserHolding(ctx, doc); err != nil {
		out.Err = err
		s.logger.Warn().Err(err).
			Str("user_id", doc.UserID).
			Str("ticker", doc.Holding.Ticker).
			Msg("User document sync failed")
		return
	}

	s.logger.Debug().
		Str("user_id", doc.UserID).
		Str("ticker", doc.Holding.Ticker).
		Msg("User document synced")
}

func (s *Syncer) publish(out Outcome) {
	select {
	case s.outcomes <- out:
	default:
	}
}

// Close stops accepting writes and waits for queued ones to finish or ctx to expire.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("user sync drain: %w", ctx.Err())
	}
}
