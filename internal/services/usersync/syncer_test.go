package usersync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
)

type mockDocStore struct {
	mu    sync.Mutex
	docs  []models.UserHoldingDocument
	err   error
	block chan struct{}
}

func (m *mockDocStore) PutUserHolding(ctx context.Context, doc *models.UserHoldingDocument) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *mockDocStore) Close(_ context.Context) error { return nil }

func waitOutcome(t *testing.T, s *Syncer) Outcome {
	t.Helper()
	select {
	case out := <-s.Outcomes():
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync outcome")
		return Outcome{}
	}
}

func TestSubmit_WritesDocument(t *testing.T) {
	store := &mockDocStore{}
	s := NewSyncer(store, common.NewSilentLogger())
	defer s.Close(context.Background())

	s.Submit(&models.Identity{UserID: "uid-1", Email: "a@example.com"}, models.Holding{Ticker: "9432", Shares: 100})

	out := waitOutcome(t, s)
	assert.NoError(t, out.Err)
	assert.Equal(t, "uid-1", out.UserID)
	assert.Equal(t, "9432", out.Ticker)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.docs, 1)
	assert.Equal(t, "a@example.com", store.docs[0].Email)
	assert.Equal(t, 100, store.docs[0].Holding.Shares)
	assert.NotEmpty(t, store.docs[0].UpdatedAt)
}

func TestSubmit_FailureIsReportedNotRaised(t *testing.T) {
	store := &mockDocStore{err: errors.New("db down")}
	s := NewSyncer(store, common.NewSilentLogger())
	defer s.Close(context.Background())

	s.Submit(&models.Identity{UserID: "uid-1"}, models.Holding{Ticker: "7203"})

	out := waitOutcome(t, s)
	assert.EqualError(t, out.Err, "db down")
}

func TestSubmit_TimeoutBoundsWrite(t *testing.T) {
	store := &mockDocStore{block: make(chan struct{})}
	s := NewSyncer(store, common.NewSilentLogger(), WithTimeout(20*time.Millisecond))
	defer s.Close(context.Background())

	s.Submit(&models.Identity{UserID: "uid-1"}, models.Holding{Ticker: "7203"})

	out := waitOutcome(t, s)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestSubmit_DoesNotBlockWhenQueueFull(t *testing.T) {
	store := &mockDocStore{block: make(chan struct{})}
	s := NewSyncer(store, common.NewSilentLogger(), WithQueueSize(1), WithTimeout(time.Minute))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			s.Submit(&models.Identity{UserID: "uid"}, models.Holding{Ticker: "t"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(store.block)
	require.NoError(t, s.Close(context.Background()))
}

func TestSubmit_IgnoresAnonymous(t *testing.T) {
	store := &mockDocStore{}
	s := NewSyncer(store, common.NewSilentLogger())

	s.Submit(nil, models.Holding{Ticker: "7203"})
	s.Submit(&models.Identity{}, models.Holding{Ticker: "7203"})
	require.NoError(t, s.Close(context.Background()))

	assert.Empty(t, store.docs)
}

func TestClose_DrainsAndRejects(t *testing.T) {
	store := &mockDocStore{}
	s := NewSyncer(store, common.NewSilentLogger())

	s.Submit(&models.Identity{UserID: "u"}, models.Holding{Ticker: "1"})
	require.NoError(t, s.Close(context.Background()))
	require.NoError(t, s.Close(context.Background()), "second close is a no-op")

	s.Submit(&models.Identity{UserID: "u"}, models.Holding{Ticker: "2"})

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.docs, 1)
	assert.Equal(t, "1", store.docs[0].Holding.Ticker)
}
