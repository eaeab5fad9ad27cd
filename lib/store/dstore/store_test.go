package dstore

import (
	"context"
	"errors"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4"
	"testing"
	"time"
)

func newBusyTestStore(retries int) *raftStore {
	return &raftStore{
		shardID: 100,
		timeout: 10 * time.Millisecond,
		retries: retries,
		busy:    metrics.NewSet().NewCounter("busy_test_total"),
	}
}

func TestBusyFailsImmediatelyWithoutRetries(t *testing.T) {
	s := newBusyTestStore(0)

	calls := 0
	err := s.withBusyRetry("propose Set", func(ctx context.Context) error {
		calls++
		return dragonboat.ErrSystemBusy
	})

	if calls != 1 {
		t.Errorf("Expected exactly one attempt, got %d", calls)
	}
	if store.CodeOf(err) != store.RetCInternalError {
		t.Errorf("Expected internal store error, got %v", err)
	}
	if s.busy.Get() != 1 {
		t.Errorf("Expected busy counter 1, got %d", s.busy.Get())
	}
}

func TestBusyRetriesAreExtraAttempts(t *testing.T) {
	s := newBusyTestStore(2)

	calls := 0
	err := s.withBusyRetry("read", func(ctx context.Context) error {
		calls++
		return dragonboat.ErrSystemBusy
	})
	if err == nil || calls != 3 {
		t.Errorf("Expected 3 attempts and an error, got %d attempts, err %v", calls, err)
	}

	calls = 0
	err = s.withBusyRetry("read", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return dragonboat.ErrSystemBusy
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("Expected success on second attempt, got %d attempts, err %v", calls, err)
	}
}

func TestOtherErrorsAreNotRetried(t *testing.T) {
	s := newBusyTestStore(5)
	boom := errors.New("boom")

	calls := 0
	err := s.withBusyRetry("read", func(ctx context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("Expected boom after one attempt, got %v after %d", err, calls)
	}
}
