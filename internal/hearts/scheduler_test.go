package hearts

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunOnceRechargesOnlyBelowCap(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("a", 2, 5)
	ledger.Put("b", 5, 5)
	ledger.Put("c", 5, 5)

	s := NewRechargeScheduler(ledger, 1, 5, time.Minute)
	if !s.RunOnce(context.Background()) {
		t.Fatal("sweep should have run")
	}

	for id, want := range map[string]int{"a": 3, "b": 5, "c": 5} {
		got, _ := ledger.Balance(context.Background(), id)
		if got != want {
			t.Errorf("user %s: expected %d hearts, got %d", id, want, got)
		}
	}
	if ledger.Writes("b") != 0 || ledger.Writes("c") != 0 {
		t.Error("capped users must receive no write")
	}
}

// blockingLedger parks BelowCap until released, to hold a sweep open.
type blockingLedger struct {
	*MemoryLedger
	entered chan struct{}
	release chan struct{}
}

func (l *blockingLedger) BelowCap(ctx context.Context, cap int) ([]Quota, error) {
	close(l.entered)
	<-l.release
	return l.MemoryLedger.BelowCap(ctx, cap)
}

func TestRunOnceIsSingleFlight(t *testing.T) {
	ledger := &blockingLedger{
		MemoryLedger: NewMemoryLedger(),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	ledger.Put("a", 1, 5)

	s := NewRechargeScheduler(ledger, 1, 5, time.Minute)

	done := make(chan bool)
	go func() {
		done <- s.RunOnce(context.Background())
	}()

	<-ledger.entered
	if s.RunOnce(context.Background()) {
		t.Error("overlapping sweep must be skipped, not queued")
	}

	close(ledger.release)
	if !<-done {
		t.Error("first sweep should have run")
	}
}

// failingLedger rejects recharges for one user id.
type failingLedger struct {
	*MemoryLedger
	failID string
}

func (l *failingLedger) Recharge(ctx context.Context, userID string, amount, cap int) (int, error) {
	if userID == l.failID {
		return 0, errors.New("store unavailable")
	}
	return l.MemoryLedger.Recharge(ctx, userID, amount, cap)
}

func TestRunOnceIsolatesPerUserFailures(t *testing.T) {
	ledger := &failingLedger{MemoryLedger: NewMemoryLedger(), failID: "broken"}
	ledger.Put("broken", 1, 5)
	ledger.Put("fine", 1, 5)

	s := NewRechargeScheduler(ledger, 1, 5, time.Minute)
	s.RunOnce(context.Background())

	got, _ := ledger.Balance(context.Background(), "fine")
	if got != 2 {
		t.Errorf("healthy user should still be recharged, got %d hearts", got)
	}
}

func TestRunOnceUsesDefaultCapWhenUnset(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("legacy", 1, 0)

	s := NewRechargeScheduler(ledger, 1, 5, time.Minute)
	s.RunOnce(context.Background())

	got, _ := ledger.Balance(context.Background(), "legacy")
	if got != 2 {
		t.Errorf("expected recharge against default cap, got %d hearts", got)
	}
}
