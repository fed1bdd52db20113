package hearts

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestTryConsumeDecrements(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("u1", 3, 5)

	balance, err := ledger.TryConsume(context.Background(), "u1")
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if balance != 2 {
		t.Errorf("expected balance 2, got %d", balance)
	}
}

func TestTryConsumeExhausted(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("u1", 0, 5)

	_, err := ledger.TryConsume(context.Background(), "u1")
	if !errors.Is(err, ErrNoHearts) {
		t.Errorf("expected ErrNoHearts, got %v", err)
	}

	balance, _ := ledger.Balance(context.Background(), "u1")
	if balance != 0 {
		t.Errorf("balance must stay 0, got %d", balance)
	}
}

func TestTryConsumeUnknownUser(t *testing.T) {
	ledger := NewMemoryLedger()

	_, err := ledger.TryConsume(context.Background(), "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRechargeClampsToCap(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("u1", 4, 5)

	balance, err := ledger.Recharge(context.Background(), "u1", 3, 5)
	if err != nil {
		t.Fatalf("recharge failed: %v", err)
	}
	if balance != 5 {
		t.Errorf("expected balance clamped to 5, got %d", balance)
	}
}

func TestRechargeAtCapIssuesNoWrite(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("u1", 5, 5)

	balance, err := ledger.Recharge(context.Background(), "u1", 1, 5)
	if err != nil {
		t.Fatalf("recharge failed: %v", err)
	}
	if balance != 5 {
		t.Errorf("expected balance 5, got %d", balance)
	}
	if writes := ledger.Writes("u1"); writes != 0 {
		t.Errorf("at-cap recharge must not write, got %d writes", writes)
	}
}

func TestConcurrentConsumeSingleHeart(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("u1", 1, 5)

	const callers = 20
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.TryConsume(context.Background(), "u1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, exhausted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNoHearts):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if exhausted != callers-1 {
		t.Errorf("expected %d exhausted results, got %d", callers-1, exhausted)
	}

	balance, _ := ledger.Balance(context.Background(), "u1")
	if balance != 0 {
		t.Errorf("final balance must be 0, got %d", balance)
	}
}

func TestBalanceStaysWithinBoundsUnderMixedLoad(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("u1", 3, 5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ledger.TryConsume(context.Background(), "u1")
		}()
		go func() {
			defer wg.Done()
			ledger.Recharge(context.Background(), "u1", 1, 5)
		}()
	}
	wg.Wait()

	balance, err := ledger.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance < 0 || balance > 5 {
		t.Errorf("balance %d escaped [0, 5]", balance)
	}
}

func TestBelowCapEnumeration(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put("low", 2, 5)
	ledger.Put("full", 5, 5)

	quotas, err := ledger.BelowCap(context.Background(), 5)
	if err != nil {
		t.Fatalf("below-cap scan failed: %v", err)
	}
	if len(quotas) != 1 || quotas[0].UserID != "low" {
		t.Errorf("expected only the low user, got %+v", quotas)
	}
}
