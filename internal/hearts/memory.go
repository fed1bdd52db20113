package hearts

import (
	"context"
	"sync"
)

// MemoryLedger is an in-memory ledger with the same conditional-update
// semantics as MongoLedger. It backs the tests and local development without
// a database.
type MemoryLedger struct {
	mu     sync.Mutex
	order  []string
	users  map[string]*memoryAccount
	writes map[string]int
}

type memoryAccount struct {
	hearts    int
	maxHearts int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		users:  make(map[string]*memoryAccount),
		writes: make(map[string]int),
	}
}

// Put creates or resets an account.
func (l *MemoryLedger) Put(userID string, hearts, maxHearts int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; !ok {
		l.order = append(l.order, userID)
	}
	l.users[userID] = &memoryAccount{hearts: hearts, maxHearts: maxHearts}
}

// Writes reports how many balance mutations an account has received. Lets
// tests assert that at-cap recharges issue no write.
func (l *MemoryLedger) Writes(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes[userID]
}

func (l *MemoryLedger) TryConsume(ctx context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	if account.hearts <= 0 {
		return 0, ErrNoHearts
	}

	account.hearts--
	l.writes[userID]++
	return account.hearts, nil
}

func (l *MemoryLedger) Recharge(ctx context.Context, userID string, amount, cap int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	if account.hearts >= cap {
		return account.hearts, nil
	}

	next := account.hearts + amount
	if next > cap {
		next = cap
	}
	account.hearts = next
	l.writes[userID]++
	return account.hearts, nil
}

func (l *MemoryLedger) Balance(ctx context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	return account.hearts, nil
}

func (l *MemoryLedger) BelowCap(ctx context.Context, cap int) ([]Quota, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var quotas []Quota
	for _, id := range l.order {
		account := l.users[id]
		if account.hearts < cap {
			quotas = append(quotas, Quota{
				UserID:    id,
				Hearts:    account.hearts,
				MaxHearts: account.maxHearts,
			})
		}
	}
	return quotas, nil
}
