package hearts

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"uet-duck-server/internal/logger"
)

// RechargeScheduler raises balances toward their cap on a fixed period,
// independent of request traffic. Ticks are single-flight: if a run overlaps
// the next firing, that firing is skipped rather than queued, so two batches
// never race on the same users.
type RechargeScheduler struct {
	ledger     Ledger
	amount     int
	defaultCap int
	interval   time.Duration
	scheduler  *gocron.Scheduler
	running    atomic.Bool
}

func NewRechargeScheduler(ledger Ledger, amount, defaultCap int, interval time.Duration) *RechargeScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &RechargeScheduler{
		ledger:     ledger,
		amount:     amount,
		defaultCap: defaultCap,
		interval:   interval,
		scheduler:  s,
	}
}

// Start schedules the periodic job and fires one run immediately.
func (s *RechargeScheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).
		Tag("hearts-recharge").
		SingletonMode().
		StartImmediately().
		Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			s.RunOnce(ctx)
		})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logger.Info("Hearts recharge scheduler started",
		"interval", s.interval.String(), "amount", s.amount, "cap", s.defaultCap)
	return nil
}

// Stop halts the periodic job. An in-flight run finishes on its own.
func (s *RechargeScheduler) Stop() {
	s.scheduler.Stop()
}

// RunOnce performs a single recharge sweep. Per-user failures are logged and
// do not abort the rest of the batch; the whole sweep simply re-runs at the
// next tick. Returns false if another sweep was still in flight.
func (s *RechargeScheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn("Recharge sweep still running, skipping this tick")
		return false
	}
	defer s.running.Store(false)

	quotas, err := s.ledger.BelowCap(ctx, s.defaultCap)
	if err != nil {
		logger.Error("Recharge sweep failed to enumerate users", "error", err.Error())
		return true
	}
	if len(quotas) == 0 {
		return true
	}

	recharged := 0
	for _, q := range quotas {
		cap := q.MaxHearts
		if cap <= 0 {
			cap = s.defaultCap
		}

		if _, err := s.ledger.Recharge(ctx, q.UserID, s.amount, cap); err != nil {
			logger.Error("Failed to recharge hearts", "user_id", q.UserID, "error", err.Error())
			continue
		}
		recharged++
	}

	logger.Info("Recharged hearts", "users", recharged, "amount", s.amount)
	return true
}
