package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepFacade exposes the subset of application functionality required by
// the sweeper.
type SweepFacade interface {
	ExpireStaleQuotations(ctx context.Context, limit int) (int, error)
	ExpireStaleOverrides(ctx context.Context, limit int) (int, error)
}

// ExpirySweeper periodically expires quotations past their validity deadline
// and approved overrides past their expiry. Both sweeps go through the same
// transition path as user-submitted events, so races with concurrent actors
// resolve through the optimistic lock.
type ExpirySweeper struct {
	facade    SweepFacade
	interval  time.Duration
	batchSize int
	logger    *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpirySweeper constructs the sweeper.
func NewExpirySweeper(facade SweepFacade, interval time.Duration, batchSize int, logger *slog.Logger) *ExpirySweeper {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ExpirySweeper{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Start launches background sweeping.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop waits for the sweep loop to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ExpirySweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	if n, err := s.facade.ExpireStaleQuotations(ctx, s.batchSize); err != nil {
		s.logger.Error("quotation sweep failed", slog.String("error", err.Error()))
	} else if n > 0 {
		s.logger.Info("quotations expired", slog.Int("count", n))
	}

	if n, err := s.facade.ExpireStaleOverrides(ctx, s.batchSize); err != nil {
		s.logger.Error("override sweep failed", slog.String("error", err.Error()))
	} else if n > 0 {
		s.logger.Info("overrides expired", slog.Int("count", n))
	}
}
