package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inkasso/backend/internal/infrastructure/config"
)

// DebtorReconciler repairs drifted debtor aggregates and reports how many
// records it corrected
type DebtorReconciler interface {
	Reconcile(ctx context.Context) (int64, error)
}

// ReconciliationScheduler periodically runs the debtor aggregate
// reconciliation. A corrected count above zero means a case mutation
// bypassed the transactional unit of work and deserves investigation.
type ReconciliationScheduler struct {
	config     config.ReconciliationConfig
	reconciler DebtorReconciler
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReconciliationScheduler creates a new ReconciliationScheduler
func NewReconciliationScheduler(cfg config.ReconciliationConfig, reconciler DebtorReconciler, logger *zap.Logger) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		config:     cfg,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start launches the periodic reconciliation loop
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reconciliation scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish
func (s *ReconciliationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce triggers a single reconciliation outside the schedule
func (s *ReconciliationScheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	corrected, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		s.logger.Error("Debtor reconciliation failed", zap.Error(err))
		return
	}

	if corrected > 0 {
		s.logger.Warn("Debtor aggregates drifted and were corrected",
			zap.Int64("corrected", corrected),
			zap.Duration("duration", time.Since(start)),
		)
		return
	}

	s.logger.Debug("Debtor aggregates consistent",
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *ReconciliationScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
