package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// ExpirySweeper periodically expires leave and loan requests that have sat
// unreviewed past their cutoff. Appraisals never expire; their revision loop
// keeps them live indefinitely.
type ExpirySweeper struct {
	leaves port.LeaveRepository
	loans  port.LoanRepository
	logger *zap.Logger

	leaveExpiry   time.Duration
	loanExpiry    time.Duration
	sweepInterval time.Duration
	batchSize     int

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(
	leaves port.LeaveRepository,
	loans port.LoanRepository,
	leaveExpiry, loanExpiry, sweepInterval time.Duration,
	logger *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		leaves:        leaves,
		loans:         loans,
		logger:        logger,
		leaveExpiry:   leaveExpiry,
		loanExpiry:    loanExpiry,
		sweepInterval: sweepInterval,
		batchSize:     100,
	}
}

// Start starts the sweep loop
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("expiry sweeper is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true

	s.logger.Info("ExpirySweeper started",
		zap.Duration("sweep_interval", s.sweepInterval),
		zap.Duration("leave_expiry", s.leaveExpiry),
		zap.Duration("loan_expiry", s.loanExpiry))

	go s.sweepLoop()

	return nil
}

// Stop stops the sweep loop
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
	}

	s.logger.Info("ExpirySweeper stopped")
}

// Name returns the worker name for identification
func (s *ExpirySweeper) Name() string {
	return "ExpirySweeper"
}

func (s *ExpirySweeper) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	// Sweep immediately on start
	s.Sweep(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.ctx)
		}
	}
}

// Sweep runs one expiry pass over both request kinds
func (s *ExpirySweeper) Sweep(ctx context.Context) {
	now := time.Now().UTC()

	expired := s.sweepLeave(ctx, now)
	expired += s.sweepLoans(ctx, now)

	if expired > 0 {
		s.logger.Info("Expiry sweep completed", zap.Int("expired", expired))
	}
}

func (s *ExpirySweeper) sweepLeave(ctx context.Context, now time.Time) int {
	requests, err := s.leaves.ListPendingBefore(ctx, now.Add(-s.leaveExpiry), s.batchSize)
	if err != nil {
		s.logger.Error("Failed to list stale leave requests", zap.Error(err))
		return 0
	}

	expired := 0
	for _, lr := range requests {
		lr.Status = workflow.StatusExpired
		lr.UpdatedAt = now
		if err := s.leaves.Update(ctx, lr); err != nil {
			// a concurrent decision beat the sweep; leave it alone
			if errors.Is(err, port.ErrVersionConflict) {
				continue
			}
			s.logger.Error("Failed to expire leave request",
				zap.String("id", lr.ID),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired
}

func (s *ExpirySweeper) sweepLoans(ctx context.Context, now time.Time) int {
	requests, err := s.loans.ListPendingBefore(ctx, now.Add(-s.loanExpiry), s.batchSize)
	if err != nil {
		s.logger.Error("Failed to list stale loan requests", zap.Error(err))
		return 0
	}

	expired := 0
	for _, lr := range requests {
		lr.Status = workflow.StatusExpired
		lr.UpdatedAt = now
		if err := s.loans.Update(ctx, lr); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				continue
			}
			s.logger.Error("Failed to expire loan request",
				zap.String("id", lr.ID),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired
}
