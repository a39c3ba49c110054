package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

type sweeperLeaveStore struct {
	items map[string]*entity.LeaveRequest
}

func (s *sweeperLeaveStore) Create(_ context.Context, lr *entity.LeaveRequest) error {
	s.items[lr.ID] = lr
	return nil
}

func (s *sweeperLeaveStore) GetByID(_ context.Context, id string) (*entity.LeaveRequest, error) {
	lr, ok := s.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return lr, nil
}

func (s *sweeperLeaveStore) ListByEmployee(context.Context, string, int, int) ([]*entity.LeaveRequest, error) {
	return nil, nil
}

func (s *sweeperLeaveStore) ListPendingForStage(context.Context, string, workflow.Stage, int, int) ([]*entity.LeaveRequest, error) {
	return nil, nil
}

func (s *sweeperLeaveStore) ListPendingBefore(_ context.Context, cutoff time.Time, _ int) ([]*entity.LeaveRequest, error) {
	var out []*entity.LeaveRequest
	for _, lr := range s.items {
		if lr.Status == workflow.StatusPending && lr.CreatedAt.Before(cutoff) {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (s *sweeperLeaveStore) Update(_ context.Context, lr *entity.LeaveRequest) error {
	s.items[lr.ID] = lr
	return nil
}

func (s *sweeperLeaveStore) ApprovedDaysInYear(context.Context, string, int) (int, error) {
	return 0, nil
}

type sweeperLoanStore struct {
	items map[string]*entity.LoanRequest
}

func (s *sweeperLoanStore) Create(_ context.Context, lr *entity.LoanRequest) error {
	s.items[lr.ID] = lr
	return nil
}

func (s *sweeperLoanStore) GetByID(_ context.Context, id string) (*entity.LoanRequest, error) {
	lr, ok := s.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return lr, nil
}

func (s *sweeperLoanStore) ListByEmployee(context.Context, string, int, int) ([]*entity.LoanRequest, error) {
	return nil, nil
}

func (s *sweeperLoanStore) ListPendingForStage(context.Context, string, workflow.Stage, int, int) ([]*entity.LoanRequest, error) {
	return nil, nil
}

func (s *sweeperLoanStore) ListPendingBefore(_ context.Context, cutoff time.Time, _ int) ([]*entity.LoanRequest, error) {
	var out []*entity.LoanRequest
	for _, lr := range s.items {
		if lr.Status == workflow.StatusPending && lr.CreatedAt.Before(cutoff) {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (s *sweeperLoanStore) ListActiveApproved(context.Context, string) ([]*entity.LoanRequest, error) {
	return nil, nil
}

func (s *sweeperLoanStore) Update(_ context.Context, lr *entity.LoanRequest) error {
	s.items[lr.ID] = lr
	return nil
}

func TestSweepExpiresStalePendingRequests(t *testing.T) {
	now := time.Now().UTC()

	leaves := &sweeperLeaveStore{items: map[string]*entity.LeaveRequest{
		"stale": {
			ID:          "stale",
			ReviewState: workflow.ReviewState{Status: workflow.StatusPending, Stage: workflow.StageTeamLead},
			CreatedAt:   now.AddDate(0, 0, -40),
		},
		"fresh": {
			ID:          "fresh",
			ReviewState: workflow.ReviewState{Status: workflow.StatusPending, Stage: workflow.StageTeamLead},
			CreatedAt:   now.AddDate(0, 0, -2),
		},
		"settled": {
			ID:          "settled",
			ReviewState: workflow.ReviewState{Status: workflow.StatusApproved},
			CreatedAt:   now.AddDate(0, 0, -40),
		},
	}}
	loans := &sweeperLoanStore{items: map[string]*entity.LoanRequest{
		"old-loan": {
			ID:          "old-loan",
			ReviewState: workflow.ReviewState{Status: workflow.StatusPending, Stage: workflow.StageHR},
			CreatedAt:   now.AddDate(0, 0, -20),
		},
	}}

	sweeper := NewExpirySweeper(leaves, loans,
		30*24*time.Hour, 14*24*time.Hour, time.Hour, zap.NewNop())

	sweeper.Sweep(context.Background())

	assert.Equal(t, workflow.StatusExpired, leaves.items["stale"].Status)
	assert.Equal(t, workflow.StatusPending, leaves.items["fresh"].Status)
	assert.Equal(t, workflow.StatusApproved, leaves.items["settled"].Status)
	assert.Equal(t, workflow.StatusExpired, loans.items["old-loan"].Status)
}

func TestSweeperStartStop(t *testing.T) {
	sweeper := NewExpirySweeper(
		&sweeperLeaveStore{items: map[string]*entity.LeaveRequest{}},
		&sweeperLoanStore{items: map[string]*entity.LoanRequest{}},
		time.Hour, time.Hour, time.Hour, zap.NewNop())

	require.NoError(t, sweeper.Start(context.Background()))
	assert.Error(t, sweeper.Start(context.Background())) // double start refused
	sweeper.Stop()
	sweeper.Stop() // idempotent
}
