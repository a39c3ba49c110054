package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

func newLoanFixture(t *testing.T) (LoanService, *fakeLoanRepo, *recordingNotifier) {
	t.Helper()

	loans := newFakeLoanRepo()
	directory := &fakeDirectory{byRole: map[string]*entity.Employee{
		entity.RoleTeamLead: {ID: testTeamLead.ID, CompanyID: "acme"},
		entity.RoleHR:       {ID: testHR.ID, CompanyID: "acme"},
		entity.RoleMD:       {ID: testMD.ID, CompanyID: "acme"},
	}}
	notifier := &recordingNotifier{}

	svc := NewLoanService(loans, directory, notifier, zap.NewNop())
	return svc, loans, notifier
}

func TestMonthlyDeduction(t *testing.T) {
	tests := []struct {
		amount int64
		months int
		want   int64
	}{
		{120_000, 12, 10_000},
		{100_000, 3, 33_334}, // ceiling, never under-collects
		{1, 12, 1},
		{500_000, 1, 500_000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MonthlyDeduction(tt.amount, tt.months))
	}
}

func TestLoanFullApprovalChain(t *testing.T) {
	svc, _, notifier := newLoanFixture(t)
	ctx := context.Background()

	lr, err := svc.Create(ctx, testEmployee, CreateLoanInput{
		Amount:          120_000,
		RepaymentMonths: 12,
		Purpose:         "laptop",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), lr.MonthlyDeduction)
	assert.Equal(t, workflow.StageTeamLead, lr.Stage)

	for _, actor := range []workflow.Actor{testTeamLead, testHR, testMD} {
		lr, err = svc.Decide(ctx, actor, lr.ID, workflow.DecisionApproved, "")
		require.NoError(t, err)
	}

	assert.Equal(t, workflow.StatusApproved, lr.Status)
	require.Len(t, lr.Trail, 3)
	assert.Equal(t, 12, lr.OutstandingMonths())

	notices := notifier.sent()
	last := notices[len(notices)-1]
	assert.Equal(t, testEmployee.ID, last.RecipientID)
	assert.Contains(t, last.Message, "10000")
}

func TestLoanRejectionAtFirstStage(t *testing.T) {
	svc, _, _ := newLoanFixture(t)
	ctx := context.Background()

	lr, err := svc.Create(ctx, testEmployee, CreateLoanInput{Amount: 50_000, RepaymentMonths: 5})
	require.NoError(t, err)

	lr, err = svc.Decide(ctx, testTeamLead, lr.ID, workflow.DecisionRejected, "too soon after last loan")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, lr.Status)

	_, err = svc.Decide(ctx, testHR, lr.ID, workflow.DecisionApproved, "")
	assert.ErrorIs(t, err, workflow.ErrAlreadyReviewed)
}

func TestLoanOtherCompanyIsInvisible(t *testing.T) {
	svc, _, _ := newLoanFixture(t)
	ctx := context.Background()

	lr, err := svc.Create(ctx, testEmployee, CreateLoanInput{Amount: 50_000, RepaymentMonths: 5})
	require.NoError(t, err)

	outsider := workflow.Actor{ID: "tl-9", Role: entity.RoleTeamLead, Department: "engineering", Company: "globex"}

	_, err = svc.Decide(ctx, outsider, lr.ID, workflow.DecisionApproved, "")
	assert.ErrorIs(t, err, port.ErrNotFound)

	_, err = svc.Get(ctx, outsider, lr.ID)
	assert.ErrorIs(t, err, port.ErrNotFound)

	fresh, err := svc.Get(ctx, testEmployee, lr.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageTeamLead, fresh.Stage)
	assert.Empty(t, fresh.Trail)
}

func TestLoanCreateValidation(t *testing.T) {
	svc, _, _ := newLoanFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, testEmployee, CreateLoanInput{Amount: 0, RepaymentMonths: 6})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, testEmployee, CreateLoanInput{Amount: -5, RepaymentMonths: 6})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, testEmployee, CreateLoanInput{Amount: 10_000, RepaymentMonths: 0})
	assert.ErrorIs(t, err, ErrValidation)
}
