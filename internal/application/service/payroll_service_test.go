package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

type fakePayslipRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Payslip // keyed employeeID|period
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{items: make(map[string]*entity.Payslip)}
}

func (r *fakePayslipRepo) Create(_ context.Context, p *entity.Payslip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := p.EmployeeID + "|" + p.Period
	if _, ok := r.items[key]; ok {
		return port.ErrDuplicate
	}
	cp := *p
	r.items[key] = &cp
	return nil
}

func (r *fakePayslipRepo) GetByEmployeeAndPeriod(_ context.Context, employeeID, period string) (*entity.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[employeeID+"|"+period]
	if !ok {
		return nil, port.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePayslipRepo) ListByPeriod(_ context.Context, companyID, period string) ([]*entity.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payslip
	for _, p := range r.items {
		if p.CompanyID == companyID && p.Period == period {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePayslipRepo) ListByEmployee(_ context.Context, employeeID string, _, _ int) ([]*entity.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Payslip
	for _, p := range r.items {
		if p.EmployeeID == employeeID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestAnnualTax(t *testing.T) {
	tests := []struct {
		name        string
		annualGross int64
		want        int64
	}{
		// relief 920000 + pension 288000 leaves 2392000 taxable:
		// 21000 + 33000 + 75000 + 95000 + 792000*21% = 390320
		{"mid band", 3_600_000, 390_320},
		// relief alone exceeds the gross
		{"below relief threshold", 240_000, 0},
		{"zero gross", 0, 0},
		// taxable 7000000 reaches the top band:
		// 560000 for the first five bands + 3800000*24% = 1472000
		{"top band", 10_000_000, 1_472_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnnualTax(tt.annualGross, 8))
		})
	}
}

func newPayrollFixture(t *testing.T, loans port.LoanRepository) (PayrollService, *fakePayslipRepo, *recordingNotifier) {
	t.Helper()

	payslips := newFakePayslipRepo()
	employees := newFakeEmployeeRepo(
		&entity.Employee{
			ID: testEmployee.ID, CompanyID: "acme", FirstName: "Ada", LastName: "Okafor",
			AnnualSalary: 3_600_000, Active: true,
		},
		&entity.Employee{
			ID: "emp-2", CompanyID: "acme", FirstName: "Tunde", LastName: "Bello",
			AnnualSalary: 240_000, Active: true,
		},
		&entity.Employee{
			ID: "emp-gone", CompanyID: "acme", FirstName: "Left", LastName: "Company",
			AnnualSalary: 1_000_000, Active: false,
		},
	)
	notifier := &recordingNotifier{}

	svc := NewPayrollService(payslips, employees, loans, notifier, 8, zap.NewNop())
	return svc, payslips, notifier
}

func TestPayrollRunComputesPayslips(t *testing.T) {
	svc, _, notifier := newPayrollFixture(t, newFakeLoanRepo())
	ctx := context.Background()

	result, err := svc.Run(ctx, testHR, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated) // inactive employee excluded
	assert.Equal(t, 0, result.Skipped)

	slip, err := svc.GetPayslip(ctx, testEmployee, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, int64(300_000), slip.GrossPay)
	assert.Equal(t, int64(24_000), slip.Pension)
	assert.Equal(t, int64(32_526), slip.Tax) // 390320 / 12
	assert.Equal(t, int64(0), slip.LoanDeduction)
	assert.Equal(t, int64(243_474), slip.NetPay)
	assert.Equal(t, "Ada Okafor", slip.EmployeeName)

	// every paid employee is notified
	var payrollNotices int
	for _, n := range notifier.sent() {
		if n.Kind == entity.NotificationKindPayroll {
			payrollNotices++
		}
	}
	assert.Equal(t, 2, payrollNotices)
}

func TestPayrollRunIsIdempotentPerPeriod(t *testing.T) {
	svc, _, _ := newPayrollFixture(t, newFakeLoanRepo())
	ctx := context.Background()

	first, err := svc.Run(ctx, testHR, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Generated)

	second, err := svc.Run(ctx, testHR, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 2, second.Skipped)

	// a new period generates again
	third, err := svc.Run(ctx, testHR, "2026-09")
	require.NoError(t, err)
	assert.Equal(t, 2, third.Generated)
}

func TestPayrollRunDeductsApprovedLoans(t *testing.T) {
	loans := newFakeLoanRepo()
	loan := &entity.LoanRequest{
		ID:               "loan-1",
		CompanyID:        "acme",
		EmployeeID:       testEmployee.ID,
		Amount:           120_000,
		RepaymentMonths:  12,
		MonthlyDeduction: 10_000,
		ReviewState:      workflow.ReviewState{Status: workflow.StatusApproved},
	}
	require.NoError(t, loans.Create(context.Background(), loan))

	svc, _, _ := newPayrollFixture(t, loans)
	ctx := context.Background()

	_, err := svc.Run(ctx, testHR, "2026-08")
	require.NoError(t, err)

	slip, err := svc.GetPayslip(ctx, testEmployee, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), slip.LoanDeduction)
	assert.Equal(t, int64(233_474), slip.NetPay)

	// the repayment counter advanced
	stored, err := loans.GetByID(ctx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DeductionsMade)
	assert.Equal(t, 11, stored.OutstandingMonths())
}

func TestPayrollRunCapsFinalInstalment(t *testing.T) {
	// 100000 over 3 months deducts 33334 + 33334 + 33332
	loans := newFakeLoanRepo()
	loan := &entity.LoanRequest{
		ID:               "loan-2",
		CompanyID:        "acme",
		EmployeeID:       testEmployee.ID,
		Amount:           100_000,
		RepaymentMonths:  3,
		MonthlyDeduction: 33_334,
		DeductionsMade:   2,
		ReviewState:      workflow.ReviewState{Status: workflow.StatusApproved},
	}
	require.NoError(t, loans.Create(context.Background(), loan))

	svc, _, _ := newPayrollFixture(t, loans)
	ctx := context.Background()

	_, err := svc.Run(ctx, testHR, "2026-08")
	require.NoError(t, err)

	slip, err := svc.GetPayslip(ctx, testEmployee, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, int64(33_332), slip.LoanDeduction)

	stored, err := loans.GetByID(ctx, "loan-2")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.OutstandingMonths())
}

func TestPayrollRunRejectsBadPeriod(t *testing.T) {
	svc, _, _ := newPayrollFixture(t, newFakeLoanRepo())

	_, err := svc.Run(context.Background(), testHR, "August 2026")
	assert.ErrorIs(t, err, ErrValidation)
}
