package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
	"github.com/staffbridge/hr-payroll/pkg/id"
	"github.com/staffbridge/hr-payroll/pkg/utils"
)

// taxBand is one slice of the progressive annual income tax schedule
type taxBand struct {
	width int64 // 0 means unbounded
	rate  int64 // percent
}

var annualTaxBands = []taxBand{
	{width: 300_000, rate: 7},
	{width: 300_000, rate: 11},
	{width: 500_000, rate: 15},
	{width: 500_000, rate: 19},
	{width: 1_600_000, rate: 21},
	{width: 0, rate: 24},
}

// PayrollRunResult summarises one payroll run
type PayrollRunResult struct {
	Period    string            `json:"period"`
	Generated int               `json:"generated"`
	Skipped   int               `json:"skipped"`
	Payslips  []*entity.Payslip `json:"payslips"`
}

// PayrollService computes and stores monthly payslips
type PayrollService interface {
	Run(ctx context.Context, actor workflow.Actor, period string) (*PayrollRunResult, error)
	GetPayslip(ctx context.Context, actor workflow.Actor, period string) (*entity.Payslip, error)
	ListByPeriod(ctx context.Context, actor workflow.Actor, period string) ([]*entity.Payslip, error)
	ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.Payslip, error)
}

type payrollServiceImpl struct {
	payslips       port.PayslipRepository
	employees      port.EmployeeRepository
	loans          port.LoanRepository
	notifier       port.Notifier
	pensionPercent int64
	logger         *zap.Logger
}

// NewPayrollService creates a new PayrollService
func NewPayrollService(
	payslips port.PayslipRepository,
	employees port.EmployeeRepository,
	loans port.LoanRepository,
	notifier port.Notifier,
	pensionPercent int64,
	logger *zap.Logger,
) PayrollService {
	return &payrollServiceImpl{
		payslips:       payslips,
		employees:      employees,
		loans:          loans,
		notifier:       notifier,
		pensionPercent: pensionPercent,
		logger:         logger,
	}
}

// AnnualTax computes the yearly income tax for an annual gross salary.
// The consolidated relief allowance and the pension contribution are
// subtracted before the progressive bands are applied.
func AnnualTax(annualGross, pensionPercent int64) int64 {
	relief := 200_000 + annualGross*20/100
	pension := annualGross * pensionPercent / 100

	taxable := annualGross - relief - pension
	if taxable <= 0 {
		return 0
	}

	var tax int64
	for _, band := range annualTaxBands {
		if band.width == 0 || taxable <= band.width {
			tax += taxable * band.rate / 100
			break
		}
		tax += band.width * band.rate / 100
		taxable -= band.width
	}
	return tax
}

// Run generates payslips for every active employee of the actor's company
// for the given period. Employees who already have a payslip for the
// period are skipped, so re-running a period is safe.
func (s *payrollServiceImpl) Run(ctx context.Context, actor workflow.Actor, period string) (*PayrollRunResult, error) {
	if err := utils.ValidatePeriod(period); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	emps, err := s.employees.ListActive(ctx, actor.Company)
	if err != nil {
		return nil, err
	}

	result := &PayrollRunResult{Period: period}
	for _, emp := range emps {
		if _, err := s.payslips.GetByEmployeeAndPeriod(ctx, emp.ID, period); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, port.ErrNotFound) {
			return nil, err
		}

		slip, err := s.generateFor(ctx, emp, period)
		if err != nil {
			return nil, fmt.Errorf("failed to generate payslip for %s: %w", emp.ID, err)
		}

		result.Generated++
		result.Payslips = append(result.Payslips, slip)
	}

	s.logger.Info("Payroll run completed",
		zap.String("company_id", actor.Company),
		zap.String("period", period),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *payrollServiceImpl) generateFor(ctx context.Context, emp *entity.Employee, period string) (*entity.Payslip, error) {
	gross := emp.AnnualSalary / 12
	pension := emp.AnnualSalary * s.pensionPercent / 100 / 12
	tax := AnnualTax(emp.AnnualSalary, s.pensionPercent) / 12

	loanDeduction, err := s.applyLoanDeductions(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	slip := &entity.Payslip{
		ID:            id.New(),
		CompanyID:     emp.CompanyID,
		EmployeeID:    emp.ID,
		EmployeeName:  emp.FullName(),
		Period:        period,
		GrossPay:      gross,
		Pension:       pension,
		Tax:           tax,
		LoanDeduction: loanDeduction,
		NetPay:        gross - pension - tax - loanDeduction,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.payslips.Create(ctx, slip); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, port.Notice{
		RecipientID: emp.ID,
		CompanyID:   emp.CompanyID,
		Kind:        entity.NotificationKindPayroll,
		Title:       "Payslip available",
		Message:     fmt.Sprintf("Your payslip for %s is ready. Net pay: %d.", period, slip.NetPay),
	})
	return slip, nil
}

// applyLoanDeductions sums this month's instalments over the employee's
// approved loans and advances each loan's repayment counter. The counter
// write is version-checked; a lost race is retried against a fresh read.
func (s *payrollServiceImpl) applyLoanDeductions(ctx context.Context, employeeID string) (int64, error) {
	loans, err := s.loans.ListActiveApproved(ctx, employeeID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, loan := range loans {
		for attempt := 0; attempt < maxDecideAttempts; attempt++ {
			if loan.OutstandingMonths() <= 0 {
				break
			}

			instalment := loan.MonthlyDeduction
			remaining := loan.Amount - loan.MonthlyDeduction*int64(loan.DeductionsMade)
			if remaining < instalment {
				instalment = remaining
			}

			loan.DeductionsMade++
			loan.UpdatedAt = time.Now().UTC()
			if err := s.loans.Update(ctx, loan); err != nil {
				if errors.Is(err, port.ErrVersionConflict) {
					fresh, ferr := s.loans.GetByID(ctx, loan.ID)
					if ferr != nil {
						return 0, ferr
					}
					loan = fresh
					continue
				}
				return 0, err
			}

			total += instalment
			break
		}
	}
	return total, nil
}

// GetPayslip retrieves the actor's own payslip for a period
func (s *payrollServiceImpl) GetPayslip(ctx context.Context, actor workflow.Actor, period string) (*entity.Payslip, error) {
	if err := utils.ValidatePeriod(period); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return s.payslips.GetByEmployeeAndPeriod(ctx, actor.ID, period)
}

// ListByPeriod retrieves all payslips of the actor's company for a period
func (s *payrollServiceImpl) ListByPeriod(ctx context.Context, actor workflow.Actor, period string) ([]*entity.Payslip, error) {
	if err := utils.ValidatePeriod(period); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return s.payslips.ListByPeriod(ctx, actor.Company, period)
}

// ListMine retrieves the actor's payslip history
func (s *payrollServiceImpl) ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.Payslip, error) {
	return s.payslips.ListByEmployee(ctx, actor.ID, limit, offset)
}
