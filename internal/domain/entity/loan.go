package entity

import (
	"time"

	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// LoanRequest is an approvable request for a salary-deducted loan
type LoanRequest struct {
	ID              string `json:"id"`
	CompanyID       string `json:"company_id"`
	Department      string `json:"department"`
	EmployeeID      string `json:"employee_id"`
	Amount          int64  `json:"amount"`
	RepaymentMonths int    `json:"repayment_months"`
	// MonthlyDeduction = ceil(Amount / RepaymentMonths), fixed at submission
	MonthlyDeduction int64  `json:"monthly_deduction"`
	Purpose          string `json:"purpose,omitempty"`
	// DeductionsMade counts payroll runs that have taken the monthly deduction
	DeductionsMade int `json:"deductions_made"`

	workflow.ReviewState

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OutstandingMonths returns how many deductions remain
func (l *LoanRequest) OutstandingMonths() int {
	remaining := l.RepaymentMonths - l.DeductionsMade
	if remaining < 0 {
		return 0
	}
	return remaining
}
