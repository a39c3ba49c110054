package entity

import "time"

// Payslip is the computed pay record for one employee and period
type Payslip struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	Period         string    `json:"period"` // YYYY-MM
	GrossPay       int64     `json:"gross_pay"`
	Pension        int64     `json:"pension"`
	Tax            int64     `json:"tax"`
	LoanDeduction  int64     `json:"loan_deduction"`
	NetPay         int64     `json:"net_pay"`
	CreatedAt      time.Time `json:"created_at"`
}
