package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
)

// PayslipRepository handles payslip database operations
type PayslipRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPayslipRepository creates a new payslip repository
func NewPayslipRepository(db *sql.DB, logger *zap.Logger) *PayslipRepository {
	return &PayslipRepository{
		db:     db,
		logger: logger,
	}
}

const payslipColumns = `id, company_id, employee_id, employee_name, period,
	gross_pay, pension, tax, loan_deduction, net_pay, created_at`

func scanPayslip(row interface{ Scan(...any) error }) (*entity.Payslip, error) {
	var p entity.Payslip
	err := row.Scan(
		&p.ID,
		&p.CompanyID,
		&p.EmployeeID,
		&p.EmployeeName,
		&p.Period,
		&p.GrossPay,
		&p.Pension,
		&p.Tax,
		&p.LoanDeduction,
		&p.NetPay,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a payslip; one per employee per period
func (r *PayslipRepository) Create(ctx context.Context, p *entity.Payslip) error {
	query := `
		INSERT INTO payslips (
			id, company_id, employee_id, employee_name, period,
			gross_pay, pension, tax, loan_deduction, net_pay, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.CompanyID, p.EmployeeID, p.EmployeeName, p.Period,
		p.GrossPay, p.Pension, p.Tax, p.LoanDeduction, p.NetPay, p.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create payslip", zap.Error(err))
		return fmt.Errorf("failed to create payslip: %w", err)
	}
	return nil
}

// GetByEmployeeAndPeriod retrieves one payslip
func (r *PayslipRepository) GetByEmployeeAndPeriod(ctx context.Context, employeeID, period string) (*entity.Payslip, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM payslips WHERE employee_id = ? AND period = ?", payslipColumns)

	p, err := scanPayslip(r.db.QueryRowContext(ctx, query, employeeID, period))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get payslip", zap.Error(err))
		return nil, fmt.Errorf("failed to get payslip: %w", err)
	}
	return p, nil
}

// ListByPeriod retrieves a company's payslips for one period
func (r *PayslipRepository) ListByPeriod(ctx context.Context, companyID, period string) ([]*entity.Payslip, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM payslips
		WHERE company_id = ? AND period = ?
		ORDER BY employee_name`, payslipColumns)

	return r.queryMany(ctx, query, companyID, period)
}

// ListByEmployee retrieves an employee's payslips, newest first
func (r *PayslipRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.Payslip, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM payslips
		WHERE employee_id = ?
		ORDER BY period DESC
		LIMIT ? OFFSET ?`, payslipColumns)

	return r.queryMany(ctx, query, employeeID, limit, offset)
}

func (r *PayslipRepository) queryMany(ctx context.Context, query string, args ...any) ([]*entity.Payslip, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query payslips", zap.Error(err))
		return nil, fmt.Errorf("failed to query payslips: %w", err)
	}
	defer rows.Close()

	var payslips []*entity.Payslip
	for rows.Next() {
		p, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		payslips = append(payslips, p)
	}
	return payslips, rows.Err()
}
