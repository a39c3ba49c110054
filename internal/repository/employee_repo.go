package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
)

// EmployeeRepository handles employee database operations
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

const employeeColumns = `id, company_id, department, first_name, last_name, email,
	password_hash, role, annual_salary, bank_name, bank_account,
	leave_entitlement_days, active, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*entity.Employee, error) {
	var e entity.Employee
	err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.Department,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.PasswordHash,
		&e.Role,
		&e.AnnualSalary,
		&e.BankName,
		&e.BankAccount,
		&e.LeaveEntitlementDays,
		&e.Active,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new employee
func (r *EmployeeRepository) Create(ctx context.Context, e *entity.Employee) error {
	query := `
		INSERT INTO employees (
			id, company_id, department, first_name, last_name, email,
			password_hash, role, annual_salary, bank_name, bank_account,
			leave_entitlement_days, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.CompanyID, e.Department, e.FirstName, e.LastName, e.Email,
		e.PasswordHash, e.Role, e.AnnualSalary, e.BankName, e.BankAccount,
		e.LeaveEntitlementDays, e.Active, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create employee", zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// GetByID retrieves an employee by id
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = ?", employeeColumns)

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get employee", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// GetByEmail retrieves an employee by email
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE email = ?", employeeColumns)

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get employee by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// List retrieves employees for a company with pagination
func (r *EmployeeRepository) List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Employee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, employeeColumns)

	rows, err := r.db.QueryContext(ctx, query, companyID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*entity.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// ListActive retrieves all active employees for a company
func (r *EmployeeRepository) ListActive(ctx context.Context, companyID string) ([]*entity.Employee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE company_id = ? AND active = 1
		ORDER BY last_name, first_name`, employeeColumns)

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list active employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []*entity.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// Update saves mutable employee fields
func (r *EmployeeRepository) Update(ctx context.Context, e *entity.Employee) error {
	query := `
		UPDATE employees SET
			department = ?, first_name = ?, last_name = ?, email = ?,
			role = ?, annual_salary = ?, bank_name = ?, bank_account = ?,
			leave_entitlement_days = ?, active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		e.Department, e.FirstName, e.LastName, e.Email,
		e.Role, e.AnnualSalary, e.BankName, e.BankAccount,
		e.LeaveEntitlementDays, e.Active, time.Now().UTC(), e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update employee", zap.String("id", e.ID), zap.Error(err))
		return fmt.Errorf("failed to update employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes an employee; records are retained for audit
func (r *EmployeeRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE employees SET active = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		r.logger.Error("Failed to deactivate employee", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrNotFound
	}
	return nil
}

// FindApprover returns an active holder of the role within the scope.
// Department is matched first; company-wide roles (hr, md) fall back to any
// department in the company.
func (r *EmployeeRepository) FindApprover(ctx context.Context, role string, scope port.Scope) (*entity.Employee, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE company_id = ? AND role = ? AND active = 1
		ORDER BY CASE WHEN department = ? THEN 0 ELSE 1 END, created_at
		LIMIT 1`, employeeColumns)

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, scope.CompanyID, role, scope.Department))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to find approver", zap.String("role", role), zap.Error(err))
		return nil, fmt.Errorf("failed to find approver: %w", err)
	}
	return e, nil
}
