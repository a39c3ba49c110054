package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// LoanRepository handles loan request database operations
type LoanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *sql.DB, logger *zap.Logger) *LoanRepository {
	return &LoanRepository{
		db:     db,
		logger: logger,
	}
}

const loanColumns = `id, company_id, department, employee_id, amount,
	repayment_months, monthly_deduction, purpose, deductions_made, status,
	review_level, review_trail, version, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*entity.LoanRequest, error) {
	var lr entity.LoanRequest
	var trail []byte

	err := row.Scan(
		&lr.ID,
		&lr.CompanyID,
		&lr.Department,
		&lr.EmployeeID,
		&lr.Amount,
		&lr.RepaymentMonths,
		&lr.MonthlyDeduction,
		&lr.Purpose,
		&lr.DeductionsMade,
		&lr.Status,
		&lr.Stage,
		&trail,
		&lr.Version,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(trail) > 0 {
		if err := json.Unmarshal(trail, &lr.Trail); err != nil {
			return nil, fmt.Errorf("failed to decode review trail: %w", err)
		}
	}
	return &lr, nil
}

// Create inserts a new loan request
func (r *LoanRepository) Create(ctx context.Context, lr *entity.LoanRequest) error {
	trail, err := json.Marshal(lr.Trail)
	if err != nil {
		return fmt.Errorf("failed to encode review trail: %w", err)
	}

	query := `
		INSERT INTO loan_requests (
			id, company_id, department, employee_id, amount,
			repayment_months, monthly_deduction, purpose, deductions_made,
			status, review_level, review_trail, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		lr.ID, lr.CompanyID, lr.Department, lr.EmployeeID, lr.Amount,
		lr.RepaymentMonths, lr.MonthlyDeduction, lr.Purpose, lr.DeductionsMade,
		lr.Status, lr.Stage, trail, lr.Version, lr.CreatedAt, lr.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create loan request", zap.Error(err))
		return fmt.Errorf("failed to create loan request: %w", err)
	}
	return nil
}

// GetByID retrieves a loan request by id
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*entity.LoanRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM loan_requests WHERE id = ?", loanColumns)

	lr, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get loan request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get loan request: %w", err)
	}
	return lr, nil
}

// ListByEmployee retrieves an employee's loan requests, newest first
func (r *LoanRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.LoanRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loan_requests
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, loanColumns)

	return r.queryMany(ctx, query, employeeID, limit, offset)
}

// ListPendingForStage retrieves pending requests waiting at a review stage
func (r *LoanRepository) ListPendingForStage(ctx context.Context, companyID string, stage workflow.Stage, limit, offset int) ([]*entity.LoanRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loan_requests
		WHERE company_id = ? AND status = ? AND review_level = ?
		ORDER BY created_at
		LIMIT ? OFFSET ?`, loanColumns)

	return r.queryMany(ctx, query, companyID, workflow.StatusPending, stage, limit, offset)
}

// ListPendingBefore retrieves pending requests created before the cutoff
func (r *LoanRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.LoanRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loan_requests
		WHERE status = ? AND created_at < ?
		ORDER BY created_at
		LIMIT ?`, loanColumns)

	return r.queryMany(ctx, query, workflow.StatusPending, cutoff, limit)
}

// ListActiveApproved retrieves approved loans still being repaid, used by payroll
func (r *LoanRepository) ListActiveApproved(ctx context.Context, employeeID string) ([]*entity.LoanRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loan_requests
		WHERE employee_id = ? AND status = ? AND deductions_made < repayment_months
		ORDER BY created_at`, loanColumns)

	return r.queryMany(ctx, query, employeeID, workflow.StatusApproved)
}

func (r *LoanRepository) queryMany(ctx context.Context, query string, args ...any) ([]*entity.LoanRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query loan requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query loan requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.LoanRequest
	for rows.Next() {
		lr, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// Update performs a version-checked write
func (r *LoanRepository) Update(ctx context.Context, lr *entity.LoanRequest) error {
	trail, err := json.Marshal(lr.Trail)
	if err != nil {
		return fmt.Errorf("failed to encode review trail: %w", err)
	}

	query := `
		UPDATE loan_requests SET
			status = ?, review_level = ?, review_trail = ?, deductions_made = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		lr.Status, lr.Stage, trail, lr.DeductionsMade, lr.UpdatedAt, lr.ID, lr.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update loan request", zap.String("id", lr.ID), zap.Error(err))
		return fmt.Errorf("failed to update loan request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}

	lr.Version++
	return nil
}
