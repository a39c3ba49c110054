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

// LeaveRepository handles leave request database operations
type LeaveRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(db *sql.DB, logger *zap.Logger) *LeaveRepository {
	return &LeaveRepository{
		db:     db,
		logger: logger,
	}
}

const leaveColumns = `id, company_id, department, employee_id, type, start_date,
	end_date, days, reason, status, review_level, review_trail, version,
	created_at, updated_at`

func scanLeave(row interface{ Scan(...any) error }) (*entity.LeaveRequest, error) {
	var lr entity.LeaveRequest
	var trail []byte

	err := row.Scan(
		&lr.ID,
		&lr.CompanyID,
		&lr.Department,
		&lr.EmployeeID,
		&lr.Type,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Days,
		&lr.Reason,
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

// Create inserts a new leave request
func (r *LeaveRepository) Create(ctx context.Context, lr *entity.LeaveRequest) error {
	trail, err := json.Marshal(lr.Trail)
	if err != nil {
		return fmt.Errorf("failed to encode review trail: %w", err)
	}

	query := `
		INSERT INTO leave_requests (
			id, company_id, department, employee_id, type, start_date,
			end_date, days, reason, status, review_level, review_trail,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		lr.ID, lr.CompanyID, lr.Department, lr.EmployeeID, lr.Type, lr.StartDate,
		lr.EndDate, lr.Days, lr.Reason, lr.Status, lr.Stage, trail,
		lr.Version, lr.CreatedAt, lr.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create leave request", zap.Error(err))
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

// GetByID retrieves a leave request by id
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*entity.LeaveRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM leave_requests WHERE id = ?", leaveColumns)

	lr, err := scanLeave(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get leave request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// ListByEmployee retrieves an employee's leave requests, newest first
func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.LeaveRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leave_requests
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, leaveColumns)

	return r.queryMany(ctx, query, employeeID, limit, offset)
}

// ListPendingForStage retrieves pending requests waiting at a review stage
func (r *LeaveRepository) ListPendingForStage(ctx context.Context, companyID string, stage workflow.Stage, limit, offset int) ([]*entity.LeaveRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leave_requests
		WHERE company_id = ? AND status = ? AND review_level = ?
		ORDER BY created_at
		LIMIT ? OFFSET ?`, leaveColumns)

	return r.queryMany(ctx, query, companyID, workflow.StatusPending, stage, limit, offset)
}

// ListPendingBefore retrieves pending requests created before the cutoff,
// used by the expiry sweeper
func (r *LeaveRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.LeaveRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM leave_requests
		WHERE status = ? AND created_at < ?
		ORDER BY created_at
		LIMIT ?`, leaveColumns)

	return r.queryMany(ctx, query, workflow.StatusPending, cutoff, limit)
}

func (r *LeaveRepository) queryMany(ctx context.Context, query string, args ...any) ([]*entity.LeaveRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query leave requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// Update performs a version-checked write. The WHERE clause includes the
// version read by the caller; losing the race yields ErrVersionConflict.
func (r *LeaveRepository) Update(ctx context.Context, lr *entity.LeaveRequest) error {
	trail, err := json.Marshal(lr.Trail)
	if err != nil {
		return fmt.Errorf("failed to encode review trail: %w", err)
	}

	query := `
		UPDATE leave_requests SET
			status = ?, review_level = ?, review_trail = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		lr.Status, lr.Stage, trail, lr.UpdatedAt, lr.ID, lr.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update leave request", zap.String("id", lr.ID), zap.Error(err))
		return fmt.Errorf("failed to update leave request: %w", err)
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

// ApprovedDaysInYear sums approved leave days for balance checks. Unpaid
// leave does not draw on the entitlement and is excluded.
func (r *LeaveRepository) ApprovedDaysInYear(ctx context.Context, employeeID string, year int) (int, error) {
	query := `
		SELECT COALESCE(SUM(days), 0) FROM leave_requests
		WHERE employee_id = ? AND status = ? AND type != ? AND strftime('%Y', start_date) = ?
	`

	var total int
	err := r.db.QueryRowContext(ctx, query,
		employeeID, workflow.StatusApproved, entity.LeaveTypeUnpaid, fmt.Sprintf("%04d", year)).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum approved leave days", zap.Error(err))
		return 0, fmt.Errorf("failed to sum approved leave days: %w", err)
	}
	return total, nil
}
