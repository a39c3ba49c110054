package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// AppraisalRepository handles appraisal request database operations
type AppraisalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAppraisalRepository creates a new appraisal repository
func NewAppraisalRepository(db *sql.DB, logger *zap.Logger) *AppraisalRepository {
	return &AppraisalRepository{
		db:     db,
		logger: logger,
	}
}

const appraisalColumns = `id, company_id, department, employee_id, period,
	objectives, teamlead_score, adjustments, final_score, status, review_level,
	review_trail, version, created_at, updated_at`

func scanAppraisal(row interface{ Scan(...any) error }) (*entity.AppraisalRequest, error) {
	var ar entity.AppraisalRequest
	var objectives, adjustments, trail []byte

	err := row.Scan(
		&ar.ID,
		&ar.CompanyID,
		&ar.Department,
		&ar.EmployeeID,
		&ar.Period,
		&objectives,
		&ar.TeamLeadScore,
		&adjustments,
		&ar.FinalScore,
		&ar.Status,
		&ar.Stage,
		&trail,
		&ar.Version,
		&ar.CreatedAt,
		&ar.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(objectives) > 0 {
		if err := json.Unmarshal(objectives, &ar.Objectives); err != nil {
			return nil, fmt.Errorf("failed to decode objectives: %w", err)
		}
	}
	if len(adjustments) > 0 {
		if err := json.Unmarshal(adjustments, &ar.Adjustments); err != nil {
			return nil, fmt.Errorf("failed to decode adjustments: %w", err)
		}
	}
	if len(trail) > 0 {
		if err := json.Unmarshal(trail, &ar.Trail); err != nil {
			return nil, fmt.Errorf("failed to decode review trail: %w", err)
		}
	}
	return &ar, nil
}

func marshalAppraisal(ar *entity.AppraisalRequest) (objectives, adjustments, trail []byte, err error) {
	if objectives, err = json.Marshal(ar.Objectives); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode objectives: %w", err)
	}
	if adjustments, err = json.Marshal(ar.Adjustments); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode adjustments: %w", err)
	}
	if trail, err = json.Marshal(ar.Trail); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode review trail: %w", err)
	}
	return objectives, adjustments, trail, nil
}

// Create inserts a new appraisal request
func (r *AppraisalRepository) Create(ctx context.Context, ar *entity.AppraisalRequest) error {
	objectives, adjustments, trail, err := marshalAppraisal(ar)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO appraisal_requests (
			id, company_id, department, employee_id, period, objectives,
			teamlead_score, adjustments, final_score, status, review_level,
			review_trail, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		ar.ID, ar.CompanyID, ar.Department, ar.EmployeeID, ar.Period, objectives,
		ar.TeamLeadScore, adjustments, ar.FinalScore, ar.Status, ar.Stage,
		trail, ar.Version, ar.CreatedAt, ar.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create appraisal request", zap.Error(err))
		return fmt.Errorf("failed to create appraisal request: %w", err)
	}
	return nil
}

// GetByID retrieves an appraisal request by id
func (r *AppraisalRepository) GetByID(ctx context.Context, id string) (*entity.AppraisalRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM appraisal_requests WHERE id = ?", appraisalColumns)

	ar, err := scanAppraisal(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get appraisal request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get appraisal request: %w", err)
	}
	return ar, nil
}

// ListByEmployee retrieves an employee's appraisals, newest first
func (r *AppraisalRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.AppraisalRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appraisal_requests
		WHERE employee_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, appraisalColumns)

	return r.queryMany(ctx, query, employeeID, limit, offset)
}

// ListPendingForStage retrieves pending appraisals waiting at a review stage
func (r *AppraisalRepository) ListPendingForStage(ctx context.Context, companyID string, stage workflow.Stage, limit, offset int) ([]*entity.AppraisalRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appraisal_requests
		WHERE company_id = ? AND status = ? AND review_level = ?
		ORDER BY created_at
		LIMIT ? OFFSET ?`, appraisalColumns)

	return r.queryMany(ctx, query, companyID, workflow.StatusPending, stage, limit, offset)
}

func (r *AppraisalRepository) queryMany(ctx context.Context, query string, args ...any) ([]*entity.AppraisalRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query appraisal requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query appraisal requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.AppraisalRequest
	for rows.Next() {
		ar, err := scanAppraisal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appraisal request: %w", err)
		}
		requests = append(requests, ar)
	}
	return requests, rows.Err()
}

// Update performs a version-checked write
func (r *AppraisalRepository) Update(ctx context.Context, ar *entity.AppraisalRequest) error {
	objectives, adjustments, trail, err := marshalAppraisal(ar)
	if err != nil {
		return err
	}

	query := `
		UPDATE appraisal_requests SET
			objectives = ?, teamlead_score = ?, adjustments = ?, final_score = ?,
			status = ?, review_level = ?, review_trail = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		objectives, ar.TeamLeadScore, adjustments, ar.FinalScore,
		ar.Status, ar.Stage, trail, ar.UpdatedAt, ar.ID, ar.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update appraisal request", zap.String("id", ar.ID), zap.Error(err))
		return fmt.Errorf("failed to update appraisal request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}

	ar.Version++
	return nil
}
