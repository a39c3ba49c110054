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

// AttendanceRepository handles attendance database operations
type AttendanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *sql.DB, logger *zap.Logger) *AttendanceRepository {
	return &AttendanceRepository{
		db:     db,
		logger: logger,
	}
}

func scanAttendance(row interface{ Scan(...any) error }) (*entity.AttendanceRecord, error) {
	var rec entity.AttendanceRecord
	var clockOut sql.NullTime

	err := row.Scan(
		&rec.ID,
		&rec.CompanyID,
		&rec.EmployeeID,
		&rec.Day,
		&rec.ClockIn,
		&clockOut,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if clockOut.Valid {
		rec.ClockOut = &clockOut.Time
	}
	return &rec, nil
}

// Create inserts a new attendance record; one per employee per day
func (r *AttendanceRepository) Create(ctx context.Context, rec *entity.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (
			id, company_id, employee_id, day, clock_in, clock_out, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var clockOut any
	if rec.ClockOut != nil {
		clockOut = *rec.ClockOut
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.CompanyID, rec.EmployeeID, rec.Day, rec.ClockIn, clockOut, rec.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create attendance record", zap.Error(err))
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

// GetByEmployeeAndDay retrieves the record for one employee work day
func (r *AttendanceRepository) GetByEmployeeAndDay(ctx context.Context, employeeID, day string) (*entity.AttendanceRecord, error) {
	query := `
		SELECT id, company_id, employee_id, day, clock_in, clock_out, created_at
		FROM attendance_records
		WHERE employee_id = ? AND day = ?
	`

	rec, err := scanAttendance(r.db.QueryRowContext(ctx, query, employeeID, day))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get attendance record", zap.Error(err))
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// SetClockOut records the clock-out time
func (r *AttendanceRepository) SetClockOut(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE attendance_records SET clock_out = ? WHERE id = ? AND clock_out IS NULL",
		at, id,
	)
	if err != nil {
		r.logger.Error("Failed to set clock out", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set clock out: %w", err)
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

// ListByEmployee retrieves attendance records for an employee, newest first
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.AttendanceRecord, error) {
	query := `
		SELECT id, company_id, employee_id, day, clock_in, clock_out, created_at
		FROM attendance_records
		WHERE employee_id = ?
		ORDER BY day DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, employeeID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list attendance records", zap.Error(err))
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
