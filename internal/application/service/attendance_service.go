package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
	"github.com/staffbridge/hr-payroll/pkg/id"
)

// AttendanceService records daily clock-in/clock-out times
type AttendanceService interface {
	ClockIn(ctx context.Context, actor workflow.Actor) (*entity.AttendanceRecord, error)
	ClockOut(ctx context.Context, actor workflow.Actor) (*entity.AttendanceRecord, error)
	List(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.AttendanceRecord, error)
}

type attendanceServiceImpl struct {
	attendance port.AttendanceRepository
	logger     *zap.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(attendance port.AttendanceRepository, logger *zap.Logger) AttendanceService {
	return &attendanceServiceImpl{
		attendance: attendance,
		logger:     logger,
	}
}

// ClockIn opens today's attendance record for the actor
func (s *attendanceServiceImpl) ClockIn(ctx context.Context, actor workflow.Actor) (*entity.AttendanceRecord, error) {
	now := time.Now().UTC()
	day := now.Format("2006-01-02")

	if _, err := s.attendance.GetByEmployeeAndDay(ctx, actor.ID, day); err == nil {
		return nil, validationError("already clocked in for %s", day)
	} else if !errors.Is(err, port.ErrNotFound) {
		return nil, err
	}

	rec := &entity.AttendanceRecord{
		ID:         id.New(),
		CompanyID:  actor.Company,
		EmployeeID: actor.ID,
		Day:        day,
		ClockIn:    now,
		CreatedAt:  now,
	}

	if err := s.attendance.Create(ctx, rec); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return nil, validationError("already clocked in for %s", day)
		}
		return nil, err
	}

	s.logger.Info("Employee clocked in",
		zap.String("employee_id", actor.ID),
		zap.String("day", day))
	return rec, nil
}

// ClockOut closes today's attendance record
func (s *attendanceServiceImpl) ClockOut(ctx context.Context, actor workflow.Actor) (*entity.AttendanceRecord, error) {
	now := time.Now().UTC()
	day := now.Format("2006-01-02")

	rec, err := s.attendance.GetByEmployeeAndDay(ctx, actor.ID, day)
	if errors.Is(err, port.ErrNotFound) {
		return nil, validationError("no clock-in recorded for %s", day)
	}
	if err != nil {
		return nil, err
	}
	if rec.ClockOut != nil {
		return nil, validationError("already clocked out for %s", day)
	}

	if err := s.attendance.SetClockOut(ctx, rec.ID, now); err != nil {
		return nil, err
	}

	rec.ClockOut = &now
	return rec, nil
}

// List retrieves the actor's attendance records
func (s *attendanceServiceImpl) List(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.AttendanceRecord, error) {
	return s.attendance.ListByEmployee(ctx, actor.ID, limit, offset)
}
