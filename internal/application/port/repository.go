// Package port defines the interfaces the application services depend on.
// Implementations live in internal/repository and the infrastructure packages.
package port

import (
	"context"
	"time"

	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// Scope narrows directory lookups to the requester's org unit
type Scope struct {
	CompanyID  string
	Department string
}

// ReviewerDirectory locates the holder of a review role within a scope
type ReviewerDirectory interface {
	// FindApprover returns ErrNotFound when no user holds the role in scope
	FindApprover(ctx context.Context, role string, scope Scope) (*entity.Employee, error)
}

// EmployeeRepository persists employee records
type EmployeeRepository interface {
	Create(ctx context.Context, e *entity.Employee) error
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	GetByEmail(ctx context.Context, email string) (*entity.Employee, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]*entity.Employee, error)
	Update(ctx context.Context, e *entity.Employee) error
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context, companyID string) ([]*entity.Employee, error)
}

// LeaveRepository persists leave requests. Update performs a version-checked
// write and returns ErrVersionConflict when the stored version differs.
type LeaveRepository interface {
	Create(ctx context.Context, lr *entity.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*entity.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.LeaveRequest, error)
	ListPendingForStage(ctx context.Context, companyID string, stage workflow.Stage, limit, offset int) ([]*entity.LeaveRequest, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.LeaveRequest, error)
	Update(ctx context.Context, lr *entity.LeaveRequest) error
	ApprovedDaysInYear(ctx context.Context, employeeID string, year int) (int, error)
}

// LoanRepository persists loan requests with the same versioning discipline
type LoanRepository interface {
	Create(ctx context.Context, lr *entity.LoanRequest) error
	GetByID(ctx context.Context, id string) (*entity.LoanRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.LoanRequest, error)
	ListPendingForStage(ctx context.Context, companyID string, stage workflow.Stage, limit, offset int) ([]*entity.LoanRequest, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.LoanRequest, error)
	ListActiveApproved(ctx context.Context, employeeID string) ([]*entity.LoanRequest, error)
	Update(ctx context.Context, lr *entity.LoanRequest) error
}

// AppraisalRepository persists appraisal requests
type AppraisalRepository interface {
	Create(ctx context.Context, ar *entity.AppraisalRequest) error
	GetByID(ctx context.Context, id string) (*entity.AppraisalRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.AppraisalRequest, error)
	ListPendingForStage(ctx context.Context, companyID string, stage workflow.Stage, limit, offset int) ([]*entity.AppraisalRequest, error)
	Update(ctx context.Context, ar *entity.AppraisalRequest) error
}

// AttendanceRepository persists attendance records
type AttendanceRepository interface {
	Create(ctx context.Context, rec *entity.AttendanceRecord) error
	GetByEmployeeAndDay(ctx context.Context, employeeID, day string) (*entity.AttendanceRecord, error)
	SetClockOut(ctx context.Context, id string, at time.Time) error
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.AttendanceRecord, error)
}

// PayslipRepository persists computed payslips
type PayslipRepository interface {
	Create(ctx context.Context, p *entity.Payslip) error
	GetByEmployeeAndPeriod(ctx context.Context, employeeID, period string) (*entity.Payslip, error)
	ListByPeriod(ctx context.Context, companyID, period string) ([]*entity.Payslip, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]*entity.Payslip, error)
}

// NotificationRepository persists in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}
