package entity

import (
	"time"

	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// Leave types
const (
	LeaveTypeAnnual    = "annual"
	LeaveTypeSick      = "sick"
	LeaveTypeEmergency = "emergency"
	LeaveTypeMaternity = "maternity"
	LeaveTypeUnpaid    = "unpaid"
)

// LeaveRequest is an approvable request for time off
type LeaveRequest struct {
	ID         string    `json:"id"`
	CompanyID  string    `json:"company_id"`
	Department string    `json:"department"`
	EmployeeID string    `json:"employee_id"`
	Type       string    `json:"type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days"`
	Reason     string    `json:"reason,omitempty"`

	workflow.ReviewState

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
