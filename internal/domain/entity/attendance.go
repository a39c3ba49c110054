package entity

import "time"

// AttendanceRecord captures one employee work day
type AttendanceRecord struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	EmployeeID string     `json:"employee_id"`
	Day        string     `json:"day"` // YYYY-MM-DD
	ClockIn    time.Time  `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
