package entity

import "time"

// Notification kinds
const (
	NotificationKindLeave     = "leave"
	NotificationKindLoan      = "loan"
	NotificationKindAppraisal = "appraisal"
	NotificationKindPayroll   = "payroll"
)

// Notification is an in-app notice for one user
type Notification struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
