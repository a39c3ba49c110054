package entity

import "time"

// Employee roles. Reviewer roles line up with workflow stage requirements.
const (
	RoleEmployee = "employee"
	RoleTeamLead = "teamlead"
	RoleHR       = "hr"
	RoleMD       = "md"
	RoleAdmin    = "admin"
)

// Employee is a tenant-scoped staff record. It doubles as the auth principal.
type Employee struct {
	ID                   string    `json:"id"`
	CompanyID            string    `json:"company_id"`
	Department           string    `json:"department"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"-"`
	Role                 string    `json:"role"`
	AnnualSalary         int64     `json:"annual_salary"`
	BankName             string    `json:"bank_name,omitempty"`
	BankAccount          string    `json:"bank_account,omitempty"`
	LeaveEntitlementDays int       `json:"leave_entitlement_days"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// FullName returns the employee's display name
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
