package http

import (
	"github.com/gin-gonic/gin"

	"github.com/staffbridge/hr-payroll/internal/application/service"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
)

// CreateEmployeeRequest represents the employee creation body
type CreateEmployeeRequest struct {
	Department           string `json:"department"`
	FirstName            string `json:"first_name" binding:"required"`
	LastName             string `json:"last_name" binding:"required"`
	Email                string `json:"email" binding:"required"`
	Password             string `json:"password" binding:"required"`
	Role                 string `json:"role" binding:"required"`
	AnnualSalary         int64  `json:"annual_salary"`
	BankName             string `json:"bank_name"`
	BankAccount          string `json:"bank_account"`
	LeaveEntitlementDays int    `json:"leave_entitlement_days"`
}

// UpdateEmployeeRequest represents the employee update body
type UpdateEmployeeRequest struct {
	Department           string `json:"department"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Role                 string `json:"role"`
	AnnualSalary         int64  `json:"annual_salary"`
	BankName             string `json:"bank_name"`
	BankAccount          string `json:"bank_account"`
	LeaveEntitlementDays int    `json:"leave_entitlement_days"`
}

func sanitizeEmployee(emp *entity.Employee) *entity.Employee {
	emp.PasswordHash = ""
	return emp
}

// CreateEmployee handles POST /api/employees
func (h *Handlers) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	emp, err := h.services.Employees.Create(c.Request.Context(), currentActor(c), service.CreateEmployeeInput{
		Department:           req.Department,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		Password:             req.Password,
		Role:                 req.Role,
		AnnualSalary:         req.AnnualSalary,
		BankName:             req.BankName,
		BankAccount:          req.BankAccount,
		LeaveEntitlementDays: req.LeaveEntitlementDays,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.created(c, sanitizeEmployee(emp))
}

// ListEmployees handles GET /api/employees
func (h *Handlers) ListEmployees(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	emps, err := h.services.Employees.List(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	for _, emp := range emps {
		sanitizeEmployee(emp)
	}
	h.ok(c, emps)
}

// GetEmployee handles GET /api/employees/:id
func (h *Handlers) GetEmployee(c *gin.Context) {
	emp, err := h.services.Employees.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, sanitizeEmployee(emp))
}

// UpdateEmployee handles PUT /api/employees/:id
func (h *Handlers) UpdateEmployee(c *gin.Context) {
	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	emp, err := h.services.Employees.Update(c.Request.Context(), currentActor(c), c.Param("id"), service.UpdateEmployeeInput{
		Department:           req.Department,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Role:                 req.Role,
		AnnualSalary:         req.AnnualSalary,
		BankName:             req.BankName,
		BankAccount:          req.BankAccount,
		LeaveEntitlementDays: req.LeaveEntitlementDays,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, sanitizeEmployee(emp))
}

// DeactivateEmployee handles DELETE /api/employees/:id
func (h *Handlers) DeactivateEmployee(c *gin.Context) {
	if err := h.services.Employees.Deactivate(c.Request.Context(), currentActor(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, gin.H{"deactivated": true})
}
