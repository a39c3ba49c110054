package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunPayrollRequest represents the payroll run body
type RunPayrollRequest struct {
	Period string `json:"period" binding:"required"` // YYYY-MM
}

// RunPayroll handles POST /api/payroll/run
func (h *Handlers) RunPayroll(c *gin.Context) {
	var req RunPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "period is required")
		return
	}

	result, err := h.services.Payroll.Run(c.Request.Context(), currentActor(c), req.Period)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, result)
}

// ListPayslipsByPeriod handles GET /api/payroll/payslips?period=YYYY-MM
func (h *Handlers) ListPayslipsByPeriod(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		h.badRequest(c, "period query parameter is required")
		return
	}

	slips, err := h.services.Payroll.ListByPeriod(c.Request.Context(), currentActor(c), period)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, slips)
}

// ListMyPayslips handles GET /api/payroll/payslips/me
func (h *Handlers) ListMyPayslips(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	slips, err := h.services.Payroll.ListMine(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, slips)
}

// GetMyPayslip handles GET /api/payroll/payslips/me/:period
func (h *Handlers) GetMyPayslip(c *gin.Context) {
	slip, err := h.services.Payroll.GetPayslip(c.Request.Context(), currentActor(c), c.Param("period"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, slip)
}

// PayrollRegister handles GET /api/reports/payroll-register?period=YYYY-MM
func (h *Handlers) PayrollRegister(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		h.badRequest(c, "period query parameter is required")
		return
	}

	content, filename, err := h.services.Reports.PayrollRegister(c.Request.Context(), currentActor(c), period)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
