package http

import (
	"github.com/gin-gonic/gin"

	"github.com/staffbridge/hr-payroll/internal/application/service"
)

// CreateLoanRequest represents the loan submission body
type CreateLoanRequest struct {
	Amount          int64  `json:"amount" binding:"required"`
	RepaymentMonths int    `json:"repayment_months" binding:"required"`
	Purpose         string `json:"purpose"`
}

// CreateLoan handles POST /api/loans
func (h *Handlers) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	lr, err := h.services.Loans.Create(c.Request.Context(), currentActor(c), service.CreateLoanInput{
		Amount:          req.Amount,
		RepaymentMonths: req.RepaymentMonths,
		Purpose:         req.Purpose,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.created(c, lr)
}

// ListMyLoans handles GET /api/loans
func (h *Handlers) ListMyLoans(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	requests, err := h.services.Loans.ListMine(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, requests)
}

// ListPendingLoans handles GET /api/loans/pending
func (h *Handlers) ListPendingLoans(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	requests, err := h.services.Loans.ListPendingReview(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, requests)
}

// GetLoan handles GET /api/loans/:id
func (h *Handlers) GetLoan(c *gin.Context) {
	lr, err := h.services.Loans.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, lr)
}

// DecideLoan handles POST /api/loans/:id/decision
func (h *Handlers) DecideLoan(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "decision is required")
		return
	}

	decision, err := parseDecision(req.Decision)
	if err != nil {
		h.writeError(c, err)
		return
	}

	lr, err := h.services.Loans.Decide(c.Request.Context(), currentActor(c), c.Param("id"), decision, req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, lr)
}
