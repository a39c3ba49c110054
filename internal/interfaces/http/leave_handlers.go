package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/staffbridge/hr-payroll/internal/application/service"
)

// CreateLeaveRequest represents the leave submission body
type CreateLeaveRequest struct {
	Type      string `json:"type" binding:"required"`
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" binding:"required"`
	Days      int    `json:"days" binding:"required"`
	Reason    string `json:"reason"`
}

// DecisionRequest represents an approve/reject body shared by the
// workflow-backed endpoints
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Note     string `json:"note"`
}

// CreateLeave handles POST /api/leave
func (h *Handlers) CreateLeave(c *gin.Context) {
	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.badRequest(c, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.badRequest(c, "end_date must be YYYY-MM-DD")
		return
	}

	lr, err := h.services.Leave.Create(c.Request.Context(), currentActor(c), service.CreateLeaveInput{
		Type:      req.Type,
		StartDate: start,
		EndDate:   end,
		Days:      req.Days,
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.created(c, lr)
}

// ListMyLeave handles GET /api/leave
func (h *Handlers) ListMyLeave(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	requests, err := h.services.Leave.ListMine(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, requests)
}

// ListPendingLeave handles GET /api/leave/pending
func (h *Handlers) ListPendingLeave(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	requests, err := h.services.Leave.ListPendingReview(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, requests)
}

// GetLeave handles GET /api/leave/:id
func (h *Handlers) GetLeave(c *gin.Context) {
	lr, err := h.services.Leave.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, lr)
}

// DecideLeave handles POST /api/leave/:id/decision
func (h *Handlers) DecideLeave(c *gin.Context) {
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

	lr, err := h.services.Leave.Decide(c.Request.Context(), currentActor(c), c.Param("id"), decision, req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, lr)
}
