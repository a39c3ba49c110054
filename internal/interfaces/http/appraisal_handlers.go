package http

import (
	"github.com/gin-gonic/gin"

	"github.com/staffbridge/hr-payroll/internal/application/service"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
)

// ObjectiveRequest represents one weighted objective in a submission
type ObjectiveRequest struct {
	Title  string `json:"title" binding:"required"`
	Weight int    `json:"weight" binding:"required"`
}

// CreateAppraisalRequest represents the appraisal submission body
type CreateAppraisalRequest struct {
	EmployeeID string             `json:"employee_id"`
	Period     string             `json:"period" binding:"required"` // YYYY-MM
	Objectives []ObjectiveRequest `json:"objectives" binding:"required"`
}

// DecideAppraisalRequest represents the appraisal decision body. Scores are
// required when the teamlead stage approves; adjustments apply at the hr stage.
type DecideAppraisalRequest struct {
	Decision    string                       `json:"decision" binding:"required"`
	Note        string                       `json:"note"`
	Scores      []int                        `json:"scores"`
	Adjustments *entity.AppraisalAdjustments `json:"adjustments"`
}

// RevisionRequest represents the revision-request body
type RevisionRequest struct {
	Note string `json:"note"`
}

// ResubmitAppraisalRequest represents the resubmission body
type ResubmitAppraisalRequest struct {
	Objectives []ObjectiveRequest `json:"objectives"`
}

func toObjectives(reqs []ObjectiveRequest) []entity.AppraisalObjective {
	objectives := make([]entity.AppraisalObjective, 0, len(reqs))
	for _, o := range reqs {
		objectives = append(objectives, entity.AppraisalObjective{
			Title:  o.Title,
			Weight: o.Weight,
		})
	}
	return objectives
}

// CreateAppraisal handles POST /api/appraisals
func (h *Handlers) CreateAppraisal(c *gin.Context) {
	var req CreateAppraisalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	ar, err := h.services.Appraisals.Create(c.Request.Context(), currentActor(c), service.CreateAppraisalInput{
		EmployeeID: req.EmployeeID,
		Period:     req.Period,
		Objectives: toObjectives(req.Objectives),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.created(c, ar)
}

// ListMyAppraisals handles GET /api/appraisals
func (h *Handlers) ListMyAppraisals(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	appraisals, err := h.services.Appraisals.ListMine(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, appraisals)
}

// ListPendingAppraisals handles GET /api/appraisals/pending
func (h *Handlers) ListPendingAppraisals(c *gin.Context) {
	var page PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}
	page.normalize()

	appraisals, err := h.services.Appraisals.ListPendingReview(c.Request.Context(), currentActor(c), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, appraisals)
}

// GetAppraisal handles GET /api/appraisals/:id
func (h *Handlers) GetAppraisal(c *gin.Context) {
	ar, err := h.services.Appraisals.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, ar)
}

// DecideAppraisal handles POST /api/appraisals/:id/decision
func (h *Handlers) DecideAppraisal(c *gin.Context) {
	var req DecideAppraisalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "decision is required")
		return
	}

	decision, err := parseDecision(req.Decision)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ar, err := h.services.Appraisals.Decide(c.Request.Context(), currentActor(c), c.Param("id"), service.DecideAppraisalInput{
		Decision:    decision,
		Note:        req.Note,
		Scores:      req.Scores,
		Adjustments: req.Adjustments,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, ar)
}

// RequestAppraisalRevision handles POST /api/appraisals/:id/revision
func (h *Handlers) RequestAppraisalRevision(c *gin.Context) {
	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.badRequest(c, "invalid request body")
		return
	}

	ar, err := h.services.Appraisals.RequestRevision(c.Request.Context(), currentActor(c), c.Param("id"), req.Note)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, ar)
}

// ResubmitAppraisal handles POST /api/appraisals/:id/resubmit
func (h *Handlers) ResubmitAppraisal(c *gin.Context) {
	var req ResubmitAppraisalRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.badRequest(c, "invalid request body")
		return
	}

	ar, err := h.services.Appraisals.Resubmit(c.Request.Context(), currentActor(c), c.Param("id"), toObjectives(req.Objectives))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.ok(c, ar)
}
