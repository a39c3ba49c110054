package entity

import (
	"time"

	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// Fixed point adjustments an HR reviewer may toggle on an appraisal.
// Applied additively to the teamlead-approved subtotal; flags are independent.
const (
	AdjustInnovationPoints   = 3
	AdjustCommendationPoints = 3
	AdjustQueryPoints        = -4
	AdjustMajorErrorPoints   = -15
)

// AppraisalObjective is one weighted objective; weights across an appraisal
// must sum to exactly 100. Score is entered by the teamlead reviewer (0-100).
type AppraisalObjective struct {
	Title  string `json:"title"`
	Weight int    `json:"weight"`
	Score  int    `json:"score"`
}

// AppraisalAdjustments are the HR-stage boolean adjustment flags
type AppraisalAdjustments struct {
	Innovation   bool `json:"innovation"`
	Commendation bool `json:"commendation"`
	Query        bool `json:"query"`
	MajorError   bool `json:"major_error"`
}

// Points returns the additive score delta for the toggled flags
func (a AppraisalAdjustments) Points() int {
	total := 0
	if a.Innovation {
		total += AdjustInnovationPoints
	}
	if a.Commendation {
		total += AdjustCommendationPoints
	}
	if a.Query {
		total += AdjustQueryPoints
	}
	if a.MajorError {
		total += AdjustMajorErrorPoints
	}
	return total
}

// AppraisalRequest is an approvable performance appraisal
type AppraisalRequest struct {
	ID         string               `json:"id"`
	CompanyID  string               `json:"company_id"`
	Department string               `json:"department"`
	EmployeeID string               `json:"employee_id"`
	Period     string               `json:"period"` // YYYY-MM
	Objectives []AppraisalObjective `json:"objectives"`
	// TeamLeadScore is the weighted subtotal entered at the teamlead stage
	TeamLeadScore int                  `json:"teamlead_score"`
	Adjustments   AppraisalAdjustments `json:"adjustments"`
	FinalScore    int                  `json:"final_score"`

	workflow.ReviewState

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeightedScore computes the weight-adjusted subtotal from objective scores
func (a *AppraisalRequest) WeightedScore() int {
	total := 0
	for _, o := range a.Objectives {
		total += o.Weight * o.Score
	}
	return total / 100
}
