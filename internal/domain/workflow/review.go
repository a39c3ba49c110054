package workflow

import "time"

// Status represents the lifecycle state of an approvable request
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusExpired       Status = "EXPIRED"
	StatusNeedsRevision Status = "NEEDS_REVISION"
)

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
	StatusExpired:  true,
}

// IsTerminal returns true if no further transitions are allowed from the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Stage identifies a review stage within a policy
type Stage string

const (
	StageTeamLead Stage = "teamlead"
	StageHR       Stage = "hr"
	StageMD       Stage = "md"
)

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// Decision is the action a reviewer takes on a request
type Decision string

const (
	DecisionApproved          Decision = "APPROVED"
	DecisionRejected          Decision = "REJECTED"
	DecisionRevisionRequested Decision = "REVISION_REQUESTED"
)

// ReviewStep is one entry in a request's review trail.
// Entries are append-only; insertion order is chronological.
type ReviewStep struct {
	Reviewer string    `json:"reviewer"`
	Role     string    `json:"role"`
	Action   Decision  `json:"action"`
	Date     time.Time `json:"date"`
	Note     string    `json:"note,omitempty"`
}

// ReviewState carries the workflow fields shared by every approvable request.
// Domain entities embed it; the engine is the only writer during Decide.
type ReviewState struct {
	Status Status       `json:"status"`
	Stage  Stage        `json:"review_level"`
	Trail  []ReviewStep `json:"review_trail"`
}

// NewReviewState returns the initial state for a freshly submitted request
func NewReviewState(pol *Policy) ReviewState {
	return ReviewState{
		Status: StatusPending,
		Stage:  pol.First(),
		Trail:  nil,
	}
}

// Actor is the authenticated identity performing a review decision.
// It is supplied by the auth layer and trusted as-is.
type Actor struct {
	ID         string
	Role       string
	Department string
	Company    string
}
