package workflow

import "time"

// Outcome describes the result of a successful Decide call
type Outcome struct {
	Decision Decision
	Terminal bool
	// NextStage and NextRole are set for a non-terminal approval
	NextStage Stage
	NextRole  string
}

// Decide validates the actor against the request's current stage and applies
// one review decision. All preconditions are checked before any mutation, so a
// failed call leaves the state untouched.
//
// Precondition order matters: a non-Pending request reports ErrAlreadyReviewed
// even if the actor would also fail the role check.
func Decide(pol *Policy, state *ReviewState, actor Actor, decision Decision, note string, now time.Time) (Outcome, error) {
	if decision != DecisionApproved && decision != DecisionRejected {
		return Outcome{}, ErrInvalidDecision
	}

	if state.Status != StatusPending {
		return Outcome{}, ErrAlreadyReviewed
	}

	requiredRole, err := pol.RoleForStage(state.Stage)
	if err != nil {
		return Outcome{}, err
	}
	if actor.Role != requiredRole {
		return Outcome{}, ErrNotAuthorizedForStage
	}

	// Preconditions hold; apply.
	state.Trail = append(state.Trail, ReviewStep{
		Reviewer: actor.ID,
		Role:     actor.Role,
		Action:   decision,
		Date:     now,
		Note:     note,
	})

	if decision == DecisionRejected {
		state.Status = StatusRejected
		return Outcome{Decision: decision, Terminal: true}, nil
	}

	next, ok := pol.NextStage(state.Stage)
	if !ok {
		state.Status = StatusApproved
		return Outcome{Decision: decision, Terminal: true}, nil
	}

	nextRole, err := pol.RoleForStage(next)
	if err != nil {
		// Unreachable for a well-formed policy; NextStage only returns policy stages.
		return Outcome{}, err
	}

	state.Stage = next
	return Outcome{
		Decision:  decision,
		Terminal:  false,
		NextStage: next,
		NextRole:  nextRole,
	}, nil
}
