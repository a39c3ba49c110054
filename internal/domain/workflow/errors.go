package workflow

import "errors"

var (
	// ErrAlreadyReviewed is returned when Decide is called on a non-Pending request
	ErrAlreadyReviewed = errors.New("request already reviewed")

	// ErrNotAuthorizedForStage is returned when the actor's role does not match
	// the role required by the request's current stage
	ErrNotAuthorizedForStage = errors.New("not authorized for current review stage")

	// ErrUnknownStage is returned when a stage is not part of the policy
	ErrUnknownStage = errors.New("unknown review stage")

	// ErrInvalidDecision is returned for decisions the engine does not accept
	ErrInvalidDecision = errors.New("invalid decision")
)
