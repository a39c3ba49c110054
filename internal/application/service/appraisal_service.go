package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
	"github.com/staffbridge/hr-payroll/pkg/id"
	"github.com/staffbridge/hr-payroll/pkg/utils"
)

// CreateAppraisalInput carries appraisal creation fields
type CreateAppraisalInput struct {
	EmployeeID string
	Period     string // YYYY-MM
	Objectives []entity.AppraisalObjective
}

// DecideAppraisalInput carries a review decision plus the stage's domain data:
// objective scores at the teamlead stage, adjustment flags at the hr stage.
type DecideAppraisalInput struct {
	Decision    workflow.Decision
	Note        string
	Scores      []int
	Adjustments *entity.AppraisalAdjustments
}

// AppraisalService is the appraisal domain adapter. Beyond the shared engine
// it owns the needs-revision loop, which exists for appraisals only.
type AppraisalService interface {
	Create(ctx context.Context, actor workflow.Actor, in CreateAppraisalInput) (*entity.AppraisalRequest, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (*entity.AppraisalRequest, error)
	ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.AppraisalRequest, error)
	ListPendingReview(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.AppraisalRequest, error)
	Decide(ctx context.Context, actor workflow.Actor, requestID string, in DecideAppraisalInput) (*entity.AppraisalRequest, error)
	RequestRevision(ctx context.Context, actor workflow.Actor, requestID, note string) (*entity.AppraisalRequest, error)
	Resubmit(ctx context.Context, actor workflow.Actor, requestID string, objectives []entity.AppraisalObjective) (*entity.AppraisalRequest, error)
}

type appraisalServiceImpl struct {
	appraisals port.AppraisalRepository
	directory  port.ReviewerDirectory
	notifier   port.Notifier
	logger     *zap.Logger
}

// NewAppraisalService creates a new AppraisalService
func NewAppraisalService(
	appraisals port.AppraisalRepository,
	directory port.ReviewerDirectory,
	notifier port.Notifier,
	logger *zap.Logger,
) AppraisalService {
	return &appraisalServiceImpl{
		appraisals: appraisals,
		directory:  directory,
		notifier:   notifier,
		logger:     logger,
	}
}

func validateObjectives(objectives []entity.AppraisalObjective) error {
	if len(objectives) == 0 {
		return validationError("at least one objective is required")
	}
	totalWeight := 0
	for _, o := range objectives {
		if o.Title == "" {
			return validationError("objective title is required")
		}
		if o.Weight <= 0 {
			return validationError("objective weight must be positive")
		}
		totalWeight += o.Weight
	}
	if totalWeight != 100 {
		return validationError("objective weights must sum to 100, got %d", totalWeight)
	}
	return nil
}

// Create validates and submits an appraisal at the first review stage
func (s *appraisalServiceImpl) Create(ctx context.Context, actor workflow.Actor, in CreateAppraisalInput) (*entity.AppraisalRequest, error) {
	if err := utils.ValidatePeriod(in.Period); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := validateObjectives(in.Objectives); err != nil {
		return nil, err
	}

	employeeID := in.EmployeeID
	if employeeID == "" {
		employeeID = actor.ID
	}

	now := time.Now().UTC()
	ar := &entity.AppraisalRequest{
		ID:          id.New(),
		CompanyID:   actor.Company,
		Department:  actor.Department,
		EmployeeID:  employeeID,
		Period:      in.Period,
		Objectives:  in.Objectives,
		ReviewState: workflow.NewReviewState(workflow.AppraisalPolicy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.appraisals.Create(ctx, ar); err != nil {
		return nil, err
	}

	s.logger.Info("Appraisal submitted",
		zap.String("id", ar.ID),
		zap.String("employee_id", ar.EmployeeID),
		zap.String("period", ar.Period))

	s.notifyNextReviewer(ctx, ar, workflow.AppraisalPolicy.First())
	return ar, nil
}

// Get retrieves an appraisal by id. Appraisals belonging to another company
// are reported as not found.
func (s *appraisalServiceImpl) Get(ctx context.Context, actor workflow.Actor, requestID string) (*entity.AppraisalRequest, error) {
	ar, err := s.appraisals.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if ar.CompanyID != actor.Company {
		return nil, port.ErrNotFound
	}
	return ar, nil
}

// ListMine retrieves the actor's own appraisals
func (s *appraisalServiceImpl) ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.AppraisalRequest, error) {
	return s.appraisals.ListByEmployee(ctx, actor.ID, limit, offset)
}

// ListPendingReview retrieves appraisals waiting at the actor's stage
func (s *appraisalServiceImpl) ListPendingReview(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.AppraisalRequest, error) {
	stage, err := stageForRole(workflow.AppraisalPolicy, actor.Role)
	if err != nil {
		return nil, err
	}
	return s.appraisals.ListPendingForStage(ctx, actor.Company, stage, limit, offset)
}

// applyStageScores recomputes the appraisal's derived aggregates for the stage
// that just approved it. The final score is teamLeadScore plus the sum of the
// toggled adjustment constants; flags are independent and order-insensitive.
func applyStageScores(ar *entity.AppraisalRequest, stage workflow.Stage, in DecideAppraisalInput) error {
	switch stage {
	case workflow.StageTeamLead:
		if len(in.Scores) != len(ar.Objectives) {
			return validationError("expected %d objective scores, got %d", len(ar.Objectives), len(in.Scores))
		}
		for i, score := range in.Scores {
			if score < 0 || score > 100 {
				return validationError("objective score must be between 0 and 100")
			}
			ar.Objectives[i].Score = score
		}
		ar.TeamLeadScore = ar.WeightedScore()
		ar.FinalScore = ar.TeamLeadScore
	case workflow.StageHR:
		if in.Adjustments != nil {
			ar.Adjustments = *in.Adjustments
		}
		ar.FinalScore = ar.TeamLeadScore + ar.Adjustments.Points()
	}
	return nil
}

// Decide applies one review decision with bounded retries on write conflicts
func (s *appraisalServiceImpl) Decide(ctx context.Context, actor workflow.Actor, requestID string, in DecideAppraisalInput) (*entity.AppraisalRequest, error) {
	note := utils.SanitizeString(in.Note)

	for attempt := 0; attempt < maxDecideAttempts; attempt++ {
		ar, err := s.appraisals.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if ar.CompanyID != actor.Company {
			return nil, port.ErrNotFound
		}

		// The stage the decision applies to, captured before Decide advances it
		stage := ar.Stage

		now := time.Now().UTC()
		outcome, err := workflow.Decide(workflow.AppraisalPolicy, &ar.ReviewState, actor, in.Decision, note, now)
		if err != nil {
			return nil, err
		}

		if in.Decision == workflow.DecisionApproved {
			if err := applyStageScores(ar, stage, in); err != nil {
				return nil, err
			}
		}

		ar.UpdatedAt = now
		if err := s.appraisals.Update(ctx, ar); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				s.logger.Warn("Appraisal decide lost write race, retrying",
					zap.String("id", requestID),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		s.notifyDecision(ctx, ar, outcome, note)
		return ar, nil
	}

	return nil, port.ErrVersionConflict
}

// RequestRevision sends a pending appraisal back to its owner for edits.
// Only the reviewer holding the current stage may request it. The request
// becomes editable (NeedsRevision) until the owner resubmits.
func (s *appraisalServiceImpl) RequestRevision(ctx context.Context, actor workflow.Actor, requestID, note string) (*entity.AppraisalRequest, error) {
	note = utils.SanitizeString(note)

	for attempt := 0; attempt < maxDecideAttempts; attempt++ {
		ar, err := s.appraisals.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if ar.CompanyID != actor.Company {
			return nil, port.ErrNotFound
		}

		if ar.Status != workflow.StatusPending {
			return nil, workflow.ErrAlreadyReviewed
		}
		role, err := workflow.AppraisalPolicy.RoleForStage(ar.Stage)
		if err != nil {
			return nil, err
		}
		if actor.Role != role {
			return nil, workflow.ErrNotAuthorizedForStage
		}

		now := time.Now().UTC()
		ar.Trail = append(ar.Trail, workflow.ReviewStep{
			Reviewer: actor.ID,
			Role:     actor.Role,
			Action:   workflow.DecisionRevisionRequested,
			Date:     now,
			Note:     note,
		})
		ar.Status = workflow.StatusNeedsRevision
		ar.UpdatedAt = now

		if err := s.appraisals.Update(ctx, ar); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		msg := fmt.Sprintf("Your %s appraisal needs revision.", ar.Period)
		if note != "" {
			msg += " Note: " + note
		}
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: ar.EmployeeID,
			CompanyID:   ar.CompanyID,
			Kind:        entity.NotificationKindAppraisal,
			Title:       "Appraisal revision requested",
			Message:     msg,
		})
		return ar, nil
	}

	return nil, port.ErrVersionConflict
}

// Resubmit returns a NeedsRevision appraisal to Pending at the first stage.
// Only the appraisal's owner may resubmit; the review trail is preserved.
func (s *appraisalServiceImpl) Resubmit(ctx context.Context, actor workflow.Actor, requestID string, objectives []entity.AppraisalObjective) (*entity.AppraisalRequest, error) {
	for attempt := 0; attempt < maxDecideAttempts; attempt++ {
		ar, err := s.appraisals.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if ar.CompanyID != actor.Company {
			return nil, port.ErrNotFound
		}

		if ar.EmployeeID != actor.ID {
			return nil, workflow.ErrNotAuthorizedForStage
		}
		if ar.Status != workflow.StatusNeedsRevision {
			return nil, validationError("appraisal is not awaiting revision")
		}

		if len(objectives) > 0 {
			if err := validateObjectives(objectives); err != nil {
				return nil, err
			}
			ar.Objectives = objectives
		}

		now := time.Now().UTC()
		ar.Status = workflow.StatusPending
		ar.Stage = workflow.AppraisalPolicy.First()
		ar.TeamLeadScore = 0
		ar.FinalScore = 0
		ar.Adjustments = entity.AppraisalAdjustments{}
		ar.UpdatedAt = now

		if err := s.appraisals.Update(ctx, ar); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		s.notifyNextReviewer(ctx, ar, ar.Stage)
		return ar, nil
	}

	return nil, port.ErrVersionConflict
}

func (s *appraisalServiceImpl) notifyDecision(ctx context.Context, ar *entity.AppraisalRequest, outcome workflow.Outcome, note string) {
	switch {
	case outcome.Decision == workflow.DecisionRejected:
		msg := fmt.Sprintf("Your %s appraisal was rejected.", ar.Period)
		if note != "" {
			msg += " Note: " + note
		}
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: ar.EmployeeID,
			CompanyID:   ar.CompanyID,
			Kind:        entity.NotificationKindAppraisal,
			Title:       "Appraisal rejected",
			Message:     msg,
		})
	case outcome.Terminal:
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: ar.EmployeeID,
			CompanyID:   ar.CompanyID,
			Kind:        entity.NotificationKindAppraisal,
			Title:       "Appraisal completed",
			Message:     fmt.Sprintf("Your %s appraisal is complete with a final score of %d.", ar.Period, ar.FinalScore),
		})
	default:
		s.notifyNextReviewer(ctx, ar, outcome.NextStage)
	}
}

func (s *appraisalServiceImpl) notifyNextReviewer(ctx context.Context, ar *entity.AppraisalRequest, stage workflow.Stage) {
	role, err := workflow.AppraisalPolicy.RoleForStage(stage)
	if err != nil {
		return
	}

	approver, err := s.directory.FindApprover(ctx, role, port.Scope{
		CompanyID:  ar.CompanyID,
		Department: ar.Department,
	})
	if err != nil {
		s.logger.Warn("No approver found for appraisal review stage",
			zap.String("id", ar.ID),
			zap.String("role", role))
		return
	}

	s.notifier.Notify(ctx, port.Notice{
		RecipientID: approver.ID,
		CompanyID:   ar.CompanyID,
		Kind:        entity.NotificationKindAppraisal,
		Title:       "Appraisal awaiting review",
		Message:     fmt.Sprintf("An appraisal for period %s is waiting for your review.", ar.Period),
	})
}
