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

var validLeaveTypes = map[string]bool{
	entity.LeaveTypeAnnual:    true,
	entity.LeaveTypeSick:      true,
	entity.LeaveTypeEmergency: true,
	entity.LeaveTypeMaternity: true,
	entity.LeaveTypeUnpaid:    true,
}

// CreateLeaveInput carries leave request creation fields
type CreateLeaveInput struct {
	Type      string
	StartDate time.Time
	EndDate   time.Time
	Days      int
	Reason    string
}

// LeaveService is the leave domain adapter around the approval workflow engine
type LeaveService interface {
	Create(ctx context.Context, actor workflow.Actor, in CreateLeaveInput) (*entity.LeaveRequest, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (*entity.LeaveRequest, error)
	ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LeaveRequest, error)
	ListPendingReview(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LeaveRequest, error)
	Decide(ctx context.Context, actor workflow.Actor, requestID string, decision workflow.Decision, note string) (*entity.LeaveRequest, error)
}

type leaveServiceImpl struct {
	leaves    port.LeaveRepository
	employees port.EmployeeRepository
	directory port.ReviewerDirectory
	notifier  port.Notifier
	logger    *zap.Logger
}

// NewLeaveService creates a new LeaveService
func NewLeaveService(
	leaves port.LeaveRepository,
	employees port.EmployeeRepository,
	directory port.ReviewerDirectory,
	notifier port.Notifier,
	logger *zap.Logger,
) LeaveService {
	return &leaveServiceImpl{
		leaves:    leaves,
		employees: employees,
		directory: directory,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create validates and submits a leave request at the first review stage
func (s *leaveServiceImpl) Create(ctx context.Context, actor workflow.Actor, in CreateLeaveInput) (*entity.LeaveRequest, error) {
	if !validLeaveTypes[in.Type] {
		return nil, validationError("unknown leave type %q", in.Type)
	}
	if err := utils.ValidateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if in.Days <= 0 {
		return nil, validationError("day count must be positive")
	}

	emp, err := s.employees.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}

	// Unpaid leave bypasses the entitlement balance
	if in.Type != entity.LeaveTypeUnpaid {
		taken, err := s.leaves.ApprovedDaysInYear(ctx, actor.ID, in.StartDate.Year())
		if err != nil {
			return nil, err
		}
		if taken+in.Days > emp.LeaveEntitlementDays {
			return nil, validationError("insufficient leave balance: %d of %d days already approved",
				taken, emp.LeaveEntitlementDays)
		}
	}

	now := time.Now().UTC()
	lr := &entity.LeaveRequest{
		ID:          id.New(),
		CompanyID:   actor.Company,
		Department:  actor.Department,
		EmployeeID:  actor.ID,
		Type:        in.Type,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Days:        in.Days,
		Reason:      utils.SanitizeString(in.Reason),
		ReviewState: workflow.NewReviewState(workflow.LeavePolicy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.leaves.Create(ctx, lr); err != nil {
		return nil, err
	}

	s.logger.Info("Leave request submitted",
		zap.String("id", lr.ID),
		zap.String("employee_id", lr.EmployeeID),
		zap.Int("days", lr.Days))

	s.notifyNextReviewer(ctx, lr, workflow.LeavePolicy.First())
	return lr, nil
}

// Get retrieves a leave request by id. Requests belonging to another company
// are reported as not found.
func (s *leaveServiceImpl) Get(ctx context.Context, actor workflow.Actor, requestID string) (*entity.LeaveRequest, error) {
	lr, err := s.leaves.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if lr.CompanyID != actor.Company {
		return nil, port.ErrNotFound
	}
	return lr, nil
}

// ListMine retrieves the actor's own leave requests
func (s *leaveServiceImpl) ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LeaveRequest, error) {
	return s.leaves.ListByEmployee(ctx, actor.ID, limit, offset)
}

// ListPendingReview retrieves leave requests waiting at the actor's stage
func (s *leaveServiceImpl) ListPendingReview(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LeaveRequest, error) {
	stage, err := stageForRole(workflow.LeavePolicy, actor.Role)
	if err != nil {
		return nil, err
	}
	return s.leaves.ListPendingForStage(ctx, actor.Company, stage, limit, offset)
}

// Decide applies one review decision with bounded retries on write conflicts
func (s *leaveServiceImpl) Decide(ctx context.Context, actor workflow.Actor, requestID string, decision workflow.Decision, note string) (*entity.LeaveRequest, error) {
	note = utils.SanitizeString(note)

	for attempt := 0; attempt < maxDecideAttempts; attempt++ {
		lr, err := s.leaves.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if lr.CompanyID != actor.Company {
			return nil, port.ErrNotFound
		}

		now := time.Now().UTC()
		outcome, err := workflow.Decide(workflow.LeavePolicy, &lr.ReviewState, actor, decision, note, now)
		if err != nil {
			return nil, err
		}

		lr.UpdatedAt = now
		if err := s.leaves.Update(ctx, lr); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				s.logger.Warn("Leave decide lost write race, retrying",
					zap.String("id", requestID),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		s.notifyDecision(ctx, lr, outcome, note)
		return lr, nil
	}

	return nil, port.ErrVersionConflict
}

func (s *leaveServiceImpl) notifyDecision(ctx context.Context, lr *entity.LeaveRequest, outcome workflow.Outcome, note string) {
	switch {
	case outcome.Decision == workflow.DecisionRejected:
		msg := fmt.Sprintf("Your %s leave request (%d days) was rejected.", lr.Type, lr.Days)
		if note != "" {
			msg += " Note: " + note
		}
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: lr.EmployeeID,
			CompanyID:   lr.CompanyID,
			Kind:        entity.NotificationKindLeave,
			Title:       "Leave request rejected",
			Message:     msg,
		})
	case outcome.Terminal:
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: lr.EmployeeID,
			CompanyID:   lr.CompanyID,
			Kind:        entity.NotificationKindLeave,
			Title:       "Leave request approved",
			Message:     fmt.Sprintf("Your %s leave request (%d days) has been fully approved.", lr.Type, lr.Days),
		})
	default:
		s.notifyNextReviewer(ctx, lr, outcome.NextStage)
	}
}

// notifyNextReviewer tells the holder of the stage's role that a request is
// waiting. A missing approver is logged; the transition itself already stands.
func (s *leaveServiceImpl) notifyNextReviewer(ctx context.Context, lr *entity.LeaveRequest, stage workflow.Stage) {
	role, err := workflow.LeavePolicy.RoleForStage(stage)
	if err != nil {
		return
	}

	approver, err := s.directory.FindApprover(ctx, role, port.Scope{
		CompanyID:  lr.CompanyID,
		Department: lr.Department,
	})
	if err != nil {
		s.logger.Warn("No approver found for leave review stage",
			zap.String("id", lr.ID),
			zap.String("role", role))
		return
	}

	s.notifier.Notify(ctx, port.Notice{
		RecipientID: approver.ID,
		CompanyID:   lr.CompanyID,
		Kind:        entity.NotificationKindLeave,
		Title:       "Leave request awaiting review",
		Message:     fmt.Sprintf("A %s leave request (%d days) is waiting for your review.", lr.Type, lr.Days),
	})
}

// stageForRole finds the policy stage a reviewer role is responsible for
func stageForRole(pol *workflow.Policy, role string) (workflow.Stage, error) {
	for _, stage := range pol.Stages() {
		r, err := pol.RoleForStage(stage)
		if err != nil {
			return "", err
		}
		if r == role {
			return stage, nil
		}
	}
	return "", workflow.ErrNotAuthorizedForStage
}
