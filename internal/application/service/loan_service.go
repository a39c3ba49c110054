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

// CreateLoanInput carries loan request creation fields
type CreateLoanInput struct {
	Amount          int64
	RepaymentMonths int
	Purpose         string
}

// LoanService is the loan domain adapter around the approval workflow engine
type LoanService interface {
	Create(ctx context.Context, actor workflow.Actor, in CreateLoanInput) (*entity.LoanRequest, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (*entity.LoanRequest, error)
	ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LoanRequest, error)
	ListPendingReview(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LoanRequest, error)
	Decide(ctx context.Context, actor workflow.Actor, requestID string, decision workflow.Decision, note string) (*entity.LoanRequest, error)
}

type loanServiceImpl struct {
	loans     port.LoanRepository
	directory port.ReviewerDirectory
	notifier  port.Notifier
	logger    *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(
	loans port.LoanRepository,
	directory port.ReviewerDirectory,
	notifier port.Notifier,
	logger *zap.Logger,
) LoanService {
	return &loanServiceImpl{
		loans:     loans,
		directory: directory,
		notifier:  notifier,
		logger:    logger,
	}
}

// MonthlyDeduction computes the ceiling division of amount by months
func MonthlyDeduction(amount int64, months int) int64 {
	return (amount + int64(months) - 1) / int64(months)
}

// Create validates and submits a loan request at the first review stage
func (s *loanServiceImpl) Create(ctx context.Context, actor workflow.Actor, in CreateLoanInput) (*entity.LoanRequest, error) {
	if err := utils.ValidateAmount(in.Amount); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if in.RepaymentMonths <= 0 {
		return nil, validationError("repayment period must be positive")
	}

	now := time.Now().UTC()
	lr := &entity.LoanRequest{
		ID:               id.New(),
		CompanyID:        actor.Company,
		Department:       actor.Department,
		EmployeeID:       actor.ID,
		Amount:           in.Amount,
		RepaymentMonths:  in.RepaymentMonths,
		MonthlyDeduction: MonthlyDeduction(in.Amount, in.RepaymentMonths),
		Purpose:          utils.SanitizeString(in.Purpose),
		ReviewState:      workflow.NewReviewState(workflow.LoanPolicy),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.loans.Create(ctx, lr); err != nil {
		return nil, err
	}

	s.logger.Info("Loan request submitted",
		zap.String("id", lr.ID),
		zap.String("employee_id", lr.EmployeeID),
		zap.Int64("amount", lr.Amount),
		zap.Int64("monthly_deduction", lr.MonthlyDeduction))

	s.notifyNextReviewer(ctx, lr, workflow.LoanPolicy.First())
	return lr, nil
}

// Get retrieves a loan request by id. Requests belonging to another company
// are reported as not found.
func (s *loanServiceImpl) Get(ctx context.Context, actor workflow.Actor, requestID string) (*entity.LoanRequest, error) {
	lr, err := s.loans.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if lr.CompanyID != actor.Company {
		return nil, port.ErrNotFound
	}
	return lr, nil
}

// ListMine retrieves the actor's own loan requests
func (s *loanServiceImpl) ListMine(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LoanRequest, error) {
	return s.loans.ListByEmployee(ctx, actor.ID, limit, offset)
}

// ListPendingReview retrieves loan requests waiting at the actor's stage
func (s *loanServiceImpl) ListPendingReview(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.LoanRequest, error) {
	stage, err := stageForRole(workflow.LoanPolicy, actor.Role)
	if err != nil {
		return nil, err
	}
	return s.loans.ListPendingForStage(ctx, actor.Company, stage, limit, offset)
}

// Decide applies one review decision with bounded retries on write conflicts
func (s *loanServiceImpl) Decide(ctx context.Context, actor workflow.Actor, requestID string, decision workflow.Decision, note string) (*entity.LoanRequest, error) {
	note = utils.SanitizeString(note)

	for attempt := 0; attempt < maxDecideAttempts; attempt++ {
		lr, err := s.loans.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if lr.CompanyID != actor.Company {
			return nil, port.ErrNotFound
		}

		now := time.Now().UTC()
		outcome, err := workflow.Decide(workflow.LoanPolicy, &lr.ReviewState, actor, decision, note, now)
		if err != nil {
			return nil, err
		}

		lr.UpdatedAt = now
		if err := s.loans.Update(ctx, lr); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				s.logger.Warn("Loan decide lost write race, retrying",
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

func (s *loanServiceImpl) notifyDecision(ctx context.Context, lr *entity.LoanRequest, outcome workflow.Outcome, note string) {
	switch {
	case outcome.Decision == workflow.DecisionRejected:
		msg := fmt.Sprintf("Your loan request of %d was rejected.", lr.Amount)
		if note != "" {
			msg += " Note: " + note
		}
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: lr.EmployeeID,
			CompanyID:   lr.CompanyID,
			Kind:        entity.NotificationKindLoan,
			Title:       "Loan request rejected",
			Message:     msg,
		})
	case outcome.Terminal:
		s.notifier.Notify(ctx, port.Notice{
			RecipientID: lr.EmployeeID,
			CompanyID:   lr.CompanyID,
			Kind:        entity.NotificationKindLoan,
			Title:       "Loan request approved",
			Message: fmt.Sprintf("Your loan of %d was approved; %d will be deducted monthly over %d months.",
				lr.Amount, lr.MonthlyDeduction, lr.RepaymentMonths),
		})
	default:
		s.notifyNextReviewer(ctx, lr, outcome.NextStage)
	}
}

func (s *loanServiceImpl) notifyNextReviewer(ctx context.Context, lr *entity.LoanRequest, stage workflow.Stage) {
	role, err := workflow.LoanPolicy.RoleForStage(stage)
	if err != nil {
		return
	}

	approver, err := s.directory.FindApprover(ctx, role, port.Scope{
		CompanyID:  lr.CompanyID,
		Department: lr.Department,
	})
	if err != nil {
		s.logger.Warn("No approver found for loan review stage",
			zap.String("id", lr.ID),
			zap.String("role", role))
		return
	}

	s.notifier.Notify(ctx, port.Notice{
		RecipientID: approver.ID,
		CompanyID:   lr.CompanyID,
		Kind:        entity.NotificationKindLoan,
		Title:       "Loan request awaiting review",
		Message:     fmt.Sprintf("A loan request of %d is waiting for your review.", lr.Amount),
	})
}
