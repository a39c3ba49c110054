package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
	"github.com/staffbridge/hr-payroll/pkg/id"
	"github.com/staffbridge/hr-payroll/pkg/utils"
)

var validRoles = map[string]bool{
	entity.RoleEmployee: true,
	entity.RoleTeamLead: true,
	entity.RoleHR:       true,
	entity.RoleMD:       true,
	entity.RoleAdmin:    true,
}

// CreateEmployeeInput carries employee creation fields
type CreateEmployeeInput struct {
	Department           string
	FirstName            string
	LastName             string
	Email                string
	Password             string
	Role                 string
	AnnualSalary         int64
	BankName             string
	BankAccount          string
	LeaveEntitlementDays int
}

// UpdateEmployeeInput carries mutable employee fields
type UpdateEmployeeInput struct {
	Department           string
	FirstName            string
	LastName             string
	Role                 string
	AnnualSalary         int64
	BankName             string
	BankAccount          string
	LeaveEntitlementDays int
}

// EmployeeService manages tenant-scoped employee records
type EmployeeService interface {
	Create(ctx context.Context, actor workflow.Actor, in CreateEmployeeInput) (*entity.Employee, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (*entity.Employee, error)
	List(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.Employee, error)
	Update(ctx context.Context, actor workflow.Actor, id string, in UpdateEmployeeInput) (*entity.Employee, error)
	Deactivate(ctx context.Context, actor workflow.Actor, id string) error
}

type employeeServiceImpl struct {
	employees  port.EmployeeRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employees port.EmployeeRepository, bcryptCost int, logger *zap.Logger) EmployeeService {
	return &employeeServiceImpl{
		employees:  employees,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create adds an employee to the actor's company
func (s *employeeServiceImpl) Create(ctx context.Context, actor workflow.Actor, in CreateEmployeeInput) (*entity.Employee, error) {
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, validationError("first and last name are required")
	}
	if len(in.Password) < 8 {
		return nil, validationError("password must be at least 8 characters")
	}
	if !validRoles[in.Role] {
		return nil, validationError("unknown role %q", in.Role)
	}
	if in.AnnualSalary < 0 {
		return nil, validationError("annual salary must not be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	emp := &entity.Employee{
		ID:                   id.New(),
		CompanyID:            actor.Company,
		Department:           in.Department,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Email:                in.Email,
		PasswordHash:         string(hash),
		Role:                 in.Role,
		AnnualSalary:         in.AnnualSalary,
		BankName:             in.BankName,
		BankAccount:          in.BankAccount,
		LeaveEntitlementDays: in.LeaveEntitlementDays,
		Active:               true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.Info("Employee created",
		zap.String("id", emp.ID),
		zap.String("company_id", emp.CompanyID),
		zap.String("role", emp.Role))
	return emp, nil
}

// Get retrieves an employee within the actor's company
func (s *employeeServiceImpl) Get(ctx context.Context, actor workflow.Actor, employeeID string) (*entity.Employee, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp.CompanyID != actor.Company {
		return nil, port.ErrNotFound
	}
	return emp, nil
}

// List retrieves the actor's company employees with pagination
func (s *employeeServiceImpl) List(ctx context.Context, actor workflow.Actor, limit, offset int) ([]*entity.Employee, error) {
	return s.employees.List(ctx, actor.Company, limit, offset)
}

// Update saves mutable employee fields
func (s *employeeServiceImpl) Update(ctx context.Context, actor workflow.Actor, employeeID string, in UpdateEmployeeInput) (*entity.Employee, error) {
	emp, err := s.Get(ctx, actor, employeeID)
	if err != nil {
		return nil, err
	}

	if in.Role != "" && !validRoles[in.Role] {
		return nil, validationError("unknown role %q", in.Role)
	}
	if in.AnnualSalary < 0 {
		return nil, validationError("annual salary must not be negative")
	}

	if in.Department != "" {
		emp.Department = in.Department
	}
	if in.FirstName != "" {
		emp.FirstName = in.FirstName
	}
	if in.LastName != "" {
		emp.LastName = in.LastName
	}
	if in.Role != "" {
		emp.Role = in.Role
	}
	if in.AnnualSalary > 0 {
		emp.AnnualSalary = in.AnnualSalary
	}
	if in.BankName != "" {
		emp.BankName = in.BankName
	}
	if in.BankAccount != "" {
		emp.BankAccount = in.BankAccount
	}
	if in.LeaveEntitlementDays > 0 {
		emp.LeaveEntitlementDays = in.LeaveEntitlementDays
	}
	emp.UpdatedAt = time.Now().UTC()

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Deactivate soft-deletes an employee; all records are retained for audit
func (s *employeeServiceImpl) Deactivate(ctx context.Context, actor workflow.Actor, employeeID string) error {
	if _, err := s.Get(ctx, actor, employeeID); err != nil {
		return err
	}
	return s.employees.Deactivate(ctx, employeeID)
}
