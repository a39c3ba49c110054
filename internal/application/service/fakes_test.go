package service

import (
	"context"
	"sync"
	"time"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
)

// In-memory fakes with the same versioning semantics as the SQL repositories.

type fakeLeaveRepo struct {
	mu    sync.Mutex
	items map[string]*entity.LeaveRequest
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{items: make(map[string]*entity.LeaveRequest)}
}

func cloneLeave(lr *entity.LeaveRequest) *entity.LeaveRequest {
	cp := *lr
	cp.Trail = append([]workflow.ReviewStep(nil), lr.Trail...)
	return &cp
}

func (r *fakeLeaveRepo) Create(_ context.Context, lr *entity.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[lr.ID] = cloneLeave(lr)
	return nil
}

func (r *fakeLeaveRepo) GetByID(_ context.Context, id string) (*entity.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lr, ok := r.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return cloneLeave(lr), nil
}

func (r *fakeLeaveRepo) ListByEmployee(_ context.Context, employeeID string, _, _ int) ([]*entity.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LeaveRequest
	for _, lr := range r.items {
		if lr.EmployeeID == employeeID {
			out = append(out, cloneLeave(lr))
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) ListPendingForStage(_ context.Context, companyID string, stage workflow.Stage, _, _ int) ([]*entity.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LeaveRequest
	for _, lr := range r.items {
		if lr.CompanyID == companyID && lr.Status == workflow.StatusPending && lr.Stage == stage {
			out = append(out, cloneLeave(lr))
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) ListPendingBefore(_ context.Context, cutoff time.Time, _ int) ([]*entity.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LeaveRequest
	for _, lr := range r.items {
		if lr.Status == workflow.StatusPending && lr.CreatedAt.Before(cutoff) {
			out = append(out, cloneLeave(lr))
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) Update(_ context.Context, lr *entity.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[lr.ID]
	if !ok {
		return port.ErrNotFound
	}
	if stored.Version != lr.Version {
		return port.ErrVersionConflict
	}
	lr.Version++
	r.items[lr.ID] = cloneLeave(lr)
	return nil
}

func (r *fakeLeaveRepo) ApprovedDaysInYear(_ context.Context, employeeID string, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, lr := range r.items {
		if lr.EmployeeID == employeeID && lr.Status == workflow.StatusApproved &&
			lr.Type != entity.LeaveTypeUnpaid && lr.StartDate.Year() == year {
			total += lr.Days
		}
	}
	return total, nil
}

type fakeLoanRepo struct {
	mu    sync.Mutex
	items map[string]*entity.LoanRequest
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{items: make(map[string]*entity.LoanRequest)}
}

func cloneLoan(lr *entity.LoanRequest) *entity.LoanRequest {
	cp := *lr
	cp.Trail = append([]workflow.ReviewStep(nil), lr.Trail...)
	return &cp
}

func (r *fakeLoanRepo) Create(_ context.Context, lr *entity.LoanRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[lr.ID] = cloneLoan(lr)
	return nil
}

func (r *fakeLoanRepo) GetByID(_ context.Context, id string) (*entity.LoanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lr, ok := r.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return cloneLoan(lr), nil
}

func (r *fakeLoanRepo) ListByEmployee(_ context.Context, employeeID string, _, _ int) ([]*entity.LoanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LoanRequest
	for _, lr := range r.items {
		if lr.EmployeeID == employeeID {
			out = append(out, cloneLoan(lr))
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListPendingForStage(_ context.Context, companyID string, stage workflow.Stage, _, _ int) ([]*entity.LoanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LoanRequest
	for _, lr := range r.items {
		if lr.CompanyID == companyID && lr.Status == workflow.StatusPending && lr.Stage == stage {
			out = append(out, cloneLoan(lr))
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListPendingBefore(_ context.Context, cutoff time.Time, _ int) ([]*entity.LoanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LoanRequest
	for _, lr := range r.items {
		if lr.Status == workflow.StatusPending && lr.CreatedAt.Before(cutoff) {
			out = append(out, cloneLoan(lr))
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ListActiveApproved(_ context.Context, employeeID string) ([]*entity.LoanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.LoanRequest
	for _, lr := range r.items {
		if lr.EmployeeID == employeeID && lr.Status == workflow.StatusApproved && lr.OutstandingMonths() > 0 {
			out = append(out, cloneLoan(lr))
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) Update(_ context.Context, lr *entity.LoanRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[lr.ID]
	if !ok {
		return port.ErrNotFound
	}
	if stored.Version != lr.Version {
		return port.ErrVersionConflict
	}
	lr.Version++
	r.items[lr.ID] = cloneLoan(lr)
	return nil
}

type fakeAppraisalRepo struct {
	mu    sync.Mutex
	items map[string]*entity.AppraisalRequest
}

func newFakeAppraisalRepo() *fakeAppraisalRepo {
	return &fakeAppraisalRepo{items: make(map[string]*entity.AppraisalRequest)}
}

func cloneAppraisal(ar *entity.AppraisalRequest) *entity.AppraisalRequest {
	cp := *ar
	cp.Trail = append([]workflow.ReviewStep(nil), ar.Trail...)
	cp.Objectives = append([]entity.AppraisalObjective(nil), ar.Objectives...)
	return &cp
}

func (r *fakeAppraisalRepo) Create(_ context.Context, ar *entity.AppraisalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ar.ID] = cloneAppraisal(ar)
	return nil
}

func (r *fakeAppraisalRepo) GetByID(_ context.Context, id string) (*entity.AppraisalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ar, ok := r.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return cloneAppraisal(ar), nil
}

func (r *fakeAppraisalRepo) ListByEmployee(_ context.Context, employeeID string, _, _ int) ([]*entity.AppraisalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AppraisalRequest
	for _, ar := range r.items {
		if ar.EmployeeID == employeeID {
			out = append(out, cloneAppraisal(ar))
		}
	}
	return out, nil
}

func (r *fakeAppraisalRepo) ListPendingForStage(_ context.Context, companyID string, stage workflow.Stage, _, _ int) ([]*entity.AppraisalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AppraisalRequest
	for _, ar := range r.items {
		if ar.CompanyID == companyID && ar.Status == workflow.StatusPending && ar.Stage == stage {
			out = append(out, cloneAppraisal(ar))
		}
	}
	return out, nil
}

func (r *fakeAppraisalRepo) Update(_ context.Context, ar *entity.AppraisalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[ar.ID]
	if !ok {
		return port.ErrNotFound
	}
	if stored.Version != ar.Version {
		return port.ErrVersionConflict
	}
	ar.Version++
	r.items[ar.ID] = cloneAppraisal(ar)
	return nil
}

type fakeEmployeeRepo struct {
	mu    sync.Mutex
	items map[string]*entity.Employee
}

func newFakeEmployeeRepo(emps ...*entity.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{items: make(map[string]*entity.Employee)}
	for _, e := range emps {
		cp := *e
		r.items[e.ID] = &cp
	}
	return r
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *entity.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEmployeeRepo) GetByEmail(_ context.Context, email string) (*entity.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.items {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, port.ErrNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context, companyID string, _, _ int) ([]*entity.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Employee
	for _, e := range r.items {
		if e.CompanyID == companyID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *entity.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return port.ErrNotFound
	}
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return port.ErrNotFound
	}
	e.Active = false
	return nil
}

func (r *fakeEmployeeRepo) ListActive(_ context.Context, companyID string) ([]*entity.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Employee
	for _, e := range r.items {
		if e.CompanyID == companyID && e.Active {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeDirectory resolves review roles from a static role -> employee table
type fakeDirectory struct {
	byRole map[string]*entity.Employee
}

func (d *fakeDirectory) FindApprover(_ context.Context, role string, _ port.Scope) (*entity.Employee, error) {
	e, ok := d.byRole[role]
	if !ok {
		return nil, port.ErrNotFound
	}
	return e, nil
}

// recordingNotifier captures dispatched notices for assertions
type recordingNotifier struct {
	mu      sync.Mutex
	notices []port.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice port.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) sent() []port.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]port.Notice(nil), n.notices...)
}

// fakeSessions is an in-memory port.SessionStore
type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]string)}
}

func (s *fakeSessions) Save(_ context.Context, token, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *fakeSessions) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return "", port.ErrNotFound
	}
	return userID, nil
}

func (s *fakeSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
