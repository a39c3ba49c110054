package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffbridge/hr-payroll/internal/application/port"
	"github.com/staffbridge/hr-payroll/internal/domain/entity"
	"github.com/staffbridge/hr-payroll/internal/domain/workflow"
	"github.com/staffbridge/hr-payroll/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations("../../migrations"))
	return db
}

func seedEmployee(t *testing.T, db *database.DB, id string) {
	t.Helper()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := db.Exec(`
		INSERT INTO employees (
			id, company_id, department, first_name, last_name, email,
			password_hash, role, annual_salary, bank_name, bank_account,
			leave_entitlement_days, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, "acme", "engineering", "Test", "Employee", id+"@acme.test",
		"hash", "employee", 0, "", "", 0, 1, now, now)
	require.NoError(t, err)
}

func seedLeave(t *testing.T, repo *LeaveRepository, n int, employeeID, leaveType string, days int, status workflow.Status, start time.Time) {
	t.Helper()

	lr := &entity.LeaveRequest{
		ID:          fmt.Sprintf("lr-%d", n),
		CompanyID:   "acme",
		Department:  "engineering",
		EmployeeID:  employeeID,
		Type:        leaveType,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, days-1),
		Days:        days,
		ReviewState: workflow.ReviewState{Status: status, Stage: workflow.StageTeamLead},
		CreatedAt:   start,
		UpdatedAt:   start,
	}
	require.NoError(t, repo.Create(context.Background(), lr))
}

func TestApprovedDaysInYearCountsPaidApprovedLeaveOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewLeaveRepository(db.DB, zap.NewNop())
	march := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	seedEmployee(t, db, "emp-1")
	seedEmployee(t, db, "emp-2")

	seedLeave(t, repo, 1, "emp-1", entity.LeaveTypeAnnual, 10, workflow.StatusApproved, march)
	// unpaid leave never draws on the entitlement
	seedLeave(t, repo, 2, "emp-1", entity.LeaveTypeUnpaid, 5, workflow.StatusApproved, march.AddDate(0, 1, 0))
	seedLeave(t, repo, 3, "emp-1", entity.LeaveTypeSick, 4, workflow.StatusPending, march.AddDate(0, 2, 0))
	seedLeave(t, repo, 4, "emp-1", entity.LeaveTypeAnnual, 7, workflow.StatusApproved, march.AddDate(-1, 0, 0))
	seedLeave(t, repo, 5, "emp-2", entity.LeaveTypeAnnual, 3, workflow.StatusApproved, march)

	total, err := repo.ApprovedDaysInYear(context.Background(), "emp-1", 2026)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestLeaveUpdateVersionConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewLeaveRepository(db.DB, zap.NewNop())
	ctx := context.Background()
	march := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	seedEmployee(t, db, "emp-1")
	seedLeave(t, repo, 1, "emp-1", entity.LeaveTypeAnnual, 5, workflow.StatusPending, march)

	first, err := repo.GetByID(ctx, "lr-1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "lr-1")
	require.NoError(t, err)

	first.Status = workflow.StatusApproved
	require.NoError(t, repo.Update(ctx, first))

	second.Status = workflow.StatusRejected
	assert.ErrorIs(t, repo.Update(ctx, second), port.ErrVersionConflict)
}
