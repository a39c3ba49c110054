package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	teamlead = Actor{ID: "u-teamlead", Role: "teamlead", Department: "eng", Company: "acme"}
	hrMgr    = Actor{ID: "u-hr", Role: "hr", Department: "eng", Company: "acme"}
	md       = Actor{ID: "u-md", Role: "md", Department: "eng", Company: "acme"}
)

func pendingLeave() *ReviewState {
	st := NewReviewState(LeavePolicy)
	return &st
}

func TestDecide_FullApprovalChain(t *testing.T) {
	st := pendingLeave()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	out, err := Decide(LeavePolicy, st, teamlead, DecisionApproved, "", now)
	require.NoError(t, err)
	assert.False(t, out.Terminal)
	assert.Equal(t, StageHR, out.NextStage)
	assert.Equal(t, "hr", out.NextRole)
	assert.Equal(t, StatusPending, st.Status)
	assert.Equal(t, StageHR, st.Stage)
	assert.Len(t, st.Trail, 1)

	out, err = Decide(LeavePolicy, st, hrMgr, DecisionApproved, "", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, out.Terminal)
	assert.Equal(t, StageMD, st.Stage)
	assert.Len(t, st.Trail, 2)

	out, err = Decide(LeavePolicy, st, md, DecisionApproved, "", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, out.Terminal)
	assert.Equal(t, StatusApproved, st.Status)
	assert.Len(t, st.Trail, 3)
}

func TestDecide_RoleGating(t *testing.T) {
	st := pendingLeave()

	// hr tries to review while the request sits at the teamlead stage
	_, err := Decide(LeavePolicy, st, hrMgr, DecisionApproved, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrNotAuthorizedForStage)

	// no mutation on failure
	assert.Equal(t, StatusPending, st.Status)
	assert.Equal(t, StageTeamLead, st.Stage)
	assert.Empty(t, st.Trail)
}

func TestDecide_RejectIsTerminal(t *testing.T) {
	st := pendingLeave()
	now := time.Now().UTC()

	out, err := Decide(LeavePolicy, st, teamlead, DecisionRejected, "incomplete", now)
	require.NoError(t, err)
	assert.True(t, out.Terminal)
	assert.Equal(t, StatusRejected, st.Status)
	require.Len(t, st.Trail, 1)
	assert.Equal(t, DecisionRejected, st.Trail[0].Action)
	assert.Equal(t, "incomplete", st.Trail[0].Note)

	// any subsequent decide fails without touching state
	for _, actor := range []Actor{teamlead, hrMgr, md} {
		for _, d := range []Decision{DecisionApproved, DecisionRejected} {
			_, err := Decide(LeavePolicy, st, actor, d, "", now)
			assert.ErrorIs(t, err, ErrAlreadyReviewed)
		}
	}
	assert.Len(t, st.Trail, 1)
	assert.Equal(t, StatusRejected, st.Status)
}

func TestDecide_TerminalStatusesAreImmutable(t *testing.T) {
	for _, status := range []Status{StatusApproved, StatusRejected, StatusExpired} {
		st := &ReviewState{Status: status, Stage: StageTeamLead}
		_, err := Decide(LeavePolicy, st, teamlead, DecisionApproved, "", time.Now().UTC())
		assert.ErrorIs(t, err, ErrAlreadyReviewed, "status %s", status)
		assert.Equal(t, status, st.Status)
		assert.Empty(t, st.Trail)
	}
}

func TestDecide_AlreadyReviewedWinsOverRoleCheck(t *testing.T) {
	st := &ReviewState{Status: StatusApproved, Stage: StageTeamLead}
	// hr would also fail the role check at this stage; AlreadyReviewed must win
	_, err := Decide(LeavePolicy, st, hrMgr, DecisionApproved, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestDecide_NeedsRevisionBlocksEngine(t *testing.T) {
	st := &ReviewState{Status: StatusNeedsRevision, Stage: StageTeamLead}
	_, err := Decide(AppraisalPolicy, st, teamlead, DecisionApproved, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestDecide_RejectsUnknownDecision(t *testing.T) {
	st := pendingLeave()
	_, err := Decide(LeavePolicy, st, teamlead, Decision("ESCALATED"), "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidDecision)
	assert.Empty(t, st.Trail)

	// revision requests go through the appraisal adapter, never the engine
	_, err = Decide(AppraisalPolicy, st, teamlead, DecisionRevisionRequested, "", time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

// Stage progression never skips or regresses regardless of the approval order
// attempted; only the stage's own role can advance it by one.
func TestDecide_MonotonicStageProgression(t *testing.T) {
	st := pendingLeave()
	now := time.Now().UTC()
	actors := map[string]Actor{"teamlead": teamlead, "hr": hrMgr, "md": md}

	expected := LeavePolicy.Stages()
	for i, stage := range expected {
		assert.Equal(t, stage, st.Stage)

		// every other role is refused at this stage
		for role, actor := range actors {
			required, err := LeavePolicy.RoleForStage(stage)
			require.NoError(t, err)
			if role == required {
				continue
			}
			_, err = Decide(LeavePolicy, st, actor, DecisionApproved, "", now)
			assert.ErrorIs(t, err, ErrNotAuthorizedForStage)
			assert.Equal(t, stage, st.Stage)
		}

		required, err := LeavePolicy.RoleForStage(stage)
		require.NoError(t, err)
		_, err = Decide(LeavePolicy, st, actors[required], DecisionApproved, "", now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	assert.Equal(t, StatusApproved, st.Status)
	assert.Len(t, st.Trail, len(expected))

	// trail is in stage order with non-decreasing dates
	for i, step := range st.Trail {
		role, err := LeavePolicy.RoleForStage(expected[i])
		require.NoError(t, err)
		assert.Equal(t, role, step.Role)
		if i > 0 {
			assert.False(t, step.Date.Before(st.Trail[i-1].Date))
		}
	}
}

func TestDecide_TrailGrowsByExactlyOne(t *testing.T) {
	st := pendingLeave()
	now := time.Now().UTC()

	before := len(st.Trail)
	_, err := Decide(LeavePolicy, st, teamlead, DecisionApproved, "", now)
	require.NoError(t, err)
	assert.Equal(t, before+1, len(st.Trail))

	first := st.Trail[0]
	_, err = Decide(LeavePolicy, st, hrMgr, DecisionApproved, "", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, before+2, len(st.Trail))
	// earlier entries are never altered
	assert.Equal(t, first, st.Trail[0])
}
