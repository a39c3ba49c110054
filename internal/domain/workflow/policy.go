package workflow

// StageRule binds a stage to the single role authorized to review it
type StageRule struct {
	Stage Stage
	Role  string
}

// Policy is an immutable, ordered list of review stages for one request domain.
// It is pure lookup data and safe for concurrent use.
type Policy struct {
	name  string
	rules []StageRule
}

// Predefined policies per request domain.
var (
	LeavePolicy = NewPolicy("leave",
		StageRule{Stage: StageTeamLead, Role: "teamlead"},
		StageRule{Stage: StageHR, Role: "hr"},
		StageRule{Stage: StageMD, Role: "md"},
	)

	LoanPolicy = NewPolicy("loan",
		StageRule{Stage: StageTeamLead, Role: "teamlead"},
		StageRule{Stage: StageHR, Role: "hr"},
		StageRule{Stage: StageMD, Role: "md"},
	)

	AppraisalPolicy = NewPolicy("appraisal",
		StageRule{Stage: StageTeamLead, Role: "teamlead"},
		StageRule{Stage: StageHR, Role: "hr"},
	)
)

// NewPolicy creates a policy from ordered stage rules
func NewPolicy(name string, rules ...StageRule) *Policy {
	if len(rules) == 0 {
		panic("policy requires at least one stage")
	}
	return &Policy{name: name, rules: append([]StageRule(nil), rules...)}
}

// Name returns the policy's domain name
func (p *Policy) Name() string {
	return p.name
}

// First returns the initial stage
func (p *Policy) First() Stage {
	return p.rules[0].Stage
}

// RoleForStage returns the role authorized to review the given stage
func (p *Policy) RoleForStage(stage Stage) (string, error) {
	for _, r := range p.rules {
		if r.Stage == stage {
			return r.Role, nil
		}
	}
	return "", ErrUnknownStage
}

// NextStage returns the stage after the given one, or false if it is the last
func (p *Policy) NextStage(stage Stage) (Stage, bool) {
	for i, r := range p.rules {
		if r.Stage == stage {
			if i+1 < len(p.rules) {
				return p.rules[i+1].Stage, true
			}
			return "", false
		}
	}
	return "", false
}

// Stages returns the ordered stage list
func (p *Policy) Stages() []Stage {
	stages := make([]Stage, len(p.rules))
	for i, r := range p.rules {
		stages[i] = r.Stage
	}
	return stages
}
