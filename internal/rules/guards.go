// Package rules holds the assignment and completion rules of the tracker.
// Guards are pure functions: callers load the facts from the store, the
// guard decides, and the caller persists.
package rules

const (
	NoticeTeamMembershipRequired = "You need to be a member of team who is in project"
	NoticeProjectHasOpenTasks    = "It`s necessary to complete all tasks of project before finishing project"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// AssignmentAction is the effect of toggling a worker on a task or team.
type AssignmentAction int

const (
	ActionNone AssignmentAction = iota
	ActionAdd
	ActionRemove
)

func (a AssignmentAction) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	default:
		return "none"
	}
}

// TaskAssignmentContext provides the facts needed to toggle a task assignee.
type TaskAssignmentContext struct {
	// AlreadyAssigned reports whether the worker is in the task's assignee set.
	AlreadyAssigned bool
	// HasProject is true when the task is bound to a project.
	HasProject bool
	// MemberOfProjectTeam is true when the worker belongs to at least one
	// team linked to the task's project. Ignored when HasProject is false.
	MemberOfProjectTeam bool
}

// ToggleTaskAssignment decides what toggling a worker on a task does.
// Rules:
// - Removal is always allowed when already assigned
// - Tasks without a project accept any worker
// - Tasks with a project accept only members of a team linked to the project
func ToggleTaskAssignment(ctx TaskAssignmentContext) (AssignmentAction, GuardResult) {
	if ctx.AlreadyAssigned {
		return ActionRemove, GuardResult{Allowed: true}
	}
	if !ctx.HasProject || ctx.MemberOfProjectTeam {
		return ActionAdd, GuardResult{Allowed: true}
	}
	return ActionNone, GuardResult{
		Allowed: false,
		Reason:  NoticeTeamMembershipRequired,
	}
}

// ToggleTeamMembership decides what toggling a worker on a team does.
// There is no gating rule: members leave, non-members join.
func ToggleTeamMembership(isMember bool) AssignmentAction {
	if isMember {
		return ActionRemove
	}
	return ActionAdd
}

// CanCompleteTask reports whether a task needs to be written.
// Completing an already-completed task is allowed and is a no-op.
func CanCompleteTask(isCompleted bool) (changed bool) {
	return !isCompleted
}

// CompleteProjectContext provides context for project completion guards.
type CompleteProjectContext struct {
	ProjectID uint
	OpenTasks int64
}

// CanCompleteProject evaluates whether a project can be marked complete.
// Rules:
// - Every task of the project must be completed
func CanCompleteProject(ctx CompleteProjectContext) GuardResult {
	if ctx.OpenTasks > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  NoticeProjectHasOpenTasks,
		}
	}
	return GuardResult{Allowed: true}
}
