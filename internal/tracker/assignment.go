package tracker

import (
	"context"

	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"

	"go.uber.org/zap"
)

// ToggleResult describes what a toggle did. Notice is set when the toggle
// was rejected by a business rule; the state is then unchanged.
type ToggleResult struct {
	Action rules.AssignmentAction
	Notice string
}

// Rejected reports whether the toggle was refused.
func (r ToggleResult) Rejected() bool {
	return r.Notice != ""
}

// ToggleTaskAssignment flips the actor's membership in the task's assignee
// set. Joining a task that belongs to a project requires membership in a
// team linked to that project; leaving is always allowed.
func (s *Service) ToggleTaskAssignment(ctx context.Context, actorID, taskID uint) (ToggleResult, error) {
	var res ToggleResult
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := requireWorker(ctx, tx, actorID); err != nil {
			return err
		}
		task, err := tx.Tasks.Find(ctx, taskID)
		if err != nil {
			return err
		}

		assigned, err := tx.Tasks.IsAssigned(ctx, taskID, actorID)
		if err != nil {
			return err
		}
		gc := rules.TaskAssignmentContext{
			AlreadyAssigned: assigned,
			HasProject:      task.ProjectID != nil,
		}
		if gc.HasProject && !assigned {
			gc.MemberOfProjectTeam, err = tx.Workers.InProjectTeam(ctx, actorID, *task.ProjectID)
			if err != nil {
				return err
			}
		}

		action, guard := rules.ToggleTaskAssignment(gc)
		res.Action = action
		switch action {
		case rules.ActionAdd:
			return tx.Tasks.AddAssignee(ctx, taskID, actorID)
		case rules.ActionRemove:
			return tx.Tasks.RemoveAssignee(ctx, taskID, actorID)
		default:
			res.Notice = guard.Reason
			return nil
		}
	})
	if err != nil {
		return ToggleResult{}, err
	}

	s.log.Info("task assignment toggled",
		zap.Uint("worker_id", actorID),
		zap.Uint("task_id", taskID),
		zap.Stringer("action", res.Action),
		zap.Bool("rejected", res.Rejected()),
	)
	switch res.Action {
	case rules.ActionAdd:
		s.publish(realtime.Event{Type: realtime.EventTaskAssigned, ActorID: actorID, TaskID: taskID}, actorID)
	case rules.ActionRemove:
		s.publish(realtime.Event{Type: realtime.EventTaskUnassigned, ActorID: actorID, TaskID: taskID}, actorID)
	}
	return res, nil
}

// ToggleTeamMembership adds the actor to the team or removes them. The
// team's members after the change hear about it, and so does the actor.
func (s *Service) ToggleTeamMembership(ctx context.Context, actorID, teamID uint) (rules.AssignmentAction, error) {
	var (
		action  rules.AssignmentAction
		members []uint
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := requireWorker(ctx, tx, actorID); err != nil {
			return err
		}
		exists, err := tx.Teams.Exists(ctx, teamID)
		if err != nil {
			return err
		}
		if !exists {
			return notFound("team", teamID)
		}

		member, err := tx.Teams.IsMember(ctx, teamID, actorID)
		if err != nil {
			return err
		}
		action = rules.ToggleTeamMembership(member)
		if action == rules.ActionRemove {
			err = tx.Teams.RemoveMember(ctx, teamID, actorID)
		} else {
			err = tx.Teams.AddMember(ctx, teamID, actorID)
		}
		if err != nil {
			return err
		}
		members, err = tx.Teams.MemberIDs(ctx, teamID)
		return err
	})
	if err != nil {
		return rules.ActionNone, err
	}

	s.log.Info("team membership toggled",
		zap.Uint("worker_id", actorID),
		zap.Uint("team_id", teamID),
		zap.Stringer("action", action),
	)
	evType := realtime.EventTeamJoined
	if action == rules.ActionRemove {
		evType = realtime.EventTeamLeft
	}
	s.publish(realtime.Event{Type: evType, ActorID: actorID, TeamID: teamID}, append(members, actorID)...)
	return action, nil
}
