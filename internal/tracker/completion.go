package tracker

import (
	"context"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"

	"go.uber.org/zap"
)

// CompleteTask marks the task done. Completing a done task changes nothing.
// There is no way back.
func (s *Service) CompleteTask(ctx context.Context, actorID, taskID uint) (*models.Task, error) {
	var (
		task      *models.Task
		changed   bool
		assignees []uint
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		task, err = tx.Tasks.Find(ctx, taskID)
		if err != nil {
			return err
		}
		if changed = rules.CanCompleteTask(task.IsCompleted); !changed {
			return nil
		}
		if err := tx.Tasks.MarkCompleted(ctx, taskID); err != nil {
			return err
		}
		task.IsCompleted = true
		assignees, err = tx.Tasks.AssigneeIDs(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("task completed", zap.Uint("task_id", taskID), zap.Uint("worker_id", actorID))
		s.publish(realtime.Event{Type: realtime.EventTaskCompleted, ActorID: actorID, TaskID: taskID},
			append(assignees, actorID)...)
	}
	return task, nil
}

// CompletionResult describes a project completion attempt. Notice is set
// when open tasks blocked it.
type CompletionResult struct {
	Completed bool
	OpenTasks int64
	Notice    string
}

// CompleteProject marks the project done when none of its tasks is open.
// Otherwise the project is left as is and the result carries a notice.
func (s *Service) CompleteProject(ctx context.Context, actorID, projectID uint) (CompletionResult, error) {
	var (
		res     CompletionResult
		changed bool
		members []uint
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		project, err := tx.Projects.Find(ctx, projectID)
		if err != nil {
			return err
		}
		res.OpenTasks, err = tx.Projects.CountOpenTasks(ctx, projectID)
		if err != nil {
			return err
		}

		guard := rules.CanCompleteProject(rules.CompleteProjectContext{ProjectID: projectID, OpenTasks: res.OpenTasks})
		if !guard.Allowed {
			res.Notice = guard.Reason
			return nil
		}
		res.Completed = true
		if project.IsCompleted {
			return nil
		}
		if err := tx.Projects.MarkCompleted(ctx, projectID); err != nil {
			return err
		}
		changed = true
		members, err = tx.Projects.TeamMemberIDs(ctx, projectID)
		return err
	})
	if err != nil {
		return CompletionResult{}, err
	}

	if !res.Completed {
		s.log.Info("project completion rejected",
			zap.Uint("project_id", projectID),
			zap.Int64("open_tasks", res.OpenTasks),
		)
		return res, nil
	}
	if !changed {
		return res, nil
	}
	s.log.Info("project completed", zap.Uint("project_id", projectID), zap.Uint("worker_id", actorID))
	s.publish(realtime.Event{Type: realtime.EventProjectCompleted, ActorID: actorID, ProjectID: projectID},
		append(members, actorID)...)
	return res, nil
}
