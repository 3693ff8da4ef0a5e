package tracker

import (
	"context"
	"fmt"
	"time"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"

	"go.uber.org/zap"
)

// CreateTask creates a task. If in.ProjectID is set the task is bound to
// that project and gets the project checks.
func (s *Service) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	return s.saveTask(ctx, 0, 0, in)
}

// UpdateTask replaces a task's fields and assignees. Without a project in
// in, the task stays in its current project and gets that project's checks.
func (s *Service) UpdateTask(ctx context.Context, id uint, in TaskInput) (*models.Task, error) {
	return s.saveTask(ctx, id, 0, in)
}

// CreateProjectTask creates a task inside the project. Assignees must be
// candidates of the project and the deadline must fit the project's.
func (s *Service) CreateProjectTask(ctx context.Context, projectID uint, in TaskInput) (*models.Task, error) {
	return s.saveTask(ctx, 0, projectID, in)
}

// UpdateProjectTask updates a task that belongs to the project.
func (s *Service) UpdateProjectTask(ctx context.Context, projectID, taskID uint, in TaskInput) (*models.Task, error) {
	return s.saveTask(ctx, taskID, projectID, in)
}

// saveTask creates (taskID == 0) or updates a task. A non-zero projectID
// pins the task to that project; a missing project is then not-found
// rather than a field error.
func (s *Service) saveTask(ctx context.Context, taskID, projectID uint, in TaskInput) (*models.Task, error) {
	in.normalize()
	if projectID != 0 {
		in.ProjectID = &projectID
	}
	errs := rules.ValidateStruct(in)
	deadline, hasDeadline := parseDeadline(in.Deadline, errs)

	var task *models.Task
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		task = &models.Task{}
		if taskID != 0 {
			var err error
			if task, err = tx.Tasks.Find(ctx, taskID); err != nil {
				return err
			}
			if projectID != 0 && (task.ProjectID == nil || *task.ProjectID != projectID) {
				return notFound("task", taskID)
			}
			// the generic form has no project field; a task keeps its project
			if in.ProjectID == nil {
				in.ProjectID = task.ProjectID
			}
		}

		project, err := s.boundProject(ctx, tx, in.ProjectID, projectID != 0, errs)
		if err != nil {
			return err
		}
		if in.TaskTypeID != nil {
			ok, err := tx.TaskTypes.Exists(ctx, *in.TaskTypeID)
			if err != nil {
				return err
			}
			if !ok {
				errs.Add("taskType", msgInvalidChoice)
			}
		}

		if hasDeadline {
			var projectDeadline *time.Time
			if project != nil {
				projectDeadline = &project.Deadline
			}
			errs.Merge(rules.ValidateTaskDeadline(deadline, s.now(), projectDeadline))
		}

		if err := s.checkAssignees(ctx, tx, project, in.AssigneeIDs, errs); err != nil {
			return err
		}
		if err := errs.Err(); err != nil {
			return err
		}

		task.Name = in.Name
		task.Description = in.Description
		task.Deadline = deadline
		task.Priority = models.TaskPriority(in.Priority)
		task.TaskTypeID = in.TaskTypeID
		task.ProjectID = nil
		if project != nil {
			task.ProjectID = &project.ID
		}

		assignees := idsOrEmpty(in.AssigneeIDs)
		if taskID != 0 {
			err = tx.Tasks.Update(ctx, task, assignees)
		} else {
			err = tx.Tasks.Create(ctx, task, assignees)
		}
		if err != nil {
			return err
		}
		task, err = tx.Tasks.Get(ctx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("task saved", zap.Uint("task_id", task.ID), zap.Bool("created", taskID == 0))
	return task, nil
}

// boundProject loads the project a task refers to. An unknown id is a field
// error on free-form input and not-found when the project comes from the route.
func (s *Service) boundProject(ctx context.Context, tx *repository.Repositories, id *uint, fromRoute bool, errs rules.FieldErrors) (*models.Project, error) {
	if id == nil {
		return nil, nil
	}
	project, err := tx.Projects.Find(ctx, *id)
	if err == nil {
		return project, nil
	}
	if IsNotFound(err) && !fromRoute {
		errs.Add("project", msgInvalidChoice)
		return nil, nil
	}
	return nil, err
}

// checkAssignees rejects unknown workers and, for project tasks, workers
// outside the project's teams.
func (s *Service) checkAssignees(ctx context.Context, tx *repository.Repositories, project *models.Project, ids []uint, errs rules.FieldErrors) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := tx.Workers.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	checkIDs(errs, "assignees", missing)
	if project == nil {
		return nil
	}

	candidates, err := tx.Projects.Candidates(ctx, project.ID)
	if err != nil {
		return err
	}
	allowed := make(map[uint]struct{}, len(candidates)+len(missing))
	for _, w := range candidates {
		allowed[w.ID] = struct{}{}
	}
	for _, id := range missing {
		allowed[id] = struct{}{} // already reported
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := allowed[id]; !ok {
			errs.Add("assignees", fmt.Sprintf(msgMissingItemFmt, id))
		}
	}
	return nil
}
