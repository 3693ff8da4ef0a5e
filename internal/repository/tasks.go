package repository

import (
	"context"
	"fmt"

	"task-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository stores tasks and their assignees.
type TaskRepository struct {
	db *gorm.DB
}

var _ Repository[models.Task] = (*TaskRepository)(nil)

// Create inserts the task and sets its assignees.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task, assigneeIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if err := replaceLinks(tx, taskAssigneesTable, "task_id", t.ID, "worker_id", assigneeIDs); err != nil {
			return fmt.Errorf("set task assignees: %w", err)
		}
		return nil
	})
}

// Get loads a task with its type, project and assignees.
func (r *TaskRepository) Get(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	err := r.db.WithContext(ctx).
		Preload("TaskType").
		Preload("Project").
		Preload("Assignees", func(db *gorm.DB) *gorm.DB { return db.Order("username") }).
		First(&t, id).Error
	if err != nil {
		return nil, translate(err, "get task")
	}
	return &t, nil
}

// Find loads only the task row.
func (r *TaskRepository) Find(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, "get task")
	}
	return &t, nil
}

// Update saves the task; a nil assigneeIDs leaves assignees untouched.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task, assigneeIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if assigneeIDs == nil {
			return nil
		}
		if err := replaceLinks(tx, taskAssigneesTable, "task_id", t.ID, "worker_id", assigneeIDs); err != nil {
			return fmt.Errorf("set task assignees: %w", err)
		}
		return nil
	})
}

// Delete removes a task and its assignments.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unlinkAll(tx, taskAssigneesTable, "task_id", id); err != nil {
			return fmt.Errorf("remove task assignees: %w", err)
		}
		return deleteByID(tx, &models.Task{}, id, "task")
	})
}

// List filters by name and orders by deadline, name, completion.
func (r *TaskRepository) List(ctx context.Context, q ListQuery) (Page[models.Task], error) {
	base := withSearch(r.db.WithContext(ctx).Model(&models.Task{}), "name", q.Search)
	page, err := paginate[models.Task](base, q.Page, DefaultPageSize, taskListing)
	if err != nil {
		return page, fmt.Errorf("list tasks: %w", err)
	}
	return page, nil
}

// ListCompleted pages through completed tasks.
func (r *TaskRepository) ListCompleted(ctx context.Context, q ListQuery) (Page[models.Task], error) {
	base := r.db.WithContext(ctx).Model(&models.Task{}).Where("is_completed = ?", true)
	base = withSearch(base, "name", q.Search)
	page, err := paginate[models.Task](base, q.Page, DefaultPageSize, taskListing)
	if err != nil {
		return page, fmt.Errorf("list completed tasks: %w", err)
	}
	return page, nil
}

func taskListing(db *gorm.DB) *gorm.DB {
	return db.Preload("TaskType").
		Order("deadline").Order("name").Order("is_completed").Order("id")
}

// IsAssigned reports whether the worker is an assignee of the task.
func (r *TaskRepository) IsAssigned(ctx context.Context, taskID, workerID uint) (bool, error) {
	ok, err := linked(r.db.WithContext(ctx), taskAssigneesTable, map[string]any{"task_id": taskID, "worker_id": workerID})
	if err != nil {
		return false, fmt.Errorf("check task assignment: %w", err)
	}
	return ok, nil
}

func (r *TaskRepository) AddAssignee(ctx context.Context, taskID, workerID uint) error {
	if err := link(r.db.WithContext(ctx), taskAssigneesTable, map[string]any{"task_id": taskID, "worker_id": workerID}); err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, workerID uint) error {
	if err := unlink(r.db.WithContext(ctx), taskAssigneesTable, "task_id", taskID, "worker_id", workerID); err != nil {
		return fmt.Errorf("unassign task: %w", err)
	}
	return nil
}

// AssigneeIDs lists the ids of the task's assignees.
func (r *TaskRepository) AssigneeIDs(ctx context.Context, taskID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Table(taskAssigneesTable).Where("task_id = ?", taskID).
		Order("worker_id").Pluck("worker_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list task assignees: %w", err)
	}
	return ids, nil
}

// MarkCompleted sets is_completed on the task.
func (r *TaskRepository) MarkCompleted(ctx context.Context, taskID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Task{ID: taskID}).
		Update("is_completed", true).Error
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}
