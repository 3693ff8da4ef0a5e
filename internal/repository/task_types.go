package repository

import (
	"context"
	"fmt"

	"task-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskTypeRepository stores task types.
type TaskTypeRepository struct {
	db *gorm.DB
}

var _ Repository[models.TaskType] = (*TaskTypeRepository)(nil)

func (r *TaskTypeRepository) Create(ctx context.Context, tt *models.TaskType) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(tt).Error; err != nil {
		return fmt.Errorf("create task type: %w", err)
	}
	return nil
}

// Get loads a task type with its tasks.
func (r *TaskTypeRepository) Get(ctx context.Context, id uint) (*models.TaskType, error) {
	var tt models.TaskType
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("deadline").Order("name") }).
		First(&tt, id).Error
	if err != nil {
		return nil, translate(err, "get task type")
	}
	return &tt, nil
}

func (r *TaskTypeRepository) Update(ctx context.Context, tt *models.TaskType) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(tt).Error; err != nil {
		return fmt.Errorf("update task type: %w", err)
	}
	return nil
}

// Delete removes a task type; its tasks stay with a null type.
func (r *TaskTypeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("task_type_id = ?", id).
			Update("task_type_id", nil).Error; err != nil {
			return fmt.Errorf("detach tasks from task type: %w", err)
		}
		return deleteByID(tx, &models.TaskType{}, id, "task type")
	})
}

// List filters by name and orders by name.
func (r *TaskTypeRepository) List(ctx context.Context, q ListQuery) (Page[models.TaskType], error) {
	base := withSearch(r.db.WithContext(ctx).Model(&models.TaskType{}), "name", q.Search)
	page, err := paginate[models.TaskType](base, q.Page, DefaultPageSize, func(db *gorm.DB) *gorm.DB {
		return db.Order("name").Order("id")
	})
	if err != nil {
		return page, fmt.Errorf("list task types: %w", err)
	}
	return page, nil
}

// NameTaken reports whether another task type already uses name.
func (r *TaskTypeRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TaskType{}).
		Where("name = ? AND id <> ?", name, exceptID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check task type name: %w", err)
	}
	return n > 0, nil
}

// Exists reports whether a task type with id exists.
func (r *TaskTypeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.TaskType{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check task type: %w", err)
	}
	return n > 0, nil
}
