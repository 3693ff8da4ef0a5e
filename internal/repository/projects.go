package repository

import (
	"context"
	"fmt"

	"task-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectRepository stores projects and their team links.
type ProjectRepository struct {
	db *gorm.DB
}

var _ Repository[models.Project] = (*ProjectRepository)(nil)

// Create inserts the project and links its teams.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project, teamIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		if err := replaceLinks(tx, projectTeamsTable, "project_id", p.ID, "team_id", teamIDs); err != nil {
			return fmt.Errorf("set project teams: %w", err)
		}
		return nil
	})
}

// Get loads a project with its teams and tasks.
func (r *ProjectRepository) Get(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.WithContext(ctx).
		Preload("Teams", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("deadline").Order("name").Order("is_completed")
		}).
		Preload("Tasks.TaskType").
		Preload("Tasks.Assignees").
		First(&p, id).Error
	if err != nil {
		return nil, translate(err, "get project")
	}
	return &p, nil
}

// Find loads only the project row.
func (r *ProjectRepository) Find(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "get project")
	}
	return &p, nil
}

// Update saves the project; a nil teamIDs leaves team links untouched.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project, teamIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if teamIDs == nil {
			return nil
		}
		if err := replaceLinks(tx, projectTeamsTable, "project_id", p.ID, "team_id", teamIDs); err != nil {
			return fmt.Errorf("set project teams: %w", err)
		}
		return nil
	})
}

// Delete removes a project. Its tasks stay with a null project and its
// team links are dropped.
func (r *ProjectRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detach tasks from project: %w", err)
		}
		if err := unlinkAll(tx, projectTeamsTable, "project_id", id); err != nil {
			return fmt.Errorf("remove project teams: %w", err)
		}
		return deleteByID(tx, &models.Project{}, id, "project")
	})
}

// List filters by name; incomplete projects come first, then by deadline and name.
func (r *ProjectRepository) List(ctx context.Context, q ListQuery) (Page[models.Project], error) {
	base := withSearch(r.db.WithContext(ctx).Model(&models.Project{}), "name", q.Search)
	page, err := paginate[models.Project](base, q.Page, ProjectPageSize, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Teams").Order("is_completed").Order("deadline").Order("name").Order("id")
	})
	if err != nil {
		return page, fmt.Errorf("list projects: %w", err)
	}
	return page, nil
}

// CountOpenTasks counts the project's tasks that are not completed.
func (r *ProjectRepository) CountOpenTasks(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("project_id = ? AND is_completed = ?", projectID, false).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count open tasks: %w", err)
	}
	return n, nil
}

// MarkCompleted sets is_completed on the project.
func (r *ProjectRepository) MarkCompleted(ctx context.Context, projectID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Project{ID: projectID}).
		Update("is_completed", true).Error
	if err != nil {
		return fmt.Errorf("complete project: %w", err)
	}
	return nil
}

// Candidates lists workers who are members of some team linked to the
// project; only they may be assigned to the project's tasks.
func (r *ProjectRepository) Candidates(ctx context.Context, projectID uint) ([]models.Worker, error) {
	db := r.db.WithContext(ctx)
	sub := db.Table(teamMembersTable+" AS tm").
		Select("tm.worker_id").
		Joins("JOIN "+projectTeamsTable+" AS pt ON pt.team_id = tm.team_id").
		Where("pt.project_id = ?", projectID)

	var workers []models.Worker
	if err := db.Model(&models.Worker{}).Where("id IN (?)", sub).
		Order("username").Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("list project candidates: %w", err)
	}
	return workers, nil
}

// MissingIDs returns the ids that match no project.
func (r *ProjectRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(r.db.WithContext(ctx), &models.Project{}, ids)
}

// TeamMemberIDs lists every worker id in any team linked to the project.
func (r *ProjectRepository) TeamMemberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Table(teamMembersTable+" AS tm").
		Joins("JOIN "+projectTeamsTable+" AS pt ON pt.team_id = tm.team_id").
		Where("pt.project_id = ?", projectID).
		Pluck("tm.worker_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	return dedupe(ids), nil
}
