package repository

import (
	"context"
	"fmt"

	"task-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkerRepository stores workers.
type WorkerRepository struct {
	db *gorm.DB
}

var _ Repository[models.Worker] = (*WorkerRepository)(nil)

func (r *WorkerRepository) Create(ctx context.Context, w *models.Worker) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error; err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	return nil
}

// Get loads a worker with position, teams and assigned tasks (with task types).
func (r *WorkerRepository) Get(ctx context.Context, id uint) (*models.Worker, error) {
	var w models.Worker
	err := r.db.WithContext(ctx).
		Preload("Position").
		Preload("Teams", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("deadline").Order("name") }).
		Preload("Tasks.TaskType").
		First(&w, id).Error
	if err != nil {
		return nil, translate(err, "get worker")
	}
	return &w, nil
}

// GetByUsername loads a worker for authentication.
func (r *WorkerRepository) GetByUsername(ctx context.Context, username string) (*models.Worker, error) {
	var w models.Worker
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&w).Error; err != nil {
		return nil, translate(err, "get worker by username")
	}
	return &w, nil
}

func (r *WorkerRepository) Update(ctx context.Context, w *models.Worker) error {
	err := r.db.WithContext(ctx).Model(&models.Worker{ID: w.ID}).
		Select("username", "first_name", "last_name", "position_id").
		Updates(w).Error
	if err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	return nil
}

// Delete removes a worker and its team memberships and task assignments.
func (r *WorkerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unlinkAll(tx, teamMembersTable, "worker_id", id); err != nil {
			return fmt.Errorf("remove worker memberships: %w", err)
		}
		if err := unlinkAll(tx, taskAssigneesTable, "worker_id", id); err != nil {
			return fmt.Errorf("remove worker assignments: %w", err)
		}
		return deleteByID(tx, &models.Worker{}, id, "worker")
	})
}

// List filters by username and orders by username.
func (r *WorkerRepository) List(ctx context.Context, q ListQuery) (Page[models.Worker], error) {
	base := withSearch(r.db.WithContext(ctx).Model(&models.Worker{}), "username", q.Search)
	page, err := paginate[models.Worker](base, q.Page, DefaultPageSize, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Position").Order("username")
	})
	if err != nil {
		return page, fmt.Errorf("list workers: %w", err)
	}
	return page, nil
}

// UsernameTaken reports whether another worker already uses username.
func (r *WorkerRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Worker{}).
		Where("username = ? AND id <> ?", username, exceptID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

// Exists reports whether a worker with id exists.
func (r *WorkerRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Worker{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check worker: %w", err)
	}
	return n > 0, nil
}

// MissingIDs returns the ids that match no worker.
func (r *WorkerRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(r.db.WithContext(ctx), &models.Worker{}, ids)
}

// InProjectTeam reports whether the worker is a member of at least one
// team linked to the project.
func (r *WorkerRepository) InProjectTeam(ctx context.Context, workerID, projectID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(teamMembersTable+" AS tm").
		Joins("JOIN "+projectTeamsTable+" AS pt ON pt.team_id = tm.team_id").
		Where("tm.worker_id = ? AND pt.project_id = ?", workerID, projectID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check project team membership: %w", err)
	}
	return n > 0, nil
}

// missingIDs returns the ids without a row in model's table.
func missingIDs(db *gorm.DB, model any, ids []uint) ([]uint, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := db.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
