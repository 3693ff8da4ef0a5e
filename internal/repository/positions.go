package repository

import (
	"context"
	"fmt"

	"task-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PositionRepository stores positions.
type PositionRepository struct {
	db *gorm.DB
}

var _ Repository[models.Position] = (*PositionRepository)(nil)

func (r *PositionRepository) Create(ctx context.Context, p *models.Position) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("create position: %w", err)
	}
	return nil
}

// Get loads a position with its workers.
func (r *PositionRepository) Get(ctx context.Context, id uint) (*models.Position, error) {
	var p models.Position
	err := r.db.WithContext(ctx).
		Preload("Workers", func(db *gorm.DB) *gorm.DB { return db.Order("username") }).
		First(&p, id).Error
	if err != nil {
		return nil, translate(err, "get position")
	}
	return &p, nil
}

func (r *PositionRepository) Update(ctx context.Context, p *models.Position) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return nil
}

// Delete removes a position. Workers holding it keep their row with a
// null position.
func (r *PositionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Worker{}).Where("position_id = ?", id).
			Update("position_id", nil).Error; err != nil {
			return fmt.Errorf("detach workers from position: %w", err)
		}
		return deleteByID(tx, &models.Position{}, id, "position")
	})
}

// List filters by name and orders by name.
func (r *PositionRepository) List(ctx context.Context, q ListQuery) (Page[models.Position], error) {
	base := withSearch(r.db.WithContext(ctx).Model(&models.Position{}), "name", q.Search)
	page, err := paginate[models.Position](base, q.Page, DefaultPageSize, func(db *gorm.DB) *gorm.DB {
		return db.Order("name").Order("id")
	})
	if err != nil {
		return page, fmt.Errorf("list positions: %w", err)
	}
	return page, nil
}

// NameTaken reports whether another position already uses name.
func (r *PositionRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Position{}).
		Where("name = ? AND id <> ?", name, exceptID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check position name: %w", err)
	}
	return n > 0, nil
}

// Exists reports whether a position with id exists.
func (r *PositionRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Position{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check position: %w", err)
	}
	return n > 0, nil
}
