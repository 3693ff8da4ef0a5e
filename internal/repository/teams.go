package repository

import (
	"context"
	"fmt"

	"task-tracker-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamRepository stores teams and their memberships.
type TeamRepository struct {
	db *gorm.DB
}

var _ Repository[models.Team] = (*TeamRepository)(nil)

// Create inserts the team and sets its members.
func (r *TeamRepository) Create(ctx context.Context, t *models.Team, memberIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		if err := replaceLinks(tx, teamMembersTable, "team_id", t.ID, "worker_id", memberIDs); err != nil {
			return fmt.Errorf("set team members: %w", err)
		}
		return nil
	})
}

// Get loads a team with its members (and their positions) and projects.
func (r *TeamRepository) Get(ctx context.Context, id uint) (*models.Team, error) {
	var t models.Team
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("username") }).
		Preload("Members.Position").
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("deadline").Order("name") }).
		First(&t, id).Error
	if err != nil {
		return nil, translate(err, "get team")
	}
	return &t, nil
}

// Update saves the team; a nil memberIDs leaves the membership untouched.
func (r *TeamRepository) Update(ctx context.Context, t *models.Team, memberIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return fmt.Errorf("update team: %w", err)
		}
		if memberIDs == nil {
			return nil
		}
		if err := replaceLinks(tx, teamMembersTable, "team_id", t.ID, "worker_id", memberIDs); err != nil {
			return fmt.Errorf("set team members: %w", err)
		}
		return nil
	})
}

// Delete removes a team together with its memberships and project links.
func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := unlinkAll(tx, teamMembersTable, "team_id", id); err != nil {
			return fmt.Errorf("remove team memberships: %w", err)
		}
		if err := unlinkAll(tx, projectTeamsTable, "team_id", id); err != nil {
			return fmt.Errorf("remove team projects: %w", err)
		}
		return deleteByID(tx, &models.Team{}, id, "team")
	})
}

// List filters by name and orders by name.
func (r *TeamRepository) List(ctx context.Context, q ListQuery) (Page[models.Team], error) {
	base := withSearch(r.db.WithContext(ctx).Model(&models.Team{}), "name", q.Search)
	page, err := paginate[models.Team](base, q.Page, DefaultPageSize, func(db *gorm.DB) *gorm.DB {
		return db.Order("name").Order("id")
	})
	if err != nil {
		return page, fmt.Errorf("list teams: %w", err)
	}
	return page, nil
}

// Exists reports whether a team with id exists.
func (r *TeamRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check team: %w", err)
	}
	return n > 0, nil
}

// MissingIDs returns the ids that match no team.
func (r *TeamRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(r.db.WithContext(ctx), &models.Team{}, ids)
}

// IsMember reports whether the worker belongs to the team.
func (r *TeamRepository) IsMember(ctx context.Context, teamID, workerID uint) (bool, error) {
	ok, err := linked(r.db.WithContext(ctx), teamMembersTable, map[string]any{"team_id": teamID, "worker_id": workerID})
	if err != nil {
		return false, fmt.Errorf("check team membership: %w", err)
	}
	return ok, nil
}

func (r *TeamRepository) AddMember(ctx context.Context, teamID, workerID uint) error {
	if err := link(r.db.WithContext(ctx), teamMembersTable, map[string]any{"team_id": teamID, "worker_id": workerID}); err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, workerID uint) error {
	if err := unlink(r.db.WithContext(ctx), teamMembersTable, "team_id", teamID, "worker_id", workerID); err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	return nil
}

// MemberIDs lists the ids of the team's members.
func (r *TeamRepository) MemberIDs(ctx context.Context, teamID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Table(teamMembersTable).Where("team_id = ?", teamID).
		Order("worker_id").Pluck("worker_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return ids, nil
}
