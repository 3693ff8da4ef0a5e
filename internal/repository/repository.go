package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Page sizes per list screen
const (
	DefaultPageSize = 5
	ProjectPageSize = 3
)

// Join tables backing the many-to-many relations
const (
	teamMembersTable   = "team_members"
	projectTeamsTable  = "project_teams"
	taskAssigneesTable = "task_assignees"
)

// Repository defines the operations every entity store offers.
type Repository[T any] interface {
	Get(ctx context.Context, id uint) (*T, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q ListQuery) (Page[T], error)
}

// ListQuery carries the optional search term and the requested page.
type ListQuery struct {
	Search string
	Page   int
}

// Page is one page of a filtered, ordered listing.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	Total       int64 `json:"total"`
	NumPages    int   `json:"numPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// Repositories bundles the per-entity stores sharing one connection.
type Repositories struct {
	db        *gorm.DB
	Positions *PositionRepository
	Workers   *WorkerRepository
	TaskTypes *TaskTypeRepository
	Teams     *TeamRepository
	Projects  *ProjectRepository
	Tasks     *TaskRepository
}

// New wires every repository onto db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		Positions: &PositionRepository{db: db},
		Workers:   &WorkerRepository{db: db},
		TaskTypes: &TaskTypeRepository{db: db},
		Teams:     &TeamRepository{db: db},
		Projects:  &ProjectRepository{db: db},
		Tasks:     &TaskRepository{db: db},
	}
}

// Transaction runs fn with repositories bound to a single transaction.
// Returning an error from fn rolls everything back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Stats are the dashboard counters.
type Stats struct {
	Projects       int64 `json:"numProjects"`
	Teams          int64 `json:"numTeams"`
	CompletedTasks int64 `json:"numCompletedTasks"`
}

// Stats counts projects, teams and completed tasks.
func (r *Repositories) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)
	if err := db.Table("projects").Count(&s.Projects).Error; err != nil {
		return s, fmt.Errorf("count projects: %w", err)
	}
	if err := db.Table("teams").Count(&s.Teams).Error; err != nil {
		return s, fmt.Errorf("count teams: %w", err)
	}
	if err := db.Table("tasks").Where("is_completed = ?", true).Count(&s.CompletedTasks).Error; err != nil {
		return s, fmt.Errorf("count completed tasks: %w", err)
	}
	return s, nil
}

// paginate counts base, then fetches one page of it. decorate adds ordering
// and preloads to the fetch only, keeping the count query plain.
func paginate[T any](base *gorm.DB, page, size int, decorate func(*gorm.DB) *gorm.DB) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	result := Page[T]{Items: []T{}, Page: page, PageSize: size}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		return result, err
	}

	fetch := base.Session(&gorm.Session{})
	if decorate != nil {
		fetch = decorate(fetch)
	}
	if err := fetch.Limit(size).Offset((page - 1) * size).Find(&result.Items).Error; err != nil {
		return result, err
	}

	result.NumPages = int((result.Total + int64(size) - 1) / int64(size))
	result.HasNext = page < result.NumPages
	result.HasPrevious = page > 1
	return result, nil
}

// withSearch adds a case-insensitive substring filter on column.
// Blank terms leave q unfiltered.
func withSearch(q *gorm.DB, column, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// translate maps gorm's not-found to ErrNotFound.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// deleteByID removes one row of model and reports ErrNotFound when nothing matched.
func deleteByID(db *gorm.DB, model any, id uint, what string) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", what, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", what, ErrNotFound)
	}
	return nil
}

// link inserts one join-table row; an existing row is left untouched.
func link(db *gorm.DB, table string, row map[string]any) error {
	return db.Table(table).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

// unlink removes the join-table rows matching both columns.
func unlink(db *gorm.DB, table, colA string, idA uint, colB string, idB uint) error {
	return db.Exec("DELETE FROM "+table+" WHERE "+colA+" = ? AND "+colB+" = ?", idA, idB).Error
}

// unlinkAll removes every join-table row owned by id.
func unlinkAll(db *gorm.DB, table, col string, id uint) error {
	return db.Exec("DELETE FROM "+table+" WHERE "+col+" = ?", id).Error
}

// linked reports whether a join-table row matching cond exists.
func linked(db *gorm.DB, table string, cond map[string]any) (bool, error) {
	var n int64
	if err := db.Table(table).Where(cond).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// replaceLinks makes ownerCol=ownerID point at exactly ids in table.
func replaceLinks(db *gorm.DB, table, ownerCol string, ownerID uint, otherCol string, ids []uint) error {
	if err := unlinkAll(db, table, ownerCol, ownerID); err != nil {
		return err
	}
	for _, id := range dedupe(ids) {
		if err := link(db, table, map[string]any{ownerCol: ownerID, otherCol: id}); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
