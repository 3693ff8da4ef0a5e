package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/rules"
)

const (
	msgInvalidChoice  = "Select a valid choice. That choice is not one of the available choices."
	msgUsernameTaken  = "A user with that username already exists."
	msgNameTakenFmt   = "%s with this Name already exists."
	msgMissingItemFmt = "Select a valid choice. %d is not one of the available choices."
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username   string `json:"username" validate:"required,max=150"`
	FirstName  string `json:"firstName" validate:"max=150"`
	LastName   string `json:"lastName" validate:"max=150"`
	PositionID *uint  `json:"position"`
	Password1  string `json:"password1" validate:"required,min=8"`
	Password2  string `json:"password2" validate:"required,eqfield=Password1"`
}

// WorkerInput edits a worker's profile.
type WorkerInput struct {
	Username   string `json:"username" validate:"required,max=150"`
	FirstName  string `json:"firstName" validate:"max=150"`
	LastName   string `json:"lastName" validate:"max=150"`
	PositionID *uint  `json:"position"`
}

type PositionInput struct {
	Name string `json:"name" validate:"required,max=60"`
}

type TaskTypeInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type TeamInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	MemberIDs []uint `json:"members"`
}

type ProjectInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" validate:"required"`
	TeamIDs     []uint `json:"teams"`
}

// TaskInput creates or replaces a task. Priority defaults to Medium.
type TaskInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=Urgent High Medium Low"`
	TaskTypeID  *uint  `json:"taskType"`
	ProjectID   *uint  `json:"project"`
	AssigneeIDs []uint `json:"assignees"`
}

func (in *TeamInput) normalize()     { in.Name = strings.TrimSpace(in.Name) }
func (in *TaskTypeInput) normalize() { in.Name = strings.TrimSpace(in.Name) }
func (in *PositionInput) normalize() { in.Name = strings.TrimSpace(in.Name) }

func (in *ProjectInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in *TaskInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Priority == "" {
		in.Priority = string(models.PriorityMedium)
	}
}

func (in *WorkerInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
}

// parseDeadline records MsgInvalidDate unless "required" already failed.
func parseDeadline(raw string, errs rules.FieldErrors) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	t, ok := rules.ParseDate(raw)
	if !ok {
		errs.Add("deadline", rules.MsgInvalidDate)
		return time.Time{}, false
	}
	return t.UTC(), true
}

// checkIDs reports every id that does not resolve.
func checkIDs(errs rules.FieldErrors, field string, missing []uint) {
	for _, id := range missing {
		errs.Add(field, fmt.Sprintf(msgMissingItemFmt, id))
	}
}

func checkPosition(ctx context.Context, tx *repository.Repositories, id *uint, errs rules.FieldErrors) error {
	if id == nil {
		return nil
	}
	ok, err := tx.Positions.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		errs.Add("position", msgInvalidChoice)
	}
	return nil
}

// idsOrEmpty turns a missing list into an explicit empty one so full
// replacements clear the relation.
func idsOrEmpty(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

func notFound(what string, id uint) error {
	return fmt.Errorf("%s %d: %w", what, id, repository.ErrNotFound)
}
