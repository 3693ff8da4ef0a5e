package models

import (
	"fmt"
	"time"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityUrgent TaskPriority = "Urgent"
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// Valid reports whether p is one of the known priorities
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a unit of work, optionally bound to a project
type Task struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:255;not null"`
	Description string       `json:"description"`
	Deadline    time.Time    `json:"deadline" gorm:"not null;index"`
	IsCompleted bool         `json:"isCompleted" gorm:"not null;default:false"`
	Priority    TaskPriority `json:"priority" gorm:"size:6;not null;default:'Medium'"`
	TaskTypeID  *uint        `json:"taskTypeId" gorm:"column:task_type_id;index"`
	TaskType    *TaskType    `json:"taskType,omitempty" gorm:"foreignKey:TaskTypeID"`
	ProjectID   *uint        `json:"projectId" gorm:"column:project_id;index"`
	Project     *Project     `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Assignees   []Worker     `json:"assignees,omitempty" gorm:"many2many:task_assignees;"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

func (t Task) String() string {
	return fmt.Sprintf("Task: %s, priority of task : %s", t.Name, t.Priority)
}

// All lists every model in migration order
func All() []any {
	return []any{
		&Position{},
		&Worker{},
		&TaskType{},
		&Team{},
		&Project{},
		&Task{},
	}
}
