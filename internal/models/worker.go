package models

import (
	"fmt"
	"time"
)

// Worker represents an authenticated member of staff
type Worker struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Username   string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName  string    `json:"firstName" gorm:"size:150"`
	LastName   string    `json:"lastName" gorm:"size:150"`
	Password   string    `json:"-" gorm:"not null"`
	PositionID *uint     `json:"positionId" gorm:"column:position_id;index"`
	Position   *Position `json:"position,omitempty" gorm:"foreignKey:PositionID"`
	Teams      []Team    `json:"teams,omitempty" gorm:"many2many:team_members;"`
	Tasks      []Task    `json:"tasks,omitempty" gorm:"many2many:task_assignees;"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Worker Model
func (Worker) TableName() string {
	return "workers"
}

func (w Worker) String() string {
	position := "none"
	if w.Position != nil {
		position = w.Position.Name
	}
	return fmt.Sprintf("%s (%s %s, position: %s)", w.Username, w.FirstName, w.LastName, position)
}
