package models

import "time"

// Project is a deliverable worked on by one or more teams
type Project struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline" gorm:"not null"`
	IsCompleted bool      `json:"isCompleted" gorm:"not null;default:false"`
	Teams       []Team    `json:"teams,omitempty" gorm:"many2many:project_teams;"`
	Tasks       []Task    `json:"tasks,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}
