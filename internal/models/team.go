package models

import "time"

// Team groups workers; teams are attached to projects
type Team struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Members   []Worker  `json:"members,omitempty" gorm:"many2many:team_members;"`
	Projects  []Project `json:"projects,omitempty" gorm:"many2many:project_teams;"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Team Model
func (Team) TableName() string {
	return "teams"
}
