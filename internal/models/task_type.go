package models

import "time"

// TaskType classifies tasks (bug, feature, ...)
type TaskType struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Tasks     []Task    `json:"tasks,omitempty" gorm:"foreignKey:TaskTypeID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for TaskType Model
func (TaskType) TableName() string {
	return "task_types"
}
