package models

import "time"

// Position is a job title a worker may hold
type Position struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:60;uniqueIndex;not null"`
	Workers   []Worker  `json:"workers,omitempty" gorm:"foreignKey:PositionID;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Position Model
func (Position) TableName() string {
	return "positions"
}
