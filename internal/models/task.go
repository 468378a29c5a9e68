package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// ValidTaskStatus reports whether s is one of the fixed status values.
// Transitions between statuses are unconstrained.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(100);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'To Do'" json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	ProjectID   *uint64        `gorm:"index" json:"project_id"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}
