package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectMember grants a user scoped access to a project through four
// independent permission flags. The project owner never needs a row here.
//
// Uniqueness of (project_id, user_id) is enforced only for active rows via a
// partial unique index created in database.AddIndexes, so a removed member
// can be re-added with a fresh row.
type ProjectMember struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	ProjectID     uint64         `gorm:"not null;index:idx_project_members_project_user" json:"project_id"`
	UserID        uint64         `gorm:"not null;index:idx_project_members_project_user" json:"user_id"`
	CanCreateTask bool           `gorm:"not null;default:false" json:"can_create_task"`
	CanUpdateTask bool           `gorm:"not null;default:false" json:"can_update_task"`
	CanDeleteTask bool           `gorm:"not null;default:false" json:"can_delete_task"`
	CanAddMembers bool           `gorm:"not null;default:false" json:"can_add_members"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
