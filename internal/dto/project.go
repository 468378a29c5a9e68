package dto

import (
	"time"

	"github.com/taskhive/project-management-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectMemberDTO represents a project member with their permission flags
type ProjectMemberDTO struct {
	ProjectID     uint64    `json:"project_id"`
	UserID        uint64    `json:"user_id"`
	User          *UserDTO  `json:"user,omitempty"`
	CanCreateTask bool      `json:"can_create_task"`
	CanUpdateTask bool      `json:"can_update_task"`
	CanDeleteTask bool      `json:"can_delete_task"`
	CanAddMembers bool      `json:"can_add_members"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProjectDetailDTO represents a project together with its members
type ProjectDetailDTO struct {
	ProjectDTO
	Members []ProjectMemberDTO `json:"members"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectMemberDTO converts a ProjectMember model to ProjectMemberDTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	dto := ProjectMemberDTO{
		ProjectID:     member.ProjectID,
		UserID:        member.UserID,
		CanCreateTask: member.CanCreateTask,
		CanUpdateTask: member.CanUpdateTask,
		CanDeleteTask: member.CanDeleteTask,
		CanAddMembers: member.CanAddMembers,
		CreatedAt:     member.CreatedAt,
	}

	// Include user if preloaded
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}

	return dto
}

// ToProjectDetailDTO converts a project with members to a detailed DTO
func ToProjectDetailDTO(project models.Project, members []models.ProjectMember) ProjectDetailDTO {
	memberDTOs := make([]ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToProjectMemberDTO(member)
	}

	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(project),
		Members:    memberDTOs,
	}
}
