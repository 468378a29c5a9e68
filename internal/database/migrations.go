package database

import (
	"fmt"

	"gorm.io/gorm"
)

// activeMemberIndex enforces at most one active membership row per
// (project, user) pair. Scoping the constraint to rows with deleted_at IS
// NULL lets a removed member be re-added with a fresh row, while concurrent
// duplicate inserts of an active pair still fail at the database. This is the
// authoritative dedup guarantee; application-level existence checks only
// improve error messages.
const activeMemberIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_project_members_active_pair
ON project_members (project_id, user_id) WHERE deleted_at IS NULL`

// AddIndexes adds performance-critical and constraint indexes
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for filtering and sorting
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_creator_id", "creator_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Project member indexes
		{"project_members", "idx_project_members_project_id", "project_id"},
		{"project_members", "idx_project_members_user_id", "user_id"},

		// Project owner index
		{"projects", "idx_projects_owner_id", "owner_id"},
	}

	for _, idx := range indexes {
		sql := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	if err := db.Exec(activeMemberIndex).Error; err != nil {
		return fmt.Errorf("failed to create active member index: %w", err)
	}

	return nil
}
