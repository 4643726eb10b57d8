package models

import "time"

// TaskAssignment wraps an assignee reference so per-assignment metadata
// can attach later without reshaping the task document.
type TaskAssignment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index:idx_task_assignments_task_user,unique" json:"task_id"`
	UserID    uint64    `gorm:"not null;index:idx_task_assignments_task_user,unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
