package models

import (
	"time"
)

type TaskStage string

const (
	TaskStageTodo       TaskStage = "ToDo"
	TaskStageInProgress TaskStage = "InProgress"
	TaskStageCompleted  TaskStage = "Completed"
)

// IsValid reports whether the stage matches one of the enum values.
// The match is exact and case-sensitive.
func (s TaskStage) IsValid() bool {
	switch s {
	case TaskStageTodo, TaskStageInProgress, TaskStageCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityNormal TaskPriority = "Normal"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityHigh, TaskPriorityMedium, TaskPriorityNormal:
		return true
	}
	return false
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Data        string       `gorm:"type:text;not null" json:"data"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Stage       TaskStage    `gorm:"type:varchar(20);not null;default:'ToDo'" json:"stage"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'Normal'" json:"priority"`
	AssetURL    string       `gorm:"type:varchar(512)" json:"asset_url"`
	Tag         string       `gorm:"type:varchar(100)" json:"tag"`
	IsActive    bool         `gorm:"not null;default:true" json:"is_active"`
	IsTrashed   bool         `gorm:"not null;default:false" json:"is_trashed"`
	// Version increments on every mutation; stale writes are rejected
	// when the caller supplies the version it read.
	Version   uint64    `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Comments    []Comment        `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Activities  []Activity       `gorm:"foreignKey:TaskID" json:"activities,omitempty"`
	SubTasks    []SubTask        `gorm:"foreignKey:TaskID" json:"sub_tasks,omitempty"`
}
