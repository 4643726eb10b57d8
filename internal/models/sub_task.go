package models

import "time"

// SubTask is a lightweight checklist entry owned by a task, listed
// newest-first. It is created incomplete.
type SubTask struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Date      string    `gorm:"type:varchar(50);not null" json:"date"`
	Tag       string    `gorm:"type:varchar(100)" json:"tag"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	ActorID   uint64    `gorm:"not null" json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task  Task `gorm:"foreignKey:TaskID" json:"-"`
	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
