package models

import "time"

// Activity is an append-only log entry on a task, listed newest-first.
type Activity struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	Status    string    `gorm:"type:varchar(50);not null" json:"status"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	ActorID   uint64    `gorm:"not null" json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task  Task `gorm:"foreignKey:TaskID" json:"-"`
	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
