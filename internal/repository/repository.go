package repository

import (
	"github.com/taskhive/taskhive-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by its normalized email
	FindByEmail(email string) (*models.User, error)

	// List returns a page of users ordered newest-first, plus the total count
	List(page, pageSize int) ([]models.User, int64, error)

	// Update persists changes to a user
	Update(user *models.User) error

	// Delete permanently removes a user
	Delete(id uint64) error

	// SetActive flips the user's active flag
	SetActive(id uint64, active bool) error

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []uint64) (int64, error)
}

// SessionRepository tracks issued login tokens per user
type SessionRepository interface {
	// Create records a newly issued session token
	Create(session *models.Session) error

	// FindByTokenID returns the session recorded for a token ID
	FindByTokenID(tokenID string) (*models.Session, error)

	// RevokeForUser marks every live session of a user as revoked
	RevokeForUser(userID uint64) error
}

// OTPRepository manages the pending one-time passcode per user
type OTPRepository interface {
	// Replace stores a challenge, discarding any previous one for the user
	Replace(challenge *models.OTPChallenge) error

	// FindByUserID returns the pending challenge, if any
	FindByUserID(userID uint64) (*models.OTPChallenge, error)

	// DeleteForUser clears the pending challenge
	DeleteForUser(userID uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Stage          *models.TaskStage
	Trashed        *bool
	AssignedUserID *uint64
	Page           int
	PageSize       int
}

// TaskCounts aggregates tasks by stage for the stats endpoint
type TaskCounts struct {
	Total      int64 `json:"total"`
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task together with any populated child rows
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination, newest-first
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Save writes the task's editable columns and bumps its version.
	// When expectedVersion is non-nil the write only applies if the stored
	// version still matches; a mismatch returns ErrStaleVersion.
	Save(task *models.Task, expectedVersion *uint64) error

	// Delete permanently removes a task and its owned rows
	Delete(id uint64) error

	// ReplaceAssignments swaps the task's assignee set
	ReplaceAssignments(taskID uint64, userIDs []uint64) error

	// AddComment appends a comment and bumps the task version
	AddComment(comment *models.Comment) error

	// AddActivity appends an activity entry and bumps the task version
	AddActivity(activity *models.Activity) error

	// AddSubTask appends a sub-task and bumps the task version
	AddSubTask(subTask *models.SubTask) error

	// Counts aggregates non-trashed tasks by stage
	Counts() (TaskCounts, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a notification
	Create(notification *models.Notification) error

	// ListByUser returns a user's notifications newest-first
	ListByUser(userID uint64) ([]models.Notification, error)
}
