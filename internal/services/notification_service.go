package services

import (
	"errors"
	"fmt"

	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"gorm.io/gorm"
)

var ErrNoAssignees = errors.New("at least one assignee is required")

// NotificationService creates per-recipient notifications for task
// assignment events.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	taskRepo         repository.TaskRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository, taskRepo repository.TaskRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		taskRepo:         taskRepo,
	}
}

// AssigneeRef is one entry of the assignment event. Entries without a
// user id are malformed and skipped rather than failing the call.
type AssigneeRef struct {
	UserID uint64 `json:"user_id"`
}

// NotifyAssignment creates one notification per valid assignee referencing
// the task's title. Malformed entries are skipped; the call succeeds with
// the partial set.
func (s *NotificationService) NotifyAssignment(taskID uint64, assignees []AssigneeRef) ([]models.Notification, error) {
	if len(assignees) == 0 {
		return nil, ErrNoAssignees
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	notifications := make([]models.Notification, 0, len(assignees))
	for _, assignee := range assignees {
		if assignee.UserID == 0 {
			continue
		}

		notification := models.Notification{
			UserID:  assignee.UserID,
			TaskID:  task.ID,
			Message: fmt.Sprintf("You have been assigned a new task: %s", task.Title),
		}
		if err := s.notificationRepo.Create(&notification); err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

// ListForUser returns the user's notifications newest-first. Listing does
// not touch the read flag.
func (s *NotificationService) ListForUser(userID uint64) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
