package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/response"
	"github.com/taskhive/taskhive-api/internal/services"
)

// NotificationHandler coordinates notification HTTP handlers.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// CreateNotification fans an assignment event out into one notification
// per valid assignee. Malformed assignee entries are skipped.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	type CreateNotificationRequest struct {
		TaskID    uint64                 `json:"task_id" binding:"required"`
		Assignees []services.AssigneeRef `json:"assignees" binding:"required"`
	}

	var req CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	notifications, err := h.notificationService.NotifyAssignment(req.TaskID, req.Assignees)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoAssignees):
			response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrTaskNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "")
		}
		return
	}

	response.Created(c, dto.ToNotificationDTOs(notifications), "Notifications created")
}

// GetNotifications returns the caller's notifications newest-first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	notifications, err := h.notificationService.ListForUser(userID)
	if err != nil {
		response.InternalError(c, "")
		return
	}

	response.OK(c, dto.ToNotificationDTOs(notifications), "Notifications fetched successfully")
}
