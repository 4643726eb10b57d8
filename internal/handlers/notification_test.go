package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"github.com/taskhive/taskhive-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type notificationTestEnv struct {
	db      *gorm.DB
	handler *NotificationHandler
	service *services.NotificationService
}

func setupNotificationTestEnv(t *testing.T) notificationTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.Comment{},
		&models.Activity{},
		&models.SubTask{},
		&models.Notification{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	service := services.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewTaskRepository(db),
	)
	handler := NewNotificationHandler(service)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return notificationTestEnv{
		db:      db,
		handler: handler,
		service: service,
	}
}

func (env notificationTestEnv) createTask(t *testing.T, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:       title,
		Data:        "payload",
		Description: "Test Description",
		Stage:       models.TaskStageTodo,
		Priority:    models.TaskPriorityNormal,
		IsActive:    true,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func TestNotificationHandler_CreateNotification(t *testing.T) {
	env := setupNotificationTestEnv(t)
	task := env.createTask(t, "Assigned Task")

	r := gin.New()
	r.POST("/api/v1/notification/createnotification", env.handler.CreateNotification)

	// The second assignee entry is malformed and must be skipped, not fail
	// the request
	payload := map[string]any{
		"task_id": task.ID,
		"assignees": []map[string]any{
			{"user_id": 42},
			{"user_id": 0},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notification/createnotification", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created []dto.NotificationDTO
	decodeData(t, w, &created)
	require.Len(t, created, 1)
	require.EqualValues(t, 42, created[0].UserID)
	require.Equal(t, task.ID, created[0].TaskID)
	require.Equal(t, "You have been assigned a new task: Assigned Task", created[0].Message)
	require.False(t, created[0].IsRead)
}

func TestNotificationHandler_CreateNotification_EmptyAssignees(t *testing.T) {
	env := setupNotificationTestEnv(t)
	task := env.createTask(t, "Assigned Task")

	r := gin.New()
	r.POST("/api/v1/notification/createnotification", env.handler.CreateNotification)

	payload := map[string]any{
		"task_id":   task.ID,
		"assignees": []map[string]any{},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notification/createnotification", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_CreateNotification_MissingTask(t *testing.T) {
	env := setupNotificationTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/notification/createnotification", env.handler.CreateNotification)

	payload := map[string]any{
		"task_id":   9999,
		"assignees": []map[string]any{{"user_id": 42}},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notification/createnotification", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_GetNotifications(t *testing.T) {
	env := setupNotificationTestEnv(t)
	task := env.createTask(t, "Task One")
	other := env.createTask(t, "Task Two")

	_, err := env.service.NotifyAssignment(task.ID, []services.AssigneeRef{{UserID: 7}})
	require.NoError(t, err)
	_, err = env.service.NotifyAssignment(other.ID, []services.AssigneeRef{{UserID: 7}, {UserID: 8}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/notification/getnotifications", nil)
	c.Set(constants.ContextKeyUserID, uint64(7))
	c.Set(constants.ContextKeyUserRole, models.RoleUser)

	env.handler.GetNotifications(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got []dto.NotificationDTO
	decodeData(t, w, &got)
	require.Len(t, got, 2)
	// Newest first, and only the caller's rows
	require.Contains(t, got[0].Message, "Task Two")
	require.Contains(t, got[1].Message, "Task One")

	// Listing must not flip the read flag
	env.handler.GetNotifications(authedContext(httptest.NewRecorder(), c.Request, 7, models.RoleUser))
	var unread int64
	require.NoError(t, env.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", 7, false).
		Count(&unread).Error)
	require.EqualValues(t, 2, unread)
}
