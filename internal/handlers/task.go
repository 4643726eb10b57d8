package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/response"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new task with defaults applied.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Data        string              `json:"data" binding:"required"`
		Description string              `json:"description" binding:"required"`
		Stage       models.TaskStage    `json:"stage"`
		Priority    models.TaskPriority `json:"priority"`
		Assignees   []uint64            `json:"assignees"`
		Tag         string              `json:"tag"`
		AssetURL    string              `json:"asset_url"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Data:        req.Data,
		Description: req.Description,
		Stage:       req.Stage,
		Priority:    req.Priority,
		Assignees:   req.Assignees,
		Tag:         req.Tag,
		AssetURL:    req.AssetURL,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.Created(c, dto.ToTaskDTO(*task), "Task created successfully")
}

// EditTask replaces the provided fields, leaving others untouched.
func (h *TaskHandler) EditTask(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	type EditTaskRequest struct {
		Title       *string              `json:"title"`
		Data        *string              `json:"data"`
		Description *string              `json:"description"`
		Stage       *models.TaskStage    `json:"stage"`
		Priority    *models.TaskPriority `json:"priority"`
		Tag         *string              `json:"tag"`
		AssetURL    *string              `json:"asset_url"`
		Assignees   *[]uint64            `json:"assignees"`
		Version     *uint64              `json:"version"`
	}

	var req EditTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.EditTask(id, services.EditTaskInput{
		Title:       req.Title,
		Data:        req.Data,
		Description: req.Description,
		Stage:       req.Stage,
		Priority:    req.Priority,
		Tag:         req.Tag,
		AssetURL:    req.AssetURL,
		Assignees:   req.Assignees,
		Version:     req.Version,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task updated successfully")
}

// UpdateStage sets the task's lifecycle stage.
func (h *TaskHandler) UpdateStage(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	type UpdateStageRequest struct {
		Stage   models.TaskStage `json:"stage" binding:"required"`
		Version *uint64          `json:"version"`
	}

	var req UpdateStageRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateStage(id, req.Stage, req.Version)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task stage updated successfully")
}

// GetTask returns a single task with its owned sequences.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task fetched successfully")
}

// ListTasks returns tasks newest-first. Trashed tasks are excluded unless
// requested with ?trashed=true.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if stageStr := c.Query("stage"); stageStr != "" {
		stage := models.TaskStage(stageStr)
		input.Stage = &stage
	}

	trashed := false
	if trashedStr := c.Query("trashed"); trashedStr != "" {
		parsed, err := strconv.ParseBool(trashedStr)
		if err != nil {
			response.BadRequest(c, "Invalid trashed flag")
			return
		}
		trashed = parsed
	}
	input.Trashed = &trashed

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}, "All tasks fetched successfully")
}

// MyTasks returns tasks assigned to the caller, newest-first.
func (h *TaskHandler) MyTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListAssignedTo(userID, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}, "Assigned tasks fetched successfully")
}

// MoveToTrash flags a task as trashed.
func (h *TaskHandler) MoveToTrash(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.MoveToTrash(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task moved to trash")
}

// RestoreTask clears the trashed flag.
func (h *TaskHandler) RestoreTask(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.Restore(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task restored from trash")
}

// DeleteTask permanently removes a task and returns the removed snapshot.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.DeleteForever(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task deleted permanently")
}

// DuplicateTask clones a task into a new independent one.
func (h *TaskHandler) DuplicateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	task, err := h.taskService.Duplicate(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Task duplicated successfully")
}

// AddComment appends a timestamped comment to a task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Name string `json:"name" binding:"required"`
		Text string `json:"text" binding:"required"`
	}

	var req AddCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AddComment(id, req.Name, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Comment added")
}

// AddActivity prepends an activity entry attributed to the caller.
func (h *TaskHandler) AddActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	type AddActivityRequest struct {
		Status  string `json:"status" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	var req AddActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AddActivity(id, req.Status, req.Message, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Activity added")
}

// AddSubTask prepends an incomplete sub-task attributed to the caller.
func (h *TaskHandler) AddSubTask(c *gin.Context) {
	id, ok := parseIDParam(c, "task")
	if !ok {
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	type AddSubTaskRequest struct {
		Title string `json:"title" binding:"required"`
		Date  string `json:"date" binding:"required"`
		Tag   string `json:"tag" binding:"required"`
	}

	var req AddSubTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AddSubTask(id, req.Title, req.Date, req.Tag, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, dto.ToTaskDTO(*task), "Sub-task added")
}

// GetStats returns stage counts, recomputed per call.
func (h *TaskHandler) GetStats(c *gin.Context) {
	counts, err := h.taskService.Stats()
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, counts, "Task stats fetched successfully")
}

// UploadAsset stores a file and returns its public URL without attaching
// it to any task. Expects a multipart file field named "image".
func (h *TaskHandler) UploadAsset(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "No file uploaded")
		return
	}
	if fileHeader.Size > constants.MaxUploadSize {
		response.BadRequest(c, "File too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	url, err := h.taskService.UploadAsset(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, gin.H{"asset_url": url}, "Asset uploaded successfully")
}

// SuggestTasks extracts task candidates from free-form text.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	tasks, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	response.OK(c, gin.H{"tasks": tasks}, "Tasks suggested successfully")
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrDataRequired),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStage),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrNoTasksSuggested):
		response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrStaleTask):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUploaderNotConfigured),
		errors.Is(err, services.ErrAIServiceNotConfigured):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalError(c, "")
	}
}
