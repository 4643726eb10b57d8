package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrDataRequired           = errors.New("data is required")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidStage           = errors.New("stage must be ToDo, InProgress or Completed")
	ErrInvalidPriority        = errors.New("priority must be High, Medium or Normal")
	ErrInvalidAssignee        = errors.New("one or more assignees do not exist")
	ErrStaleTask              = errors.New("task was modified by a concurrent update")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrNoTasksSuggested       = errors.New("no tasks could be extracted from the text")
)

// taskPreloads loads everything a full task response carries.
var taskPreloads = []string{
	"Assignments", "Assignments.User",
	"Comments",
	"Activities", "Activities.Actor",
	"SubTasks", "SubTasks.Actor",
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	uploader  Uploader
	aiService *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, uploader Uploader, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		uploader:  uploader,
		aiService: aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Data        string
	Description string
	Stage       models.TaskStage
	Priority    models.TaskPriority
	Assignees   []uint64
	Tag         string
	AssetURL    string
}

// CreateTask creates a new task with defaults applied
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.Data == "" {
		return nil, ErrDataRequired
	}
	if input.Description == "" {
		return nil, ErrDescriptionRequired
	}

	if input.Stage == "" {
		input.Stage = models.TaskStageTodo
	}
	if !input.Stage.IsValid() {
		return nil, ErrInvalidStage
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityNormal
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	assignees := uniqueUint64(input.Assignees)
	if err := s.ensureUsersExist(assignees); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Data:        input.Data,
		Description: input.Description,
		Stage:       input.Stage,
		Priority:    input.Priority,
		Tag:         input.Tag,
		AssetURL:    input.AssetURL,
		IsActive:    true,
	}
	for _, userID := range assignees {
		task.Assignments = append(task.Assignments, models.TaskAssignment{UserID: userID})
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Stage    *models.TaskStage
	Trashed  *bool
	Page     int
	PageSize int
}

// ListTasks returns tasks newest-first with assignees resolved
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	if input.Stage != nil && !input.Stage.IsValid() {
		return nil, 0, ErrInvalidStage
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Stage:    input.Stage,
		Trashed:  input.Trashed,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListAssignedTo returns tasks where the user appears in the assignee
// sequence, newest-first
func (s *TaskService) ListAssignedTo(userID uint64, page, pageSize int) ([]models.Task, int64, error) {
	notTrashed := false
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		AssignedUserID: &userID,
		Trashed:        &notTrashed,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, total, nil
}

// EditTaskInput represents input for editing a task. Nil fields are left
// untouched. Version, when set, must match the version the caller read.
type EditTaskInput struct {
	Title       *string
	Data        *string
	Description *string
	Stage       *models.TaskStage
	Priority    *models.TaskPriority
	Tag         *string
	AssetURL    *string
	Assignees   *[]uint64
	Version     *uint64
}

// EditTask replaces the provided fields and leaves others untouched
func (s *TaskService) EditTask(taskID uint64, input EditTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Data != nil {
		task.Data = *input.Data
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Stage != nil {
		if !input.Stage.IsValid() {
			return nil, ErrInvalidStage
		}
		task.Stage = *input.Stage
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Tag != nil {
		task.Tag = *input.Tag
	}
	if input.AssetURL != nil {
		task.AssetURL = *input.AssetURL
	}

	var assignees []uint64
	if input.Assignees != nil {
		assignees = uniqueUint64(*input.Assignees)
		if err := s.ensureUsersExist(assignees); err != nil {
			return nil, err
		}
	}

	if err := s.saveTask(task, input.Version); err != nil {
		return nil, err
	}

	if input.Assignees != nil {
		if err := s.taskRepo.ReplaceAssignments(task.ID, assignees); err != nil {
			return nil, fmt.Errorf("failed to replace assignees: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateStage sets the task's stage. Any enum value is accepted regardless
// of the current stage; there is no transition guard.
func (s *TaskService) UpdateStage(taskID uint64, stage models.TaskStage, version *uint64) (*models.Task, error) {
	if !stage.IsValid() {
		return nil, ErrInvalidStage
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.Stage = stage
	if err := s.saveTask(task, version); err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// MoveToTrash flags a task as trashed. The task stays readable and
// restorable until permanently deleted.
func (s *TaskService) MoveToTrash(taskID uint64) (*models.Task, error) {
	return s.setTrashed(taskID, true)
}

// Restore clears the trashed flag.
func (s *TaskService) Restore(taskID uint64) (*models.Task, error) {
	return s.setTrashed(taskID, false)
}

func (s *TaskService) setTrashed(taskID uint64, trashed bool) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.IsTrashed = trashed
	if err := s.saveTask(task, nil); err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteForever permanently removes a task and returns the removed snapshot
func (s *TaskService) DeleteForever(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

// Duplicate clones a task, its assignees and its owned sequences into a
// new independent task titled "<title> (copy)"
func (s *TaskService) Duplicate(taskID uint64) (*models.Task, error) {
	original, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	clone := &models.Task{
		Title:       original.Title + " (copy)",
		Data:        original.Data,
		Description: original.Description,
		Stage:       original.Stage,
		Priority:    original.Priority,
		AssetURL:    original.AssetURL,
		Tag:         original.Tag,
		IsActive:    original.IsActive,
		IsTrashed:   original.IsTrashed,
	}
	for _, a := range original.Assignments {
		clone.Assignments = append(clone.Assignments, models.TaskAssignment{UserID: a.UserID})
	}
	for _, c := range original.Comments {
		clone.Comments = append(clone.Comments, models.Comment{
			Name:      c.Name,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, a := range original.Activities {
		clone.Activities = append(clone.Activities, models.Activity{
			Status:    a.Status,
			Message:   a.Message,
			ActorID:   a.ActorID,
			CreatedAt: a.CreatedAt,
		})
	}
	for _, st := range original.SubTasks {
		clone.SubTasks = append(clone.SubTasks, models.SubTask{
			Title:     st.Title,
			Date:      st.Date,
			Tag:       st.Tag,
			Completed: st.Completed,
			ActorID:   st.ActorID,
			CreatedAt: st.CreatedAt,
		})
	}

	if err := s.taskRepo.Create(clone); err != nil {
		return nil, fmt.Errorf("failed to duplicate task: %w", err)
	}

	return s.taskRepo.FindByID(clone.ID, taskPreloads...)
}

// AddComment appends a timestamped comment and returns the updated task
func (s *TaskService) AddComment(taskID uint64, name, text string) (*models.Task, error) {
	if err := s.ensureTaskExists(taskID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID: taskID,
		Name:   name,
		Text:   text,
	}
	if err := s.taskRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return s.taskRepo.FindByID(taskID, taskPreloads...)
}

// AddActivity prepends a timestamped activity entry and returns the updated task
func (s *TaskService) AddActivity(taskID uint64, status, message string, actorID uint64) (*models.Task, error) {
	if err := s.ensureTaskExists(taskID); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		TaskID:  taskID,
		Status:  status,
		Message: message,
		ActorID: actorID,
	}
	if err := s.taskRepo.AddActivity(activity); err != nil {
		return nil, fmt.Errorf("failed to add activity: %w", err)
	}

	return s.taskRepo.FindByID(taskID, taskPreloads...)
}

// AddSubTask prepends an incomplete sub-task and returns the updated task
func (s *TaskService) AddSubTask(taskID uint64, title, date, tag string, actorID uint64) (*models.Task, error) {
	if err := s.ensureTaskExists(taskID); err != nil {
		return nil, err
	}

	subTask := &models.SubTask{
		TaskID:  taskID,
		Title:   title,
		Date:    date,
		Tag:     tag,
		ActorID: actorID,
	}
	if err := s.taskRepo.AddSubTask(subTask); err != nil {
		return nil, fmt.Errorf("failed to add sub-task: %w", err)
	}

	return s.taskRepo.FindByID(taskID, taskPreloads...)
}

// UploadAsset stores a file and returns its public URL. Attaching the URL
// to a task is the caller's responsibility via EditTask.
func (s *TaskService) UploadAsset(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if s.uploader == nil {
		return "", ErrUploaderNotConfigured
	}

	url, err := s.uploader.Upload(ctx, "task_assets", filename, contentType, r, size)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	return url, nil
}

// Stats recomputes stage counts on every call
func (s *TaskService) Stats() (repository.TaskCounts, error) {
	counts, err := s.taskRepo.Counts()
	if err != nil {
		return counts, fmt.Errorf("failed to compute stats: %w", err)
	}
	return counts, nil
}

// SuggestTasks extracts task candidates from free-form text using the AI
// collaborator. Stale due dates are discarded rather than copied through.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	suggested, err := s.aiService.SuggestTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}
	if len(suggested) > constants.MaxAIGeneratedTasks {
		suggested = suggested[:constants.MaxAIGeneratedTasks]
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	valid := make([]SuggestedTask, 0, len(suggested))
	for _, task := range suggested {
		if strings.TrimSpace(task.Title) == "" {
			continue
		}
		if task.DueDate != nil && task.DueDate.Before(cutoff) {
			task.DueDate = nil
		}
		valid = append(valid, task)
	}

	if len(valid) == 0 {
		return nil, ErrNoTasksSuggested
	}
	return valid, nil
}

func (s *TaskService) saveTask(task *models.Task, expectedVersion *uint64) error {
	if err := s.taskRepo.Save(task, expectedVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleVersion):
			return ErrStaleTask
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrTaskNotFound
		default:
			return fmt.Errorf("failed to save task: %w", err)
		}
	}
	return nil
}

func (s *TaskService) ensureTaskExists(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	return nil
}

func (s *TaskService) ensureUsersExist(userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	count, err := s.userRepo.CountByIDs(userIDs)
	if err != nil {
		return fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidAssignee
	}
	return nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
