package dto

import (
	"time"

	"github.com/taskhive/taskhive-api/internal/models"
)

// AssigneeDTO carries the display attributes of one assignee.
type AssigneeDTO struct {
	UserID        uint64 `json:"user_id"`
	FullName      string `json:"full_name"`
	Title         string `json:"title"`
	Email         string `json:"email"`
	ProfileImgURL string `json:"profile_img_url,omitempty"`
}

// CommentDTO represents one task comment, chronological order.
type CommentDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityDTO represents one activity entry, newest-first order.
type ActivityDTO struct {
	ID        uint64    `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	ActorID   uint64    `json:"actor_id"`
	Actor     *UserDTO  `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SubTaskDTO represents one sub-task entry, newest-first order.
type SubTaskDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Tag       string    `json:"tag,omitempty"`
	Completed bool      `json:"completed"`
	ActorID   uint64    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Data        string              `json:"data"`
	Description string              `json:"description"`
	Stage       models.TaskStage    `json:"stage"`
	Priority    models.TaskPriority `json:"priority"`
	AssetURL    string              `json:"asset_url,omitempty"`
	Tag         string              `json:"tag,omitempty"`
	IsActive    bool                `json:"is_active"`
	IsTrashed   bool                `json:"is_trashed"`
	Version     uint64              `json:"version"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Assignees   []AssigneeDTO       `json:"assignees"`
	Comments    []CommentDTO        `json:"comments,omitempty"`
	Activities  []ActivityDTO       `json:"activities,omitempty"`
	SubTasks    []SubTaskDTO        `json:"sub_tasks,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Data:        task.Data,
		Description: task.Description,
		Stage:       task.Stage,
		Priority:    task.Priority,
		AssetURL:    task.AssetURL,
		Tag:         task.Tag,
		IsActive:    task.IsActive,
		IsTrashed:   task.IsTrashed,
		Version:     task.Version,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Assignees:   make([]AssigneeDTO, 0, len(task.Assignments)),
	}

	for _, assignment := range task.Assignments {
		assignee := AssigneeDTO{UserID: assignment.UserID}
		// Display attributes are present only when the user was preloaded
		if assignment.User.ID != 0 {
			assignee.FullName = assignment.User.FullName
			assignee.Title = assignment.User.Title
			assignee.Email = assignment.User.Email
			assignee.ProfileImgURL = assignment.User.ProfileImgURL
		}
		dto.Assignees = append(dto.Assignees, assignee)
	}

	for _, comment := range task.Comments {
		dto.Comments = append(dto.Comments, CommentDTO{
			ID:        comment.ID,
			Name:      comment.Name,
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		})
	}

	for _, activity := range task.Activities {
		entry := ActivityDTO{
			ID:        activity.ID,
			Status:    activity.Status,
			Message:   activity.Message,
			ActorID:   activity.ActorID,
			CreatedAt: activity.CreatedAt,
		}
		if activity.Actor.ID != 0 {
			actor := ToUserDTO(activity.Actor)
			entry.Actor = &actor
		}
		dto.Activities = append(dto.Activities, entry)
	}

	for _, subTask := range task.SubTasks {
		dto.SubTasks = append(dto.SubTasks, SubTaskDTO{
			ID:        subTask.ID,
			Title:     subTask.Title,
			Date:      subTask.Date,
			Tag:       subTask.Tag,
			Completed: subTask.Completed,
			ActorID:   subTask.ActorID,
			CreatedAt: subTask.CreatedAt,
		})
	}

	return dto
}

// ToTaskDTOs converts a slice of Task models
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
