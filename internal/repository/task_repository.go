package repository

import (
	"errors"

	"github.com/taskhive/taskhive-api/internal/models"
	"gorm.io/gorm"
)

// ErrStaleVersion is returned when a versioned write lost against a
// concurrent update.
var ErrStaleVersion = errors.New("task repository: stale version")

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a task together with any populated child rows
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading. Owned sequences
// come back in their canonical order: comments chronological, activity
// and sub-tasks newest-first.
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		switch p {
		case "Comments":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC, id ASC")
			})
		case "Activities", "SubTasks":
			query = query.Preload(p, func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC, id DESC")
			})
		default:
			query = query.Preload(p)
		}
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination, newest-first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})

	if filter.Stage != nil {
		query = query.Where("tasks.stage = ?", *filter.Stage)
	}
	if filter.Trashed != nil {
		query = query.Where("tasks.is_trashed = ?", *filter.Trashed)
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC, tasks.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var tasks []models.Task
	if err := listQuery.
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Assignments.User").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Save writes the task's editable columns and bumps its version
func (r *GormTaskRepository) Save(task *models.Task, expectedVersion *uint64) error {
	query := r.db.Model(&models.Task{}).Where("id = ?", task.ID)
	if expectedVersion != nil {
		query = query.Where("version = ?", *expectedVersion)
	}

	result := query.Updates(map[string]any{
		"title":       task.Title,
		"data":        task.Data,
		"description": task.Description,
		"stage":       task.Stage,
		"priority":    task.Priority,
		"asset_url":   task.AssetURL,
		"tag":         task.Tag,
		"is_active":   task.IsActive,
		"is_trashed":  task.IsTrashed,
		"version":     gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if expectedVersion != nil {
			return ErrStaleVersion
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete permanently removes a task and its owned rows
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.SubTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceAssignments swaps the task's assignee set
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		assignments := make([]models.TaskAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.TaskAssignment{
				TaskID: taskID,
				UserID: userID,
			}
		}
		return tx.Create(&assignments).Error
	})
}

// AddComment appends a comment and bumps the task version
func (r *GormTaskRepository) AddComment(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return bumpVersion(tx, comment.TaskID)
	})
}

// AddActivity appends an activity entry and bumps the task version
func (r *GormTaskRepository) AddActivity(activity *models.Activity) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		return bumpVersion(tx, activity.TaskID)
	})
}

// AddSubTask appends a sub-task and bumps the task version
func (r *GormTaskRepository) AddSubTask(subTask *models.SubTask) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(subTask).Error; err != nil {
			return err
		}
		return bumpVersion(tx, subTask.TaskID)
	})
}

// Counts aggregates non-trashed tasks by stage
func (r *GormTaskRepository) Counts() (TaskCounts, error) {
	var counts TaskCounts

	count := func(stage *models.TaskStage) (int64, error) {
		var n int64
		query := r.db.Model(&models.Task{}).Where("is_trashed = ?", false)
		if stage != nil {
			query = query.Where("stage = ?", *stage)
		}
		err := query.Count(&n).Error
		return n, err
	}

	var err error
	if counts.Total, err = count(nil); err != nil {
		return counts, err
	}
	todo := models.TaskStageTodo
	if counts.Todo, err = count(&todo); err != nil {
		return counts, err
	}
	inProgress := models.TaskStageInProgress
	if counts.InProgress, err = count(&inProgress); err != nil {
		return counts, err
	}
	completed := models.TaskStageCompleted
	if counts.Completed, err = count(&completed); err != nil {
		return counts, err
	}

	return counts, nil
}

func bumpVersion(tx *gorm.DB, taskID uint64) error {
	return tx.Model(&models.Task{}).Where("id = ?", taskID).
		UpdateColumn("version", gorm.Expr("version + 1")).Error
}
