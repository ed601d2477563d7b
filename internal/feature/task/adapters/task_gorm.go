// Package adapters provides repository implementations for the task feature.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task_backend/internal/feature/task/domain/entity"
	"task_backend/internal/feature/task/usecase"
	userentity "task_backend/internal/feature/user/domain/entity"
	"task_backend/internal/platform/db"
)

// taskGorm is a GORM implementation of the TaskRepository interface.
type taskGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure taskGorm implements TaskRepository.
var _ usecase.TaskRepository = (*taskGorm)(nil)

// NewTaskRepository creates a new instance of taskGorm.
func NewTaskRepository(conn *gorm.DB) *taskGorm {
	return &taskGorm{db: conn}
}

// Create persists a new task. A foreign key violation means the owner is gone.
func (r *taskGorm) Create(ctx context.Context, t *entity.Task) error {
	if err := db.Conn(ctx, r.db).Omit("User").Create(t).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return usecase.ErrUserNotFound
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *taskGorm) FindByID(ctx context.Context, id uint) (*entity.Task, error) {
	var t entity.Task
	if err := db.Conn(ctx, r.db).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all tasks ordered by ID.
func (r *taskGorm) List(ctx context.Context) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := db.Conn(ctx, r.db).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update writes every column of the task back.
func (r *taskGorm) Update(ctx context.Context, t *entity.Task) error {
	return db.Conn(ctx, r.db).Omit("User").Save(t).Error
}

// Delete removes a task by its ID.
func (r *taskGorm) Delete(ctx context.Context, id uint) error {
	result := db.Conn(ctx, r.db).Delete(&entity.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// UserExists reports whether the owning user row exists.
func (r *taskGorm) UserExists(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := db.Conn(ctx, r.db).Model(&userentity.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
