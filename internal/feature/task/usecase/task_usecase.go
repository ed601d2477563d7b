package usecase

import (
	"context"

	"task_backend/internal/feature/task/domain/entity"
)

// TaskRepository abstracts the persistence layer for tasks.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type TaskRepository interface {
	// Create persists a new task. It returns ErrUserNotFound if the owner row is missing.
	Create(ctx context.Context, task *entity.Task) error
	// FindByID returns ErrTaskNotFound if no task has the given id.
	FindByID(ctx context.Context, id uint) (*entity.Task, error)
	List(ctx context.Context) ([]entity.Task, error)
	Update(ctx context.Context, task *entity.Task) error
	// Delete returns ErrTaskNotFound if no row was removed.
	Delete(ctx context.Context, id uint) error
	// UserExists reports whether a user with the given id exists.
	UserExists(ctx context.Context, userID uint) (bool, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewTask holds the fields supplied when creating a task.
type NewTask struct {
	Title       string
	Description string
	Status      string
	UserID      uint
}

// TaskPatch carries the fields of a partial update. A nil field was not supplied.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskUsecase provides business logic for task operations.
type TaskUsecase struct {
	repo TaskRepository
	tx   Transactor
}

// NewTaskUsecase creates a new TaskUsecase with the given repository.
func NewTaskUsecase(repo TaskRepository, tx Transactor) *TaskUsecase {
	return &TaskUsecase{repo: repo, tx: tx}
}

// Create attaches a new task to an existing user.
// It fails with ErrUserNotFound and persists nothing when the owner does not exist.
func (u *TaskUsecase) Create(ctx context.Context, in NewTask) (*entity.Task, error) {
	var created *entity.Task
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := u.repo.UserExists(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		task := &entity.Task{
			Title:       in.Title,
			Description: in.Description,
			Status:      in.Status,
			UserID:      in.UserID,
		}
		if err := u.repo.Create(ctx, task); err != nil {
			return err
		}
		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns every task.
func (u *TaskUsecase) List(ctx context.Context) ([]entity.Task, error) {
	return u.repo.List(ctx)
}

// GetByID returns the task with the given id.
func (u *TaskUsecase) GetByID(ctx context.Context, id uint) (*entity.Task, error) {
	return u.repo.FindByID(ctx, id)
}

// Update overwrites each supplied field.
// Empty strings count as "not supplied" and leave the stored value unchanged.
func (u *TaskUsecase) Update(ctx context.Context, id uint, patch TaskPatch) (*entity.Task, error) {
	var updated *entity.Task
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		task, err := u.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		apply(&task.Title, patch.Title)
		apply(&task.Description, patch.Description)
		apply(&task.Status, patch.Status)

		if err := u.repo.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task with the given id.
func (u *TaskUsecase) Delete(ctx context.Context, id uint) error {
	return u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.repo.FindByID(ctx, id); err != nil {
			return err
		}
		return u.repo.Delete(ctx, id)
	})
}

func apply(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
