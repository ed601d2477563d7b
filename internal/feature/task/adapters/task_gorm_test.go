package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task_backend/internal/feature/task/domain/entity"
	"task_backend/internal/feature/task/usecase"
	userentity "task_backend/internal/feature/user/domain/entity"
	"task_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database with one user (id returned).
func setupTestDB(t *testing.T) (*gorm.DB, uint) {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(conn), "failed to migrate tables")

	owner := &userentity.User{Email: "owner@example.com", Password: "hash", Name: "Owner", Active: true}
	require.NoError(t, conn.Create(owner).Error, "failed to create owner")

	return conn, owner.ID
}

func TestTaskGorm_Create(t *testing.T) {
	t.Run("successful task creation", func(t *testing.T) {
		conn, ownerID := setupTestDB(t)
		repo := NewTaskRepository(conn)

		task := &entity.Task{Title: "Write report", Description: "Q3", Status: "pending", UserID: ownerID}
		err := repo.Create(context.Background(), task)

		require.NoError(t, err)
		assert.NotZero(t, task.ID)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("missing owner maps to ErrUserNotFound", func(t *testing.T) {
		conn, _ := setupTestDB(t)
		repo := NewTaskRepository(conn)

		err := repo.Create(context.Background(), &entity.Task{Title: "x", Description: "y", Status: "z", UserID: 999})

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)

		tasks, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestTaskGorm_FindByID(t *testing.T) {
	conn, ownerID := setupTestDB(t)
	repo := NewTaskRepository(conn)
	task := &entity.Task{Title: "t", Description: "d", Status: "open", UserID: ownerID}
	require.NoError(t, repo.Create(context.Background(), task))

	found, err := repo.FindByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", found.Title)
	assert.Equal(t, ownerID, found.UserID)

	_, err = repo.FindByID(context.Background(), task.ID+1)
	assert.ErrorIs(t, err, usecase.ErrTaskNotFound)
}

func TestTaskGorm_List(t *testing.T) {
	conn, ownerID := setupTestDB(t)
	repo := NewTaskRepository(conn)
	for _, title := range []string{"first", "second"} {
		require.NoError(t, repo.Create(context.Background(), &entity.Task{Title: title, Description: "d", Status: "open", UserID: ownerID}))
	}

	tasks, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
}

func TestTaskGorm_Update(t *testing.T) {
	conn, ownerID := setupTestDB(t)
	repo := NewTaskRepository(conn)
	task := &entity.Task{Title: "t", Description: "d", Status: "open", UserID: ownerID}
	require.NoError(t, repo.Create(context.Background(), task))

	task.Status = "done"
	require.NoError(t, repo.Update(context.Background(), task))

	found, err := repo.FindByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", found.Status)
	assert.Equal(t, "t", found.Title)
}

func TestTaskGorm_Delete(t *testing.T) {
	t.Run("deletes task but not its owner", func(t *testing.T) {
		conn, ownerID := setupTestDB(t)
		repo := NewTaskRepository(conn)
		task := &entity.Task{Title: "t", Description: "d", Status: "open", UserID: ownerID}
		require.NoError(t, repo.Create(context.Background(), task))

		require.NoError(t, repo.Delete(context.Background(), task.ID))

		_, err := repo.FindByID(context.Background(), task.ID)
		assert.ErrorIs(t, err, usecase.ErrTaskNotFound)

		exists, err := repo.UserExists(context.Background(), ownerID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing task", func(t *testing.T) {
		conn, _ := setupTestDB(t)
		repo := NewTaskRepository(conn)

		assert.ErrorIs(t, repo.Delete(context.Background(), 77), usecase.ErrTaskNotFound)
	})
}

func TestTaskGorm_UserExists(t *testing.T) {
	conn, ownerID := setupTestDB(t)
	repo := NewTaskRepository(conn)

	exists, err := repo.UserExists(context.Background(), ownerID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UserExists(context.Background(), ownerID+1)
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestTaskGorm_CascadeFromUser はユーザー削除後にそのユーザーのタスクが取得できなくなることを検証します。
func TestTaskGorm_CascadeFromUser(t *testing.T) {
	conn, ownerID := setupTestDB(t)
	repo := NewTaskRepository(conn)
	task := &entity.Task{Title: "t", Description: "d", Status: "open", UserID: ownerID}
	require.NoError(t, repo.Create(context.Background(), task))

	require.NoError(t, conn.Delete(&userentity.User{}, ownerID).Error)

	_, err := repo.FindByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, usecase.ErrTaskNotFound)
}
