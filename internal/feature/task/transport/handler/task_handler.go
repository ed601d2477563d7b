package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/api"
	"task_backend/internal/feature/task/domain/entity"
	"task_backend/internal/feature/task/usecase"
)

// TaskUsecase はタスク管理のユースケースを定義します。
type TaskUsecase interface {
	Create(ctx context.Context, in usecase.NewTask) (*entity.Task, error)
	List(ctx context.Context) ([]entity.Task, error)
	GetByID(ctx context.Context, id uint) (*entity.Task, error)
	Update(ctx context.Context, id uint, patch usecase.TaskPatch) (*entity.Task, error)
	Delete(ctx context.Context, id uint) error
}

// TaskHandler は /tasks 配下のHTTPリクエストを処理します。
type TaskHandler struct {
	uc TaskUsecase
}

// NewTaskHandler は新しい TaskHandler を作成します。
func NewTaskHandler(uc TaskUsecase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// Create は POST /tasks を処理します。
// 所有者のユーザーが存在しない場合は404を返し、タスクは作成されません。
func (h *TaskHandler) Create(c *gin.Context) {
	var req api.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create task validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest})
		return
	}

	task, err := h.uc.Create(c.Request.Context(), usecase.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		UserID:      req.UserID,
	})
	if err != nil {
		respondTaskError(c, "create task", err)
		return
	}

	slog.Info("task created", "task_id", task.ID, "user_id", task.UserID)
	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List は GET /tasks を処理します。
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.uc.List(c.Request.Context())
	if err != nil {
		respondInternal(c, "list tasks", err)
		return
	}
	out := make([]api.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get は GET /tasks/:id を処理します。
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	task, err := h.uc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondTaskError(c, "get task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update は PUT /tasks/:id を処理します。
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	// 全項目が任意のため、ボディが空の場合は何も変更しない更新として扱います。
	var req api.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("update task validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest})
		return
	}

	task, err := h.uc.Update(c.Request.Context(), id, usecase.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondTaskError(c, "update task", err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete は DELETE /tasks/:id を処理します。
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		respondTaskError(c, "delete task", err)
		return
	}
	slog.Info("task deleted", "task_id", id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: api.MsgTaskDeleted})
}

func bindID(c *gin.Context) (uint, bool) {
	id, err := api.BindID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidID})
		return 0, false
	}
	return id, true
}

func respondTaskError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgTaskNotFound})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgUserNotFound})
	default:
		respondInternal(c, op, err)
	}
}

func respondInternal(c *gin.Context, op string, err error) {
	slog.Error(op+" failed", "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternalError})
}

func toTaskResponse(t *entity.Task) api.TaskResponse {
	return api.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
