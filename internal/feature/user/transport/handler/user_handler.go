package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/api"
	"task_backend/internal/feature/user/domain/entity"
	"task_backend/internal/feature/user/usecase"
)

// UserUsecase はユーザー管理のユースケースを定義します。
type UserUsecase interface {
	Register(ctx context.Context, email, password, name string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	Update(ctx context.Context, id uint, patch usecase.UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id uint) error
}

// UserHandler は /users 配下のHTTPリクエストを処理します。
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler は新しい UserHandler を作成します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Create は POST /users を処理します。メールアドレス重複時は400を返します。
func (h *UserHandler) Create(c *gin.Context) {
	var req api.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest})
		return
	}

	user, err := h.uc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			slog.Warn("create user failed", "error", err, "email", req.Email)
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgEmailExists})
			return
		}
		respondInternal(c, "create user", err)
		return
	}

	slog.Info("user created", "user_id", user.ID, "email", user.Email)
	c.JSON(http.StatusOK, toUserResponse(user))
}

// List は GET /users を処理します。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.uc.List(c.Request.Context())
	if err != nil {
		respondInternal(c, "list users", err)
		return
	}
	out := make([]api.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get は GET /users/:id を処理します。
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	user, err := h.uc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondUserError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Update は PUT /users/:id を処理します。指定された項目のみを更新します。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	// 全項目が任意のため、ボディが空の場合は何も変更しない更新として扱います。
	var req api.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("update user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest})
		return
	}

	user, err := h.uc.Update(c.Request.Context(), id, usecase.UserPatch{Password: req.Password, Name: req.Name})
	if err != nil {
		respondUserError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete は DELETE /users/:id を処理します。ユーザーのタスクも削除されます。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		respondUserError(c, "delete user", err)
		return
	}
	slog.Info("user deleted", "user_id", id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: api.MsgUserDeleted})
}

func bindID(c *gin.Context) (uint, bool) {
	id, err := api.BindID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidID})
		return 0, false
	}
	return id, true
}

func respondUserError(c *gin.Context, op string, err error) {
	if errors.Is(err, usecase.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: api.MsgUserNotFound})
		return
	}
	respondInternal(c, op, err)
}

// respondInternal は詳細をログに残し、クライアントには固定メッセージのみを返します。
func respondInternal(c *gin.Context, op string, err error) {
	slog.Error(op+" failed", "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternalError})
}

func toUserResponse(u *entity.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
