// Package api defines the JSON request and response bodies of the HTTP API.
package api

import "time"

// Static error messages returned to clients.
const (
	MsgInvalidRequest     = "invalid request"
	MsgInvalidID          = "invalid id"
	MsgUnauthorized       = "unauthorized, please log in"
	MsgInvalidCredentials = "invalid email or password"
	MsgEmailExists        = "email already exists"
	MsgUserNotFound       = "user not found"
	MsgTaskNotFound       = "task not found"
	MsgInternalError      = "internal server error"
	MsgTooManyRequests    = "too many requests"
	MsgUserDeleted        = "user deleted successfully"
	MsgTaskDeleted        = "task deleted successfully"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// UpdateUserRequest is the body of PUT /users/:id.
// A nil field was not supplied by the client.
type UpdateUserRequest struct {
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

// UserResponse is the public view of a user. The password hash is never exposed.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
	UserID      uint   `json:"userId" binding:"required"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id.
// A nil field was not supplied by the client.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TaskResponse is the JSON view of a task.
type TaskResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UserID      uint      `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
