// Package usecase implements the business logic for the task feature.
package usecase

import "errors"

var (
	// ErrTaskNotFound is returned when a task cannot be found by ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a task references an owner that does not exist.
	ErrUserNotFound = errors.New("user not found")
)
