// Package entity defines the domain entities for the task feature.
package entity

import (
	"time"

	userentity "task_backend/internal/feature/user/domain/entity"
)

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	// Status is free-form; no enumerated values are enforced.
	Status string `gorm:"size:100;not null"`
	UserID uint   `gorm:"not null;index"`

	// User exists only to declare the foreign key; deleting the user removes its tasks.
	User *userentity.User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
