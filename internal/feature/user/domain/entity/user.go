// Package entity defines the domain entities for the user feature.
package entity

import "time"

// User represents a registered user in the system.
// It is plain data; persistence is handled by the adapters package.
type User struct {
	// ID is the unique identifier assigned by the database.
	ID uint `gorm:"primaryKey"`

	// Email is the user's login identifier.
	// It must be unique across all users; the unique index is the backstop under concurrent signups.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the one-way hash of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// Name is the display name.
	Name string `gorm:"size:255;not null"`

	// Active defaults to true on registration.
	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
