// Package db provides SQLite persistence for asltutor: saved translations,
// local accounts, preferences and learning progress.
package db

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a row or index does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when creating a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already in use")
)

// Translation is a saved recognition result.
type Translation struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// User is a local account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Preference keys.
const (
	PrefCurrentUser = "current-user"
	PrefTheme       = "theme"
)

// CurrentUser is the signed-in marker stored under PrefCurrentUser.
type CurrentUser struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	LoggedInAt time.Time `json:"loggedInAt"`
}
