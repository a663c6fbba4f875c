package app

import (
	"time"

	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/session"
)

// SessionUpdateMsg wraps a state change published by the session.
type SessionUpdateMsg struct {
	Update session.Update
}

// SessionClosedMsg is sent when the session's update stream ends.
type SessionClosedMsg struct{}

// CameraResultMsg carries the outcome of a camera request.
type CameraResultMsg struct {
	Err error
}

// SavedMsg carries the outcome of saving the current detection.
type SavedMsg struct {
	Text  string
	Saved bool
	Err   error
}

// TranslationsLoadedMsg carries saved translations read from SQLite.
type TranslationsLoadedMsg struct {
	Translations []db.Translation
	Err          error
}

// ProgressLoadedMsg carries the learner's completed gestures.
type ProgressLoadedMsg struct {
	Completed map[string]time.Time
	Err       error
}

// ErrorMsg reports a failed background operation.
type ErrorMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}

// ClearNoticeMsg clears the notice line after a timeout.
type ClearNoticeMsg struct{}
