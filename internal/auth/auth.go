// Package auth implements local sign-up, sign-in and the signed-in marker.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jwulff/asltutor/internal/db"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ValidationError is a user-facing form error. It is never fatal; the
// caller re-prompts.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Store is the persistence auth needs.
type Store interface {
	CreateUser(ctx context.Context, u *db.User) error
	UserByEmail(ctx context.Context, email string) (*db.User, error)
	Preference(ctx context.Context, key string, v any) (bool, error)
	SetPreference(ctx context.Context, key string, v any) error
	DeletePreference(ctx context.Context, key string) error
}

// Service signs users in and out.
type Service struct {
	store Store
	cost  int
	now   func() time.Time
}

// NewService returns a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost, now: time.Now}
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, name, email, password, confirm string) (*db.CurrentUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" || confirm == "" {
		return nil, invalid("Please fill in all fields")
	}
	if password != confirm {
		return nil, invalid("Passwords do not match")
	}
	if len(password) < MinPasswordLength {
		return nil, invalid(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &db.User{Name: name, Email: email, PasswordHash: string(hash), CreatedAt: s.now()}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, invalid("Email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.markSignedIn(ctx, u)
}

// SignIn checks credentials and records the signed-in user.
func (s *Service) SignIn(ctx context.Context, email, password string) (*db.CurrentUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("Please fill in all fields")
	}
	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, invalid("Invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, invalid("Invalid email or password")
	}
	return s.markSignedIn(ctx, u)
}

// SignOut clears the signed-in marker.
func (s *Service) SignOut(ctx context.Context) error {
	return s.store.DeletePreference(ctx, db.PrefCurrentUser)
}

// Current returns the signed-in user, or nil when nobody is signed in.
func (s *Service) Current(ctx context.Context) (*db.CurrentUser, error) {
	var cu db.CurrentUser
	ok, err := s.store.Preference(ctx, db.PrefCurrentUser, &cu)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &cu, nil
}

func (s *Service) markSignedIn(ctx context.Context, u *db.User) (*db.CurrentUser, error) {
	cu := &db.CurrentUser{Name: u.Name, Email: u.Email, LoggedInAt: s.now().UTC()}
	if err := s.store.SetPreference(ctx, db.PrefCurrentUser, cu); err != nil {
		return nil, fmt.Errorf("record sign-in: %w", err)
	}
	return cu, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
