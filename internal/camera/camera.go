// Package camera models camera capture as an acquire/release resource.
package camera

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPermissionDenied is returned when the user refuses camera access.
var ErrPermissionDenied = errors.New("camera permission denied")

// Permission is the outcome of a camera request.
type Permission string

const (
	PermissionUnknown Permission = ""
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps a config value to a Permission.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied:
		return Permission(s), nil
	default:
		return PermissionUnknown, fmt.Errorf("invalid camera permission %q (valid: granted, denied)", s)
	}
}

// Stream is an open capture stream. Close stops all tracks.
type Stream interface {
	Close() error
}

// Camera opens capture streams.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Simulated is a Camera with a fixed permission answer. It counts open
// streams so callers can verify release.
type Simulated struct {
	Permission Permission

	mu     sync.Mutex
	open   int
	opened int
}

// NewSimulated returns a Simulated camera.
func NewSimulated(p Permission) *Simulated {
	return &Simulated{Permission: p}
}

// Open implements Camera.
func (c *Simulated) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Permission != PermissionGranted {
		return nil, ErrPermissionDenied
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open++
	c.opened++
	return &simulatedStream{cam: c}, nil
}

// OpenStreams returns how many streams are still held.
func (c *Simulated) OpenStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Opened returns how many streams were ever opened.
func (c *Simulated) Opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

type simulatedStream struct {
	cam  *Simulated
	once sync.Once
}

func (s *simulatedStream) Close() error {
	s.once.Do(func() {
		s.cam.mu.Lock()
		s.cam.open--
		s.cam.mu.Unlock()
	})
	return nil
}
