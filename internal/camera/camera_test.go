package camera

import (
	"context"
	"errors"
	"testing"
)

func TestSimulatedGranted(t *testing.T) {
	cam := NewSimulated(PermissionGranted)
	s, err := cam.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if cam.OpenStreams() != 1 {
		t.Errorf("open streams = %d, want 1", cam.OpenStreams())
	}
	s.Close()
	s.Close()
	if cam.OpenStreams() != 0 {
		t.Errorf("open streams after close = %d, want 0", cam.OpenStreams())
	}
}

func TestSimulatedDenied(t *testing.T) {
	cam := NewSimulated(PermissionDenied)
	_, err := cam.Open(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
	if cam.Opened() != 0 {
		t.Errorf("opened = %d, want 0", cam.Opened())
	}
}

func TestParsePermission(t *testing.T) {
	if p, err := ParsePermission("granted"); err != nil || p != PermissionGranted {
		t.Errorf("granted: %v %v", p, err)
	}
	if p, err := ParsePermission("denied"); err != nil || p != PermissionDenied {
		t.Errorf("denied: %v %v", p, err)
	}
	if _, err := ParsePermission("maybe"); err == nil {
		t.Error("expected error for invalid permission")
	}
}
