package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwulff/asltutor/internal/camera"
	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/recognizer"
	"github.com/jwulff/asltutor/internal/session"
)

// TestLiveTUIFlow drives the model against a session running on real
// timers, reading updates through the same blocking command the program uses.
func TestLiveTUIFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("uses real timers")
	}

	rec, err := recognizer.NewRandom(recognizer.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	cam := camera.NewSimulated(camera.PermissionGranted)
	sess, err := session.New(session.Options{
		Recognizer:          rec,
		Camera:              cam,
		TickInterval:        20 * time.Millisecond,
		CalibrationInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	m := New(Config{Session: sess, Catalog: gestures.MustDefault()})
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	t.Logf("=== Initial View ===\n%s", m.View())

	m, _ = applyUpdate(m, enableCameraCmd(sess)())
	if m.snap.Permission != camera.PermissionGranted {
		t.Fatalf("permission = %q", m.snap.Permission)
	}

	m, _ = applyUpdate(m, keyMsg(KeySpace))
	if !m.snap.Active {
		t.Fatal("expected recognition to be active")
	}

	// Collect detections through the update loop.
	cmd := waitForUpdateCmd(sess.Updates())
	deadline := time.After(5 * time.Second)
	for m.snap.Detections < 3 {
		msgs := make(chan tea.Msg, 1)
		go func(c tea.Cmd) { msgs <- c() }(cmd)
		select {
		case msg := <-msgs:
			m, cmd = applyUpdate(m, msg)
			if cmd == nil {
				t.Fatal("update loop stopped early")
			}
		case <-deadline:
			t.Fatalf("only %d detections after 5s", m.snap.Detections)
		}
	}
	t.Logf("=== Recognizing View ===\n%s", m.View())

	if len(m.snap.History) < 3 {
		t.Errorf("history = %v", m.snap.History)
	}
	if !m.snap.Active || m.snap.Label == "" {
		t.Errorf("snapshot = %+v", m.snap)
	}

	m, _ = applyUpdate(m, keyMsg(KeySpace))
	if m.snap.Active {
		t.Error("expected recognition to stop")
	}

	m, _ = applyUpdate(m, keyMsg(KeyQuit))
	if cam.OpenStreams() != 0 {
		t.Errorf("open streams = %d after quit", cam.OpenStreams())
	}

	// The update stream must end once the session is closed.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case _, ok := <-sess.Updates():
			if !ok {
				return
			}
		case <-ctx.Done():
			t.Fatal("update stream still open after quit")
		}
	}
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	newModel, cmd := m.Update(msg)
	return newModel.(Model), cmd
}
