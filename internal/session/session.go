// Package session implements the recognition session behind the translator
// view: recognition on/off, a timer-driven detection feed, a rolling history
// of recent labels and a self-terminating calibration run.
//
// All timers are owned by the Session. Stop and Close cancel them, and every
// timer callback re-checks a run generation under the session lock, so no
// callback can mutate state once Stop or Close has returned.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwulff/asltutor/internal/camera"
	"github.com/jwulff/asltutor/internal/logging"
	"github.com/jwulff/asltutor/internal/recognizer"
	"github.com/jwulff/asltutor/internal/schedule"
)

// Defaults for session timing.
const (
	DefaultTickInterval        = 3 * time.Second
	DefaultCalibrationInterval = 500 * time.Millisecond
	DefaultCalibrationStep     = 10
)

var (
	// ErrPermissionDenied means recognition needs a granted camera first.
	ErrPermissionDenied = camera.ErrPermissionDenied
	// ErrCalibrating means start/stop is disabled while calibration runs.
	ErrCalibrating = errors.New("calibration in progress")
	// ErrAlreadyCalibrating rejects a second calibration run.
	ErrAlreadyCalibrating = errors.New("already calibrating")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
	// ErrNoStore is returned by Save when no translation store is configured.
	ErrNoStore = errors.New("no translation store configured")
)

// State is the session's display mode.
type State string

const (
	StateIdle        State = "idle"
	StateActive      State = "active"
	StateCalibrating State = "calibrating"
)

// TranslationStore persists saved translations.
type TranslationStore interface {
	AddTranslation(ctx context.Context, text string, at time.Time) error
}

// Options configures a Session. Recognizer and Camera are required.
type Options struct {
	Recognizer recognizer.Recognizer
	Camera     camera.Camera
	Store      TranslationStore
	Scheduler  schedule.Scheduler
	Logger     *slog.Logger
	Now        func() time.Time

	TickInterval        time.Duration
	CalibrationInterval time.Duration
	CalibrationStep     int
	HistorySize         int
}

// Session is one translator view's recognition state. It is safe for
// concurrent use; timer callbacks arrive on scheduler goroutines.
type Session struct {
	rec   recognizer.Recognizer
	cam   camera.Camera
	store TranslationStore
	sched schedule.Scheduler
	log   *slog.Logger
	now   func() time.Time

	tickInterval time.Duration
	calInterval  time.Duration
	calStep      int

	mu          sync.Mutex
	closed      bool
	active      bool
	calibrating bool
	progress    int
	permission  camera.Permission
	stream      camera.Stream
	current     recognizer.Detection
	history     *History
	detections  int
	tickTask    schedule.Task
	calTask     schedule.Task
	runGen      uint64
	calGen      uint64
	updates     chan Update
}

// New creates an idle Session.
func New(opts Options) (*Session, error) {
	if opts.Recognizer == nil {
		return nil, fmt.Errorf("session: recognizer is required")
	}
	if opts.Camera == nil {
		return nil, fmt.Errorf("session: camera is required")
	}
	s := &Session{
		rec:          opts.Recognizer,
		cam:          opts.Camera,
		store:        opts.Store,
		sched:        opts.Scheduler,
		log:          opts.Logger,
		now:          opts.Now,
		tickInterval: opts.TickInterval,
		calInterval:  opts.CalibrationInterval,
		calStep:      opts.CalibrationStep,
		history:      NewHistory(opts.HistorySize),
		updates:      make(chan Update, 64),
	}
	if s.sched == nil {
		s.sched = schedule.Ticker{}
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tickInterval <= 0 {
		s.tickInterval = DefaultTickInterval
	}
	if s.calInterval <= 0 {
		s.calInterval = DefaultCalibrationInterval
	}
	if s.calStep == 0 {
		s.calStep = DefaultCalibrationStep
	}
	if s.calStep < 1 || s.calStep > 100 {
		return nil, fmt.Errorf("session: calibration step %d out of range 1..100", s.calStep)
	}
	return s, nil
}

// Updates delivers a notification after every state change. Sends never
// block; a slow reader misses intermediate updates but the latest Snapshot
// is always available. The channel is closed by Close.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// EnableCamera requests the camera. A denial leaves the session idle with
// PermissionDenied recorded; the caller may ask again.
func (s *Session) EnableCamera(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.stream != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	stream, err := s.cam.Open(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if errors.Is(err, camera.ErrPermissionDenied) {
			s.permission = camera.PermissionDenied
			s.log.Info("camera permission denied")
			s.notifyLocked(UpdateState)
		}
		return fmt.Errorf("enable camera: %w", err)
	}
	if s.closed {
		stream.Close()
		return ErrClosed
	}
	if s.stream != nil {
		// Lost a race with a concurrent EnableCamera.
		stream.Close()
		return nil
	}
	s.stream = stream
	s.permission = camera.PermissionGranted
	s.log.Debug("camera enabled")
	s.notifyLocked(UpdateState)
	return nil
}

// Start begins recognition. The first detection arrives one tick interval
// later, then one per interval.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *Session) startLocked() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.calibrating:
		return ErrCalibrating
	case s.permission != camera.PermissionGranted:
		return ErrPermissionDenied
	case s.active:
		return nil
	}

	s.active = true
	s.runGen++
	gen := s.runGen
	s.tickTask = s.sched.Every(s.tickInterval, func() { s.tick(gen) })
	s.log.Debug("recognition started", "interval", s.tickInterval)
	s.notifyLocked(UpdateState)
	return nil
}

// Stop ends recognition and clears the current detection.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.haltLocked()
}

func (s *Session) haltLocked() error {
	if s.closed {
		return nil
	}
	if s.calibrating {
		return ErrCalibrating
	}
	if !s.active {
		return nil
	}
	s.stopLocked()
	s.log.Debug("recognition stopped", "detections", s.detections)
	s.notifyLocked(UpdateState)
	return nil
}

func (s *Session) stopLocked() {
	s.active = false
	s.runGen++
	if s.tickTask != nil {
		s.tickTask.Cancel()
		s.tickTask = nil
	}
	s.current = recognizer.Detection{}
}

// Toggle starts recognition when idle and stops it when active. The
// decision and the transition happen under one lock.
func (s *Session) Toggle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return s.haltLocked()
	}
	return s.startLocked()
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.active || gen != s.runGen {
		return
	}
	if s.calibrating {
		return
	}
	d := s.rec.NextDetection()
	s.current = d
	s.history.Push(d.Label)
	s.detections++
	s.log.Log(context.Background(), logging.LevelTrace, "detection",
		"label", d.Label, "confidence", d.Confidence)
	s.notifyLocked(UpdateDetection)
}

// Calibrate starts a calibration run. Progress advances by the calibration
// step each interval and the run ends on its own at 100.
func (s *Session) Calibrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.calibrating {
		return ErrAlreadyCalibrating
	}
	s.calibrating = true
	s.progress = 0
	s.calGen++
	gen := s.calGen
	s.calTask = s.sched.Every(s.calInterval, func() { s.calibrationStep(gen) })
	s.log.Debug("calibration started")
	s.notifyLocked(UpdateCalibration)
	return nil
}

func (s *Session) calibrationStep(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.calibrating || gen != s.calGen {
		return
	}
	s.progress += s.calStep
	if s.progress >= 100 {
		s.progress = 100
		s.calibrating = false
		s.calTask.Cancel()
		s.calTask = nil
		s.log.Debug("calibration finished")
	}
	s.notifyLocked(UpdateCalibration)
}

// Save persists the current detection. It reports false without error when
// recognition is not running (idle or calibrating) or nothing has been
// detected yet. The current label is left in place.
func (s *Session) Save(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	label := s.current.Label
	if !s.active || s.calibrating || label == "" {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	if s.store == nil {
		return false, ErrNoStore
	}
	if err := s.store.AddTranslation(ctx, label, s.now()); err != nil {
		return false, fmt.Errorf("save translation: %w", err)
	}
	s.log.Info("translation saved", "text", label)
	return true, nil
}

// Close tears the session down: timers are cancelled, the camera stream is
// released and the Updates channel is closed. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.active {
		s.stopLocked()
	}
	if s.calTask != nil {
		s.calTask.Cancel()
		s.calTask = nil
	}
	s.calibrating = false
	s.calGen++
	s.closed = true
	close(s.updates)

	var err error
	if s.stream != nil {
		err = s.stream.Close()
		s.stream = nil
	}
	s.log.Debug("session closed")
	return err
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.calibrating:
		return StateCalibrating
	case s.active:
		return StateActive
	default:
		return StateIdle
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:               s.stateLocked(),
		Active:              s.active,
		Calibrating:         s.calibrating,
		CalibrationProgress: s.progress,
		Permission:          s.permission,
		Label:               s.current.Label,
		Confidence:          s.current.Confidence,
		DetectedAt:          s.current.At,
		History:             s.history.Labels(),
		Detections:          s.detections,
		Closed:              s.closed,
	}
}

func (s *Session) notifyLocked(kind UpdateKind) {
	if s.closed {
		return
	}
	select {
	case s.updates <- Update{Kind: kind, Snapshot: s.snapshotLocked()}:
	default:
	}
}
