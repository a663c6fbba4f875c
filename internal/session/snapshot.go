package session

import (
	"time"

	"github.com/jwulff/asltutor/internal/camera"
	"github.com/jwulff/asltutor/internal/recognizer"
)

// Snapshot is a point-in-time copy of a Session's observable state.
type Snapshot struct {
	State               State
	Active              bool
	Calibrating         bool
	CalibrationProgress int
	Permission          camera.Permission
	Label               string
	Confidence          int
	DetectedAt          time.Time
	History             []string
	Detections          int
	Closed              bool
}

// Tier classifies the current confidence for display.
func (s Snapshot) Tier() recognizer.Tier {
	return recognizer.TierFor(s.Confidence)
}

// UpdateKind says what changed.
type UpdateKind int

const (
	UpdateState UpdateKind = iota
	UpdateDetection
	UpdateCalibration
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateDetection:
		return "detection"
	case UpdateCalibration:
		return "calibration"
	default:
		return "state"
	}
}

// Update is sent on Session.Updates after each change.
type Update struct {
	Kind     UpdateKind
	Snapshot Snapshot
}
