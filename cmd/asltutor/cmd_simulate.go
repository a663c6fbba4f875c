package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/recognizer"
	"github.com/jwulff/asltutor/internal/session"
)

// simulateEvent is one line of `simulate --json` output.
type simulateEvent struct {
	Kind        string   `json:"kind"`
	State       string   `json:"state"`
	Label       string   `json:"label,omitempty"`
	Confidence  int      `json:"confidence,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	Calibration int      `json:"calibration"`
	History     []string `json:"history"`
	Saved       bool     `json:"saved,omitempty"`
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a headless recognition session and print detections",
		Long: `simulate enables the camera, starts recognition and prints each
detection until --duration elapses. With --calibrate, a calibration run
completes before recognition starts.`,
		RunE: runSimulate,
	}
	cmd.Flags().Duration("duration", 15*time.Second, "How long to run")
	cmd.Flags().Duration("interval", 0, "Detection interval (default from config)")
	cmd.Flags().Bool("calibrate", false, "Calibrate before recognizing")
	cmd.Flags().Bool("save", false, "Save every detection as a translation")
	cmd.Flags().Uint64("seed", 0, "Seed for reproducible detections")
	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	duration, _ := cmd.Flags().GetDuration("duration")
	interval, _ := cmd.Flags().GetDuration("interval")
	calibrate, _ := cmd.Flags().GetBool("calibrate")
	save, _ := cmd.Flags().GetBool("save")
	seed, _ := cmd.Flags().GetUint64("seed")

	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()
	if interval > 0 {
		env.cfg.Recognition.TickInterval = interval
	}

	var opts []recognizer.Option
	if cmd.Flags().Changed("seed") {
		opts = append(opts, recognizer.WithSource(rand.New(rand.NewPCG(seed, seed))))
	}
	rec, err := newRecognizer(env.cfg, opts...)
	if err != nil {
		return err
	}
	sess, err := newSession(env, rec)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	if err := sess.EnableCamera(ctx); err != nil {
		return err
	}
	if calibrate {
		err = sess.Calibrate()
	} else {
		err = sess.Start()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	emit := func(u session.Update, saved bool) {
		snap := u.Snapshot
		if jsonOut {
			ev := simulateEvent{
				Kind:        u.Kind.String(),
				State:       string(snap.State),
				Label:       snap.Label,
				Confidence:  snap.Confidence,
				Calibration: snap.CalibrationProgress,
				History:     snap.History,
				Saved:       saved,
			}
			if snap.Label != "" {
				ev.Tier = string(snap.Tier())
			}
			enc.Encode(ev)
			return
		}
		switch u.Kind {
		case session.UpdateDetection:
			mark := ""
			if saved {
				mark = "  saved"
			}
			fmt.Fprintf(out, "%s  %-12s %3d%%  %-6s%s\n",
				snap.DetectedAt.Format("15:04:05.000"), snap.Label, snap.Confidence, snap.Tier(), mark)
		case session.UpdateCalibration:
			fmt.Fprintf(out, "calibrating %3d%%\n", snap.CalibrationProgress)
		}
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()
	savedCount := 0

	// Calibration updates can be dropped when the buffer is full, so the
	// end of a run is read from the snapshot and also polled.
	var poll <-chan time.Time
	if calibrate {
		ticker := time.NewTicker(env.cfg.Calibration.Interval)
		defer ticker.Stop()
		poll = ticker.C
	}

loop:
	for {
		select {
		case u, ok := <-sess.Updates():
			if !ok {
				break loop
			}
			saved := false
			switch u.Kind {
			case session.UpdateDetection:
				if save {
					if saved, err = sess.Save(ctx); err != nil {
						return err
					}
					if saved {
						savedCount++
					}
				}
			case session.UpdateCalibration:
				if poll != nil {
					started, err := startAfterCalibration(sess)
					if err != nil {
						return err
					}
					if started {
						poll = nil
					}
				}
			}
			emit(u, saved)
		case <-poll:
			started, err := startAfterCalibration(sess)
			if err != nil {
				return err
			}
			if started {
				poll = nil
			}
		case <-timer.C:
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	snap := sess.Snapshot()
	if err := sess.Close(); err != nil {
		env.log.Warn("closing session", "error", err)
	}
	if jsonOut {
		return nil
	}
	fmt.Fprintf(out, "\n%d detections", snap.Detections)
	if save {
		fmt.Fprintf(out, ", %d saved", savedCount)
	}
	fmt.Fprintln(out)
	if len(snap.History) > 0 {
		fmt.Fprintf(out, "Recent: %s\n", strings.Join(snap.History, ", "))
	}
	return nil
}

// startAfterCalibration starts recognition once the session has left
// calibration. It reports whether recognition was started.
func startAfterCalibration(sess *session.Session) (bool, error) {
	if sess.Snapshot().Calibrating {
		return false, nil
	}
	if err := sess.Start(); err != nil {
		return false, err
	}
	return true, nil
}
