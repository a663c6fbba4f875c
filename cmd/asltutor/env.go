package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/camera"
	"github.com/jwulff/asltutor/internal/config"
	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/logging"
	"github.com/jwulff/asltutor/internal/recognizer"
	"github.com/jwulff/asltutor/internal/session"
)

// appEnv is what every command needs: configuration, a logger and the
// database.
type appEnv struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *db.Store
	closers []io.Closer
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// openEnv loads config and opens the database. Interactive and stdio
// commands own the terminal, so they log to a file instead of stderr.
func openEnv(cmd *cobra.Command, logToFile bool) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	e := &appEnv{cfg: cfg}

	if logToFile {
		logger, closer, err := logging.OpenFile(cfg.Logging.Level, cfg.LogPath())
		if err != nil {
			return nil, err
		}
		e.log = logger
		e.closers = append(e.closers, closer)
	} else {
		e.log = logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	}

	store, err := db.Open(cmd.Context(), cfg.DatabasePath())
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e.store = store
	e.log.Debug("database opened", "path", cfg.DatabasePath())
	return e, nil
}

func (e *appEnv) Close() {
	if e.store != nil {
		e.store.Close()
	}
	for _, c := range e.closers {
		c.Close()
	}
}

// newRecognizer builds the simulated recognizer from config.
func newRecognizer(cfg *config.Config, opts ...recognizer.Option) (*recognizer.Random, error) {
	return recognizer.NewRandom(cfg.Policy(), opts...)
}

// newSession wires a recognition session from config.
func newSession(e *appEnv, rec recognizer.Recognizer) (*session.Session, error) {
	perm, err := camera.ParsePermission(e.cfg.Camera.Permission)
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Recognizer:          rec,
		Camera:              camera.NewSimulated(perm),
		Store:               e.store,
		Logger:              e.log,
		TickInterval:        e.cfg.Recognition.TickInterval,
		CalibrationInterval: e.cfg.Calibration.Interval,
		CalibrationStep:     e.cfg.Calibration.Step,
	})
}

// learner returns the signed-in user's email, or "" for the guest learner.
func learner(cmd *cobra.Command, e *appEnv) string {
	var cu db.CurrentUser
	ok, err := e.store.Preference(cmd.Context(), db.PrefCurrentUser, &cu)
	if err != nil || !ok {
		return ""
	}
	return cu.Email
}
