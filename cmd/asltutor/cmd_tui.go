package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/app"
	"github.com/jwulff/asltutor/internal/auth"
	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/speech"
	"github.com/jwulff/asltutor/internal/ui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := cmd.Context()

	rec, err := newRecognizer(env.cfg)
	if err != nil {
		return err
	}
	sess, err := newSession(env, rec)
	if err != nil {
		return err
	}
	// Quitting closes the session; this covers an interrupted program.
	defer sess.Close()

	user, err := auth.NewService(env.store).Current(ctx)
	if err != nil {
		env.log.Warn("reading signed-in user", "error", err)
	}

	themeName := env.cfg.Theme
	var saved string
	if ok, err := env.store.Preference(ctx, db.PrefTheme, &saved); err == nil && ok {
		themeName = saved
	}

	model := app.New(app.Config{
		Session: sess,
		Store:   env.store,
		Catalog: gestures.MustDefault(),
		Speaker: speech.New(env.cfg.Speech.Command, env.log),
		Theme:   ui.ThemeByName(themeName),
		User:    user,
		Logger:  env.log,
	})

	env.log.Info("starting tui", "theme", themeName, "signed_in", user != nil)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
