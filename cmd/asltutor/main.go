package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "asltutor",
		Short: "Learn American Sign Language from the terminal",
		Long: `asltutor is a terminal ASL learning app.

Run without arguments for the interactive tutor: a translator that simulates
sign recognition from the camera, a gesture library, progress tracking and
saved translations. Subcommands expose the same data for scripts and agents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.asltutor/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Override the data directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGesturesCmd(),
		newSavedCmd(),
		newProgressCmd(),
		newAccountCmd(),
		newSimulateCmd(),
		newMCPCmd(),
	)
	return rootCmd
}
