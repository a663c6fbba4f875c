package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/progress"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show learning progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			who := learner(cmd, env)
			completed, err := env.store.CompletedGestures(cmd.Context(), who)
			if err != nil {
				return err
			}
			ov := progress.Summarize(gestures.MustDefault(), completed)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(ov)
			}
			if who == "" {
				fmt.Fprintln(out, "Learner: guest")
			} else {
				fmt.Fprintf(out, "Learner: %s\n", who)
			}
			fmt.Fprintf(out, "Overall: %d/%d (%d%%)\n", ov.Completed, ov.Total, ov.Percent)
			for _, cc := range ov.Categories {
				fmt.Fprintf(out, "  %-18s %d/%d\n", cc.Category, cc.Completed, cc.Total)
			}
			if !ov.LastActive.IsZero() {
				fmt.Fprintf(out, "Last practiced: %s\n", ov.LastActive.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.AddCommand(newProgressMarkCmd(true), newProgressMarkCmd(false))
	return cmd
}

func newProgressMarkCmd(done bool) *cobra.Command {
	use, short, verb := "mark <gesture>", "Mark a gesture as learned", "Marked"
	if !done {
		use, short, verb = "unmark <gesture>", "Mark a gesture as not learned", "Unmarked"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := gestures.MustDefault()
			key := strings.Join(args, " ")
			g, ok := catalog.ByID(key)
			if !ok {
				g, ok = catalog.ByName(key)
			}
			if !ok {
				return fmt.Errorf("gesture not found: %s", key)
			}

			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.store.SetCompleted(cmd.Context(), learner(cmd, env), g.ID, done); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, g.Name)
			return nil
		},
	}
}
