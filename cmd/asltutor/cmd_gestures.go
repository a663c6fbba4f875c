package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/gestures"
)

func newGesturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gestures",
		Short: "List gestures in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			search, _ := cmd.Flags().GetString("search")
			category, _ := cmd.Flags().GetString("category")
			difficulty, _ := cmd.Flags().GetString("difficulty")
			featured, _ := cmd.Flags().GetBool("featured")

			catalog, err := gestures.Default()
			if err != nil {
				return err
			}

			var found []gestures.Gesture
			if featured {
				found = catalog.Featured()
			} else {
				found = catalog.Search(gestures.Query{
					Text:       search,
					Category:   category,
					Difficulty: gestures.Difficulty(difficulty),
				})
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if found == nil {
					found = []gestures.Gesture{}
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"gestures": found,
					"count":    len(found),
				})
			}
			if len(found) == 0 {
				fmt.Fprintln(out, "No gestures match.")
				return nil
			}
			for _, g := range found {
				fmt.Fprintf(out, "%-14s %-14s %-18s %s\n", g.ID, g.Name, g.Category, g.Difficulty)
			}
			return nil
		},
	}
	cmd.Flags().String("search", "", "Match text in name or category")
	cmd.Flags().String("category", "", "Only this category")
	cmd.Flags().String("difficulty", "", "Only this difficulty (beginner, intermediate, advanced)")
	cmd.Flags().Bool("featured", false, "Only featured gestures")

	cmd.AddCommand(newGestureShowCmd())
	return cmd
}

func newGestureShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show a gesture's description and tips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			catalog, err := gestures.Default()
			if err != nil {
				return err
			}
			key := strings.Join(args, " ")
			g, ok := catalog.ByID(key)
			if !ok {
				g, ok = catalog.ByName(key)
			}
			if !ok {
				return fmt.Errorf("gesture not found: %s", key)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(g)
			}
			fmt.Fprintf(out, "%s (%s, %s)\n\n", g.Name, g.Category, g.Difficulty)
			fmt.Fprintln(out, g.Description)
			if len(g.Tips) > 0 {
				fmt.Fprintln(out, "\nTips:")
				for _, tip := range g.Tips {
					fmt.Fprintf(out, "  - %s\n", tip)
				}
			}
			return nil
		},
	}
}
