package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/db"
)

func newSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved translations",
	}
	cmd.AddCommand(newSavedListCmd(), newSavedDeleteCmd())
	return cmd
}

func newSavedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved translations, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			items, err := env.store.Translations(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if items == nil {
					items = []db.Translation{}
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"translations": items,
					"count":        len(items),
				})
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No saved translations.")
				return nil
			}
			for i, tr := range items {
				fmt.Fprintf(out, "%3d. [%s] %s\n", i+1, tr.Timestamp.Local().Format("2006-01-02 15:04:05"), tr.Text)
			}
			return nil
		},
	}
}

func newSavedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete a saved translation by its number in `saved list`",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid number: %s", args[0])
			}
			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.store.DeleteTranslation(cmd.Context(), n-1); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no saved translation #%d", n)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted translation #%d\n", n)
			return nil
		},
	}
}
