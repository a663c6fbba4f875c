package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/auth"
	"github.com/jwulff/asltutor/internal/db"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the local learner account",
	}
	cmd.AddCommand(
		newSignUpCmd(),
		newSignInCmd(),
		newSignOutCmd(),
		newWhoAmICmd(),
	)
	return cmd
}

func newSignUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			confirm, _ := cmd.Flags().GetString("confirm")

			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			cu, err := auth.NewService(env.store).SignUp(cmd.Context(), name, email, password, confirm)
			if err != nil {
				return err
			}
			env.log.Info("account created", "email", cu.Email)
			return printUser(cmd, cu, "Welcome")
		},
	}
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password (at least 6 characters)")
	cmd.Flags().String("confirm", "", "Password again")
	return cmd
}

func newSignInCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			cu, err := auth.NewService(env.store).SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return printUser(cmd, cu, "Welcome back")
		},
	}
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("password", "", "Password")
	return cmd
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := auth.NewService(env.store).SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()

			cu, err := auth.NewService(env.store).Current(cmd.Context())
			if err != nil {
				return err
			}
			if cu == nil {
				jsonOut, _ := cmd.Flags().GetBool("json")
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{"signedIn": false})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			return printUser(cmd, cu, "Signed in as")
		},
	}
}

func printUser(cmd *cobra.Command, cu *db.CurrentUser, prefix string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(cu)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s>\n", prefix, cu.Name, cu.Email)
	return nil
}
