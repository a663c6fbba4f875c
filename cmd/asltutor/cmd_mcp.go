package main

import (
	"github.com/spf13/cobra"

	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the gesture library and saved data over MCP (stdio)",
		Long: `Start an MCP server on stdin/stdout so AI agents can browse the gesture
library, read saved translations and check learning progress.

Example client configuration:

  {
    "mcpServers": {
      "asltutor": { "command": "asltutor", "args": ["mcp"] }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd, true)
			if err != nil {
				return err
			}
			defer env.Close()

			rec, err := newRecognizer(env.cfg)
			if err != nil {
				return err
			}
			srv, err := mcpserver.NewServer(mcpserver.Config{
				Name:       "asltutor",
				Version:    version,
				Store:      env.store,
				Catalog:    gestures.MustDefault(),
				Recognizer: rec,
				Logger:     env.log,
			})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
