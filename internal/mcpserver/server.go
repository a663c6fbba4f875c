// Package mcpserver exposes the gesture library, saved translations and
// learning progress to MCP clients over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/recognizer"
)

// Store is the persistence the tools read.
type Store interface {
	Translations(ctx context.Context) ([]db.Translation, error)
	CompletedGestures(ctx context.Context, email string) (map[string]time.Time, error)
}

// Config holds server configuration.
type Config struct {
	Name       string // Server name (e.g., "asltutor")
	Version    string
	Store      Store
	Catalog    *gestures.Catalog
	Recognizer recognizer.Recognizer // optional; enables sample_detection
	Logger     *slog.Logger
}

// Server wraps the MCP server with asltutor's tools.
type Server struct {
	mcp     *server.MCPServer
	store   Store
	catalog *gestures.Catalog
	rec     recognizer.Recognizer
	log     *slog.Logger
}

// NewServer creates a server with all tools registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("mcpserver: catalog is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("mcpserver: store is required")
	}
	s := &Server{
		mcp:     server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(false)),
		store:   cfg.Store,
		catalog: cfg.Catalog,
		rec:     cfg.Recognizer,
		log:     cfg.Logger,
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdin/stdout until the client disconnects, ctx is
// cancelled or the process is interrupted.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.log.Info("mcp server listening on stdio")
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, in, out)
}
