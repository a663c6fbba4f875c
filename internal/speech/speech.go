// Package speech plays text aloud through a system text-to-speech command.
package speech

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Speaker speaks text. Speak never blocks and reports nothing back.
type Speaker interface {
	Speak(text string)
}

// Nop discards everything.
type Nop struct{}

// Speak implements Speaker.
func (Nop) Speak(string) {}

// Command runs an external TTS binary such as "say" or "espeak" with the
// text as its final argument.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
	Logger  *slog.Logger

	run func(ctx context.Context, name string, args ...string) error
}

// New returns a Command speaker for the given command line, or Nop when the
// command is empty or not on PATH.
func New(cmdline string, logger *slog.Logger) Speaker {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return Nop{}
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		if logger != nil {
			logger.Warn("tts command not found, speech disabled", "command", fields[0])
		}
		return Nop{}
	}
	return &Command{Name: fields[0], Args: fields[1:], Timeout: 10 * time.Second, Logger: logger}
}

// Speak implements Speaker.
func (c *Command) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	run := c.run
	if run == nil {
		run = runCommand
	}
	args := append(append([]string{}, c.Args...), text)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		if err := run(ctx, c.Name, args...); err != nil && c.Logger != nil {
			c.Logger.Warn("tts failed", "command", c.Name, "error", err)
		}
	}()
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
