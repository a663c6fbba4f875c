// Package config loads asltutor settings from YAML, an optional .env file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jwulff/asltutor/internal/camera"
	"github.com/jwulff/asltutor/internal/recognizer"
)

// Config contains all asltutor settings.
type Config struct {
	// DataDir holds the database and log file. Defaults to ~/.asltutor.
	DataDir string `yaml:"data_dir"`

	// Database overrides the SQLite path. Defaults to DataDir/asltutor.sqlite.
	Database string `yaml:"database,omitempty"`

	Logging     LoggingConfig     `yaml:"logging"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Camera      CameraConfig      `yaml:"camera"`
	Speech      SpeechConfig      `yaml:"speech"`

	// Theme is the initial theme when none has been saved: "dark" or "light".
	Theme string `yaml:"theme"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace". "trace" logs every detection.
	Level string `yaml:"level"`
}

// RecognitionConfig is the simulated recognizer's policy and timing.
type RecognitionConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval"`
	MinConfidence int           `yaml:"min_confidence"`
	MaxConfidence int           `yaml:"max_confidence"`
	Vocabulary    []string      `yaml:"vocabulary,omitempty"`
}

// CalibrationConfig controls the calibration run.
type CalibrationConfig struct {
	Interval time.Duration `yaml:"interval"`
	Step     int           `yaml:"step"`
}

// CameraConfig controls the simulated camera.
type CameraConfig struct {
	// Permission is the answer the simulated camera gives: "granted" or "denied".
	Permission string `yaml:"permission"`
}

// SpeechConfig controls text-to-speech.
type SpeechConfig struct {
	// Command is the TTS command line; the text is appended as the last
	// argument. Empty disables speech.
	Command string `yaml:"command"`
}

// Default returns a Config with the canonical recognition policy.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".asltutor"),
		Logging: LoggingConfig{Level: "info"},
		Recognition: RecognitionConfig{
			TickInterval:  3 * time.Second,
			MinConfidence: recognizer.DefaultMinConfidence,
			MaxConfidence: recognizer.DefaultMaxConfidence,
		},
		Calibration: CalibrationConfig{
			Interval: 500 * time.Millisecond,
			Step:     10,
		},
		Camera: CameraConfig{Permission: string(camera.PermissionGranted)},
		Speech: SpeechConfig{Command: defaultTTSCommand()},
		Theme:  "dark",
	}
}

func defaultTTSCommand() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// DefaultPath returns ~/.asltutor/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".asltutor", "config.yaml")
}

// Load applies, in order: defaults, the config file at path (skipped when
// absent), a .env file in the working directory, then ASLTUTOR_* variables.
// An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML config on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.DataDir = os.ExpandEnv(cfg.DataDir)
	cfg.Database = os.ExpandEnv(cfg.Database)
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.Recognition.TickInterval <= 0 {
		return fmt.Errorf("recognition.tick_interval must be positive, got %v", c.Recognition.TickInterval)
	}
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	if c.Calibration.Interval <= 0 {
		return fmt.Errorf("calibration.interval must be positive, got %v", c.Calibration.Interval)
	}
	if c.Calibration.Step < 1 || c.Calibration.Step > 100 {
		return fmt.Errorf("calibration.step must be between 1 and 100, got %d", c.Calibration.Step)
	}
	if _, err := camera.ParsePermission(c.Camera.Permission); err != nil {
		return err
	}
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, warn, error)", c.Logging.Level)
	}
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("invalid theme: %s (valid: dark, light)", c.Theme)
	}
	return nil
}

// Policy returns the recognizer policy described by the config.
func (c *Config) Policy() recognizer.Policy {
	p := recognizer.DefaultPolicy()
	if len(c.Recognition.Vocabulary) > 0 {
		p.Vocabulary = c.Recognition.Vocabulary
	}
	p.MinConfidence = c.Recognition.MinConfidence
	p.MaxConfidence = c.Recognition.MaxConfidence
	return p
}

// DatabasePath returns the SQLite file path.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.DataDir, "asltutor.sqlite")
}

// LogPath returns the log file used by the interactive UI.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "asltutor.log")
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("ASLTUTOR_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("ASLTUTOR_DB"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("ASLTUTOR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ASLTUTOR_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Recognition.TickInterval = d
		}
	}
	if v := os.Getenv("ASLTUTOR_CALIBRATION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Calibration.Interval = d
		}
	}
	if v := os.Getenv("ASLTUTOR_MIN_CONFIDENCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Recognition.MinConfidence = n
		}
	}
	if v := os.Getenv("ASLTUTOR_MAX_CONFIDENCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Recognition.MaxConfidence = n
		}
	}
	if v := os.Getenv("ASLTUTOR_CAMERA_PERMISSION"); v != "" {
		c.Camera.Permission = v
	}
	if v, ok := os.LookupEnv("ASLTUTOR_TTS_COMMAND"); ok {
		c.Speech.Command = v
	}
	if v := os.Getenv("ASLTUTOR_THEME"); v != "" {
		c.Theme = v
	}
}
