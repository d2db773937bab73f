package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the project root and the directories bootstrapped beneath it.
type Paths struct {
	Root      string `toml:"root"`
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ModelsDir string `toml:"models_dir"`
}

// Python describes the interpreter that runs both managed components and the
// modules that must be importable before anything is launched.
type Python struct {
	Interpreter         string   `toml:"interpreter"`
	RequiredModules     []string `toml:"required_modules"`
	ProbeTimeoutSeconds int      `toml:"probe_timeout_seconds"`
}

// Dashboard contains launch settings for the web dashboard.
type Dashboard struct {
	Entry        string `toml:"entry"`
	ServerModule string `toml:"server_module"`
	Port         int    `toml:"port"`
	Headless     bool   `toml:"headless"`
}

// Collector contains launch settings for the telemetry collector.
type Collector struct {
	Entry string `toml:"entry"`
}

// Startup controls the dual-component startup sequence.
type Startup struct {
	DelaySeconds     int `toml:"delay_seconds"`
	StopGraceSeconds int `toml:"stop_grace_seconds"`
}

// Store selects the productivity store backend.
type Store struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
}

// Status tunes the process liveness heuristic.
type Status struct {
	InterpreterMarker string `toml:"interpreter_marker"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for DeskBuddy.
//
// Configuration sections by subsystem:
//   - Paths: project root plus data/logs/models directories
//   - Python: interpreter and required modules (readiness)
//   - Dashboard / Collector: managed component entry points
//   - Startup: ordering delay and interrupt grace period
//   - Store: productivity store backend
//   - Status: liveness matching
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Python    Python    `toml:"python"`
	Dashboard Dashboard `toml:"dashboard"`
	Collector Collector `toml:"collector"`
	Startup   Startup   `toml:"startup"`
	Store     Store     `toml:"store"`
	Status    Status    `toml:"status"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/deskbuddy/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and resolved against the project root.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("deskbuddy.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequiredDirectories lists the directories the bootstrapper creates, in creation order.
func (c *Config) RequiredDirectories() []string {
	return []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ModelsDir}
}

// LogFilePath is where the CLI appends log records once the log directory exists.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "deskbuddy.log")
}

// StartupDelay returns the pause between scheduling the collector and launching the dashboard.
func (c *Config) StartupDelay() time.Duration {
	return time.Duration(c.Startup.DelaySeconds) * time.Second
}

// StopGrace returns how long an interrupted child may take to exit before it is killed.
func (c *Config) StopGrace() time.Duration {
	return time.Duration(c.Startup.StopGraceSeconds) * time.Second
}

// ProbeTimeout bounds a single module probe.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Python.ProbeTimeoutSeconds) * time.Second
}

// DashboardURL returns the local address the dashboard serves on.
func (c *Config) DashboardURL() string {
	return "http://localhost:" + strconv.Itoa(c.Dashboard.Port)
}

// SetupLockPath is the lock file that serializes store initialization.
func (c *Config) SetupLockPath() string {
	return filepath.Join(c.Paths.LogDir, "deskbuddy.setup.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// resolveUnder expands pathValue and anchors relative values at root.
func resolveUnder(root, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(root, pathValue)
	}
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
