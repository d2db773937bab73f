package config

import (
	"fmt"
	"os"
	"strings"
)

// Normalize fills blanks from the environment and defaults, and resolves every
// path against the project root. Load calls it; tests that build a Config by
// hand call it directly.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePython()
	if err := c.normalizeComponents(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeStatus()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	root := strings.TrimSpace(c.Paths.Root)
	if root == "" {
		if value, ok := os.LookupEnv("DESKBUDDY_ROOT"); ok && strings.TrimSpace(value) != "" {
			root = strings.TrimSpace(value)
		} else {
			root = defaultRoot
		}
	}
	var err error
	if c.Paths.Root, err = expandPath(root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.ModelsDir) == "" {
		c.Paths.ModelsDir = defaultModelsDir
	}
	if c.Paths.DataDir, err = resolveUnder(c.Paths.Root, c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = resolveUnder(c.Paths.Root, c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ModelsDir, err = resolveUnder(c.Paths.Root, c.Paths.ModelsDir); err != nil {
		return fmt.Errorf("paths.models_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePython() {
	c.Python.Interpreter = strings.TrimSpace(c.Python.Interpreter)
	if c.Python.Interpreter == "" {
		if value, ok := os.LookupEnv("DESKBUDDY_PYTHON"); ok && strings.TrimSpace(value) != "" {
			c.Python.Interpreter = strings.TrimSpace(value)
		} else {
			c.Python.Interpreter = defaultInterpreter
		}
	}
	modules := make([]string, 0, len(c.Python.RequiredModules))
	seen := make(map[string]struct{}, len(c.Python.RequiredModules))
	for _, module := range c.Python.RequiredModules {
		name := strings.TrimSpace(module)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		modules = append(modules, name)
	}
	c.Python.RequiredModules = modules
	if c.Python.ProbeTimeoutSeconds <= 0 {
		c.Python.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
}

func (c *Config) normalizeComponents() error {
	var err error
	if strings.TrimSpace(c.Dashboard.Entry) == "" {
		c.Dashboard.Entry = defaultDashboardEntry
	}
	if c.Dashboard.Entry, err = resolveUnder(c.Paths.Root, c.Dashboard.Entry); err != nil {
		return fmt.Errorf("dashboard.entry: %w", err)
	}
	c.Dashboard.ServerModule = strings.TrimSpace(c.Dashboard.ServerModule)
	if c.Dashboard.ServerModule == "" {
		c.Dashboard.ServerModule = defaultDashboardServer
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = defaultDashboardPort
	}
	if strings.TrimSpace(c.Collector.Entry) == "" {
		c.Collector.Entry = defaultCollectorEntry
	}
	if c.Collector.Entry, err = resolveUnder(c.Paths.Root, c.Collector.Entry); err != nil {
		return fmt.Errorf("collector.entry: %w", err)
	}
	if c.Startup.StopGraceSeconds <= 0 {
		c.Startup.StopGraceSeconds = defaultStopGraceSeconds
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultStoreDriver
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if c.Store.DSN == "" {
		if value, ok := os.LookupEnv("DESKBUDDY_STORE_DSN"); ok {
			c.Store.DSN = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	var err error
	if c.Store.Path, err = resolveUnder(c.Paths.Root, c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeStatus() {
	c.Status.InterpreterMarker = strings.TrimSpace(c.Status.InterpreterMarker)
	if c.Status.InterpreterMarker == "" {
		c.Status.InterpreterMarker = defaultInterpreterMarker
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
