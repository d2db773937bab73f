// Package components defines the two processes DeskBuddy manages: the
// background data collector and the web dashboard.
package components

import (
	"path/filepath"
	"strconv"
	"strings"

	"deskbuddy/internal/config"
)

// Name identifies a managed component.
type Name string

const (
	Collector Name = "collector"
	Dashboard Name = "dashboard"
)

// Component is a launchable child process plus the substrings that identify
// it in a process command line.
type Component struct {
	Name      Name
	Label     string
	Entry     string
	Args      []string
	Signature []string
}

// NewCollector describes the data collector for cfg.
func NewCollector(cfg *config.Config) Component {
	entry := cfg.Collector.Entry
	return Component{
		Name:      Collector,
		Label:     "Data Collection",
		Entry:     entry,
		Args:      []string{entry},
		Signature: []string{filepath.Base(entry)},
	}
}

// NewDashboard describes the dashboard server for cfg. The server module is
// run with a fixed port and the configured headless mode.
func NewDashboard(cfg *config.Config) Component {
	entry := cfg.Dashboard.Entry
	server := cfg.Dashboard.ServerModule
	return Component{
		Name:  Dashboard,
		Label: "Dashboard",
		Entry: entry,
		Args: []string{
			"-m", server, "run", entry,
			"--server.port", strconv.Itoa(cfg.Dashboard.Port),
			"--server.headless", strconv.FormatBool(cfg.Dashboard.Headless),
		},
		Signature: []string{server, filepath.Base(entry)},
	}
}

// All returns the managed components in report order.
func All(cfg *config.Config) []Component {
	return []Component{NewCollector(cfg), NewDashboard(cfg)}
}

// Matches reports whether cmdline contains every signature substring.
// An empty command line never matches.
func (c Component) Matches(cmdline string) bool {
	if cmdline == "" || len(c.Signature) == 0 {
		return false
	}
	for _, part := range c.Signature {
		if part == "" || !strings.Contains(cmdline, part) {
			return false
		}
	}
	return true
}
