// Package deps resolves the external executables the orchestrator shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external executable DeskBuddy relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Resolved    string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// InterpreterRequirement describes the Python interpreter both managed components run under.
func InterpreterRequirement(command string) Requirement {
	return Requirement{
		Name:        "Python interpreter",
		Command:     command,
		Description: "Runs the collector and dashboard and resolves required modules",
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Resolved = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired filters statuses down to unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
