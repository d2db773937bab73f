package status

import (
	"fmt"
	"io"
)

// Render writes the operator report for snap.
func Render(w io.Writer, snap Snapshot) {
	if snap.Store.Connected {
		fmt.Fprintf(w, "✅ Database: Connected (%d records today)\n", snap.Store.Records)
	} else {
		fmt.Fprintf(w, "❌ Database: Error - %s\n", snap.Store.Error)
	}
	for _, comp := range snap.Components {
		fmt.Fprintln(w, ComponentLine(comp))
	}
	if snap.ProcessError != "" {
		fmt.Fprintf(w, "⚠️  Process scan: %s\n", snap.ProcessError)
	}
	if !snap.AnyRunning() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "💡 Start DeskBuddy with: deskbuddy --start")
	}
}

// ComponentLine renders one component's liveness.
func ComponentLine(comp ComponentStatus) string {
	if comp.Running {
		return fmt.Sprintf("✅ %s: Running", comp.Label)
	}
	return fmt.Sprintf("❌ %s: Stopped", comp.Label)
}
