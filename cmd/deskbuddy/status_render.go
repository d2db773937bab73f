package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"deskbuddy/internal/config"
	"deskbuddy/internal/status"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func runStatus(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, format outputFormat, verbose bool) error {
	snap := ctx.inspector(cmd, cfg).Inspect(cmd.Context())
	switch format {
	case outputJSON:
		return writeJSON(cmd, snap)
	case outputYAML:
		return writeYAML(cmd, snap)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "📈 DeskBuddy Status")
	fmt.Fprintln(out, strings.Repeat("=", ruleWidth))

	var report bytes.Buffer
	status.Render(&report, snap)
	fmt.Fprint(out, colorizeReport(report.String(), shouldColorize(out)))

	if verbose {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderMatches(snap))
	}
	return nil
}

func renderMatches(snap status.Snapshot) string {
	var rows [][]string
	for _, comp := range snap.Components {
		for _, proc := range comp.Matches {
			rows = append(rows, []string{
				strconv.FormatInt(int64(proc.PID), 10),
				comp.Label,
				proc.Name,
				proc.Cmdline(),
			})
		}
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No matching processes (%d interpreter candidates scanned)", snap.Candidates)
	}
	return renderTable(
		[]string{"PID", "Component", "Process", "Command"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// colorizeReport tints each report line by its leading marker.
func colorizeReport(report string, colorize bool) string {
	if !colorize {
		return report
	}
	lines := strings.SplitAfter(report, "\n")
	for i, line := range lines {
		body := strings.TrimRight(line, "\n")
		if body == "" {
			continue
		}
		if color := markerColor(body); color != "" {
			lines[i] = color + body + ansiReset + line[len(body):]
		}
	}
	return strings.Join(lines, "")
}

func markerColor(line string) string {
	switch {
	case strings.HasPrefix(line, "✅"):
		return ansiGreen
	case strings.HasPrefix(line, "❌"):
		return ansiRed
	case strings.HasPrefix(line, "⚠️"):
		return ansiYellow
	case strings.HasPrefix(line, "💡"):
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
