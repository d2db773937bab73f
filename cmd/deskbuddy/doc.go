// Package main hosts the DeskBuddy CLI entrypoint and command graph.
//
// The root command exposes one mutually exclusive selector per flow:
// --check, --setup, --start, --status, --dashboard and --collect. With no
// selector it prints usage. Mutating selectors run behind the readiness gate;
// --check and --status never do.
//
// Handled failures are reported as labeled console lines and the process
// still exits 0. Only usage errors, an unloadable config, or a panic inside an
// action produce a non-zero exit.
package main
