// Package preflight decides whether the environment can run DeskBuddy's
// managed components.
//
// A Checker probes each required capability (an importable Python module)
// through a Resolver and reports the ones it cannot resolve, in the order
// they were configured. Probes never fail the check itself: a resolver
// error or panic simply marks that capability missing.
//
// Mutating commands run through Checker.Gate, which prints the readiness
// report and only invokes the wrapped action when every capability and the
// interpreter binary are present. Status and check commands call Check
// directly and never gate.
//
// CheckDirectoryAccess is shared with the bootstrapper to confirm the
// directories it creates are usable.
package preflight
