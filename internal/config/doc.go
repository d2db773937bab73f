// Package config loads, normalizes, and validates DeskBuddy configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), resolves project-relative directories against the configured
// root, reads TOML files, and honours environment fallbacks such as
// DESKBUDDY_PYTHON. The Config type centralizes every knob the orchestrator
// needs: where the managed components live, how they are launched, and where
// the productivity store is kept.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
