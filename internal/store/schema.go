package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Initialize creates the schema when absent and verifies its version otherwise.
// Calling it on an initialized store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	ctx = ensureContext(ctx)
	statements, err := schemaStatements(s.driver)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := s.execWithRetry(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return s.ensureVersion(ctx)
}

func (s *Store) ensureVersion(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	err = tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and run --setup)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// schemaStatements splits the driver's schema file into single statements so
// MySQL connections do not need multiStatements enabled.
func schemaStatements(driver string) ([]string, error) {
	raw, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return nil, fmt.Errorf("%w: no schema for %q", ErrUnsupportedDriver, driver)
	}
	var statements []string
	for _, part := range strings.Split(string(raw), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}
