// Package store persists productivity records shared by the collector and
// the dashboard.
//
// SQLite is the default backend; MySQL can be selected with a DSN. Open
// connects and, for SQLite, creates the database file; Initialize creates or
// verifies the schema and is safe to call repeatedly. OpenExisting is the
// read-side entry point used by status inspection and never creates a file.
//
// The schema is versioned in schema_version. A mismatch yields
// ErrSchemaMismatch; there are no migrations, the database is recreated.
package store
