package migration

import (
	"context"
	"io/fs"
	"time"
)

// Migration represents a database migration with its metadata and SQL content.
type Migration struct {
	Version     string // Version identifier (e.g., "001", "002")
	Description string // Human-readable description of the migration
	SQL         string // SQL statements to execute
	FilePath    string // Path of the file inside the migration filesystem
	Checksum    string // sha256 of SQL, hex encoded
}

// AppliedMigration represents a migration recorded in schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status provides information about the current migration state.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// FileScanner reads migration files from a filesystem.
type FileScanner interface {
	// ScanMigrations returns every migration in fsys sorted by version.
	ScanMigrations(fsys fs.FS) ([]Migration, error)

	// ValidateFileName checks if a migration file follows the naming convention.
	ValidateFileName(filename string) error

	// ParseMigrationFile reads and parses a single migration file.
	ParseMigrationFile(fsys fs.FS, name string) (Migration, error)
}

// Executor applies migrations against the database.
type Executor interface {
	// InitializeVersionTable creates schema_migrations if it does not exist.
	InitializeVersionTable(ctx context.Context) error

	// ApplyMigration runs the migration and records it in one transaction.
	ApplyMigration(ctx context.Context, migration Migration, appliedAt time.Time) (time.Duration, error)

	// GetAppliedVersions returns the recorded migrations ordered by version.
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
