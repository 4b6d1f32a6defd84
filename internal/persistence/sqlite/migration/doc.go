// Package migration applies versioned schema changes to the portal's SQLite
// database.
//
// Migration files are embedded into the binary and follow the naming
// convention {version}_{description}.sql (e.g. "001_schema.sql"). A leading
// "-- Description:" comment overrides the description derived from the file
// name.
//
// Applied migrations are tracked in the schema_migrations table together with
// the checksum of the file that was applied. Each migration and its tracking
// row are written in a single transaction, so a failed migration leaves no
// trace. A file whose content changed after it was applied is reported as a
// version conflict instead of being silently skipped.
//
// Example usage:
//
//	manager := migration.NewManager(db, migration.Files(), logger)
//	if err := manager.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
