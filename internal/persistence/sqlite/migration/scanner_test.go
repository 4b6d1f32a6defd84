package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestScanMigrationsSortsByNumericVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"010_late.sql":          {Data: []byte("CREATE TABLE late (id TEXT);")},
		"002_second.sql":        {Data: []byte("-- Description: Second step\nCREATE TABLE second (id TEXT);")},
		"001_initial_setup.sql": {Data: []byte("CREATE TABLE first (id TEXT);")},
		"README.md":             {Data: []byte("not a migration")},
		"nested/003_x.sql":      {Data: []byte("CREATE TABLE nested (id TEXT);")},
	}

	migrations, err := NewFileScanner().ScanMigrations(fsys)
	if err != nil {
		t.Fatalf("ScanMigrations returned error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	wantVersions := []string{"001", "002", "010"}
	for i, want := range wantVersions {
		if migrations[i].Version != want {
			t.Fatalf("migration %d: expected version %s, got %s", i, want, migrations[i].Version)
		}
	}
	if migrations[0].Description != "initial setup" {
		t.Fatalf("expected description derived from filename, got %q", migrations[0].Description)
	}
	if migrations[1].Description != "Second step" {
		t.Fatalf("expected description from comment, got %q", migrations[1].Description)
	}
	if len(migrations[0].Checksum) != 64 {
		t.Fatalf("expected sha256 hex checksum, got %q", migrations[0].Checksum)
	}
}

func TestScanMigrationsRejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		files fstest.MapFS
		want  error
	}{
		"duplicate version": {
			files: fstest.MapFS{
				"001_a.sql": {Data: []byte("CREATE TABLE a (id TEXT);")},
				"001_b.sql": {Data: []byte("CREATE TABLE b (id TEXT);")},
			},
			want: ErrDuplicateVersion,
		},
		"bad name": {
			files: fstest.MapFS{"create_users.sql": {Data: []byte("CREATE TABLE a (id TEXT);")}},
			want:  ErrInvalidMigrationFile,
		},
		"comments only": {
			files: fstest.MapFS{"001_empty.sql": {Data: []byte("-- Description: nothing\n-- here\n")}},
			want:  ErrInvalidMigrationFile,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := NewFileScanner().ScanMigrations(tt.files)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSplitStatementsDropsComments(t *testing.T) {
	t.Parallel()

	statements := splitStatements(`
-- Description: two statements
CREATE TABLE a (id TEXT);
-- trailing comment
INSERT INTO a (id) VALUES ('x');
`)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[1] != "INSERT INTO a (id) VALUES ('x')" {
		t.Fatalf("unexpected statement %q", statements[1])
	}
}

func TestEmbeddedFilesScan(t *testing.T) {
	t.Parallel()

	migrations, err := NewFileScanner().ScanMigrations(Files())
	if err != nil {
		t.Fatalf("embedded migrations failed to scan: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected schema and seed migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001" || migrations[1].Version != "002" {
		t.Fatalf("unexpected versions %s, %s", migrations[0].Version, migrations[1].Version)
	}
}
