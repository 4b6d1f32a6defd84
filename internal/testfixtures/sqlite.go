package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/condo-portal/internal/persistence"
	"github.com/example/condo-portal/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database for integration-style tests. The seeded area and extra
// item catalog is present.
type SQLiteHarness struct {
	DB           *sqlite.DB
	Accounts     persistence.AccountRepository
	Sessions     persistence.SessionRepository
	Areas        persistence.AreaRepository
	Reservations persistence.ReservationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database file under tb.TempDir.
// Close is registered with tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	cfg := sqlite.DefaultConfig(filepath.Join(tb.TempDir(), "condo.db"))
	cfg.JournalMode = "MEMORY"
	cfg.Synchronous = "OFF"

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := db.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		_ = db.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		DB:           db,
		Accounts:     sqlite.NewAccountRepository(db),
		Sessions:     sqlite.NewSessionRepository(db),
		Areas:        sqlite.NewAreaRepository(db),
		Reservations: sqlite.NewReservationRepository(db),
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedAccounts stores the given accounts or fails the test.
func (h *SQLiteHarness) SeedAccounts(tb testing.TB, accounts ...AccountFixture) {
	tb.Helper()
	for _, account := range accounts {
		if err := h.Accounts.CreateAccount(context.Background(), account.Persistence()); err != nil {
			tb.Fatalf("failed to seed account %s: %v", account.UserID, err)
		}
	}
}
