package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/persistence"
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "condo.db"))
	cfg.JournalMode = "MEMORY"
	cfg.Synchronous = "OFF"

	db, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, repo *AccountRepository, id, email, role string) persistence.Account {
	t.Helper()

	account := persistence.Account{
		User: persistence.User{
			ID:           "user-" + id,
			Email:        email,
			PasswordHash: "hash-" + id,
			CreatedAt:    referenceTime,
		},
		Profile: persistence.Profile{
			ID:              "profile-" + id,
			FullName:        "Resident " + id,
			Role:            role,
			ApartmentNumber: "10" + id,
			IsActive:        true,
			CreatedAt:       referenceTime,
		},
	}
	if err := repo.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("CreateAccount(%s) failed: %v", id, err)
	}
	return account
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig("condo.db").Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	cfg := DefaultConfig("")
	cfg.JournalMode = "SIDEWAYS"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := DefaultConfig("file:condo.db?cache=shared").connectionString()
	want := "file:condo.db?cache=shared&_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	if got != want {
		t.Fatalf("connectionString() = %q, want %q", got, want)
	}
}

func TestAccountRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAccountRepository(setupTestDB(t))
	account := seedAccount(t, repo, "1", "Ana@Example.com", "tenant")

	user, err := repo.GetUserByEmail(ctx, "ana@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.ID != account.User.ID || user.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	profile, err := repo.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfileByUserID failed: %v", err)
	}
	if profile.Email != "ana@example.com" || !profile.IsActive || profile.Role != "tenant" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if !profile.CreatedAt.Equal(referenceTime) {
		t.Fatalf("expected created_at %v, got %v", referenceTime, profile.CreatedAt)
	}

	t.Run("duplicate email", func(t *testing.T) {
		dup := persistence.Account{
			User:    persistence.User{ID: "user-2", Email: "ANA@example.com", PasswordHash: "x"},
			Profile: persistence.Profile{ID: "profile-2", FullName: "Other", Role: "owner", IsActive: true},
		}
		if err := repo.CreateAccount(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		if _, err := repo.GetUser(ctx, "user-2"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected user insert to be rolled back, got %v", err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		bad := persistence.Account{
			User:    persistence.User{ID: "user-3", Email: "bad@example.com", PasswordHash: "x"},
			Profile: persistence.Profile{ID: "profile-3", FullName: "Bad", Role: "janitor"},
		}
		if err := repo.CreateAccount(ctx, bad); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("update profile", func(t *testing.T) {
		profile.Role = "syndic"
		profile.IsActive = false
		profile.Phone = "+55 11 99999-0000"
		profile.UpdatedAt = referenceTime.Add(time.Hour)
		if err := repo.UpdateProfile(ctx, profile); err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		updated, err := repo.GetProfile(ctx, profile.ID)
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if updated.Role != "syndic" || updated.IsActive || updated.Phone != profile.Phone {
			t.Fatalf("unexpected profile after update %+v", updated)
		}

		missing := profile
		missing.ID = "profile-404"
		if err := repo.UpdateProfile(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAccountRepositoryListProfiles(t *testing.T) {
	t.Parallel()

	repo := NewAccountRepository(setupTestDB(t))
	seedAccount(t, repo, "2", "b@example.com", "owner")
	seedAccount(t, repo, "1", "a@example.com", "tenant")

	profiles, err := repo.ListProfiles(context.Background())
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 2 || profiles[0].ID != "profile-1" || profiles[1].ID != "profile-2" {
		t.Fatalf("unexpected profiles %+v", profiles)
	}
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewSessionRepository(db)
	seedAccount(t, accounts, "1", "ana@example.com", "tenant")

	created, err := repo.CreateSession(ctx, persistence.Session{
		ID:        "session-1",
		UserID:    "user-1",
		Token:     " token-1 ",
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if created.Token != "token-1" || created.RevokedAt != nil {
		t.Fatalf("unexpected session %+v", created)
	}

	if _, err := repo.CreateSession(ctx, persistence.Session{ID: "session-x", UserID: "user-404", Token: "t", ExpiresAt: referenceTime}); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}

	created.Token = "token-2"
	created.ExpiresAt = referenceTime.Add(48 * time.Hour)
	rotated, err := repo.UpdateSession(ctx, created)
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	if rotated.Token != "token-2" {
		t.Fatalf("expected rotated token, got %s", rotated.Token)
	}
	if _, err := repo.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected old token to be gone, got %v", err)
	}

	revokedAt := referenceTime.Add(2 * time.Hour)
	revoked, err := repo.RevokeSession(ctx, "token-2", revokedAt)
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
		t.Fatalf("unexpected revoked_at %v", revoked.RevokedAt)
	}
	again, err := repo.RevokeSession(ctx, "token-2", revokedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("second RevokeSession failed: %v", err)
	}
	if !again.RevokedAt.Equal(revokedAt) {
		t.Fatalf("expected original revocation time to be kept, got %v", again.RevokedAt)
	}
	if _, err := repo.RevokeSession(ctx, "missing", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepositoryBulkOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	seedAccount(t, NewAccountRepository(db), "1", "ana@example.com", "tenant")
	repo := NewSessionRepository(db)

	for i, expires := range []time.Duration{-time.Hour, time.Hour, 2 * time.Hour} {
		_, err := repo.CreateSession(ctx, persistence.Session{
			ID:        "session-" + string(rune('a'+i)),
			UserID:    "user-1",
			Token:     "token-" + string(rune('a'+i)),
			ExpiresAt: referenceTime.Add(expires),
			CreatedAt: referenceTime,
		})
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	deleted, err := repo.DeleteExpiredSessions(ctx, referenceTime)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 expired session deleted, got %d", deleted)
	}

	revoked, err := repo.RevokeUserSessions(ctx, "user-1", referenceTime)
	if err != nil {
		t.Fatalf("RevokeUserSessions failed: %v", err)
	}
	if revoked != 2 {
		t.Fatalf("expected 2 sessions revoked, got %d", revoked)
	}
	if again, _ := repo.RevokeUserSessions(ctx, "user-1", referenceTime); again != 0 {
		t.Fatalf("expected no sessions left to revoke, got %d", again)
	}
}

func TestAreaRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAreaRepository(setupTestDB(t))

	areas, err := repo.ListAreas(ctx)
	if err != nil {
		t.Fatalf("ListAreas failed: %v", err)
	}
	if len(areas) != 3 {
		t.Fatalf("expected 3 seeded areas, got %d", len(areas))
	}

	churrasqueira, err := repo.GetArea(ctx, "2")
	if err != nil {
		t.Fatalf("GetArea failed: %v", err)
	}
	if churrasqueira.Name != "Churrasqueira" || churrasqueira.OpensAt != "06:00" || churrasqueira.ClosesAt != "22:00" {
		t.Fatalf("unexpected area %+v", churrasqueira)
	}
	if !churrasqueira.HourlyRate.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("unexpected hourly rate %s", churrasqueira.HourlyRate)
	}
	if len(churrasqueira.Amenities) != 3 || churrasqueira.Amenities[0] != "Churrasqueira" {
		t.Fatalf("unexpected amenities %v", churrasqueira.Amenities)
	}

	pool := persistence.Area{
		ID:         "4",
		Name:       "Piscina",
		Capacity:   15,
		HourlyRate: decimal.RequireFromString("35.5"),
		OpensAt:    "07:00",
		ClosesAt:   "20:00",
		Status:     "maintenance",
		CreatedAt:  referenceTime,
	}
	if err := repo.CreateArea(ctx, pool); err != nil {
		t.Fatalf("CreateArea failed: %v", err)
	}
	if err := repo.CreateArea(ctx, pool); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	pool.Status = "active"
	pool.Rules = []string{"Touca obrigatória"}
	if err := repo.UpdateArea(ctx, pool); err != nil {
		t.Fatalf("UpdateArea failed: %v", err)
	}
	stored, err := repo.GetArea(ctx, "4")
	if err != nil {
		t.Fatalf("GetArea failed: %v", err)
	}
	if stored.Status != "active" || len(stored.Rules) != 1 || len(stored.Amenities) != 0 {
		t.Fatalf("unexpected stored area %+v", stored)
	}

	pool.Capacity = 0
	if err := repo.UpdateArea(ctx, pool); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	extras, err := repo.ListExtraItems(ctx)
	if err != nil {
		t.Fatalf("ListExtraItems failed: %v", err)
	}
	if len(extras) != 4 || extras[0].ID != "1" || !extras[3].Price.Equal(decimal.RequireFromString("75")) {
		t.Fatalf("unexpected extras %+v", extras)
	}
}

func TestReservationRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	seedAccount(t, NewAccountRepository(db), "1", "ana@example.com", "tenant")
	seedAccount(t, NewAccountRepository(db), "2", "bia@example.com", "owner")
	repo := NewReservationRepository(db)

	base := persistence.Reservation{
		ProfileID:     "profile-1",
		AreaID:        "2",
		Date:          "2024-01-15",
		StartTime:     "12:00",
		EndTime:       "16:00",
		GuestCount:    10,
		Purpose:       "Aniversário",
		PaymentMethod: "pix",
		Status:        "pending",
		TotalAmount:   decimal.RequireFromString("185"),
		PaymentStatus: "pending",
		CreatedAt:     referenceTime,
	}

	first := base
	first.ID = "res-1"
	first.ExtraItemIDs = []string{"3", "1"}
	second := base
	second.ID = "res-2"
	second.ProfileID = "profile-2"
	second.AreaID = "1"
	second.Date = "2024-02-01"
	third := base
	third.ID = "res-3"
	third.StartTime = "08:00"
	third.EndTime = "10:00"

	for _, reservation := range []persistence.Reservation{first, second, third} {
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			t.Fatalf("CreateReservation(%s) failed: %v", reservation.ID, err)
		}
	}

	got, err := repo.GetReservation(ctx, "res-1")
	if err != nil {
		t.Fatalf("GetReservation failed: %v", err)
	}
	if got.AreaName != "Churrasqueira" || got.ResidentName != "Resident 1" {
		t.Fatalf("expected joined names, got %+v", got)
	}
	if len(got.ExtraItemIDs) != 2 || got.ExtraItemIDs[0] != "3" || got.ExtraItemIDs[1] != "1" {
		t.Fatalf("expected extras in insertion order, got %v", got.ExtraItemIDs)
	}
	if got.TotalAmount.StringFixed(2) != "185.00" {
		t.Fatalf("unexpected total %s", got.TotalAmount)
	}

	january, err := repo.ListReservations(ctx, persistence.ReservationFilter{FromDate: "2024-01-01", ToDate: "2024-01-31"})
	if err != nil {
		t.Fatalf("ListReservations failed: %v", err)
	}
	if len(january) != 2 || january[0].ID != "res-3" || january[1].ID != "res-1" {
		t.Fatalf("expected January reservations ordered by start time, got %+v", january)
	}
	if len(january[1].ExtraItemIDs) != 2 {
		t.Fatalf("expected extras to be loaded for listed reservations")
	}

	mine, err := repo.ListReservations(ctx, persistence.ReservationFilter{ProfileID: "profile-2"})
	if err != nil {
		t.Fatalf("ListReservations failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "res-2" {
		t.Fatalf("unexpected reservations for profile-2: %+v", mine)
	}

	if err := repo.UpdateReservationStatus(ctx, "res-1", "confirmed", referenceTime.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateReservationStatus failed: %v", err)
	}
	confirmed, err := repo.ListReservations(ctx, persistence.ReservationFilter{Status: "confirmed"})
	if err != nil {
		t.Fatalf("ListReservations failed: %v", err)
	}
	if len(confirmed) != 1 || confirmed[0].ID != "res-1" {
		t.Fatalf("unexpected confirmed reservations %+v", confirmed)
	}
	if err := repo.UpdateReservationStatus(ctx, "res-404", "confirmed", referenceTime); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReservationRepositoryConstraints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	seedAccount(t, NewAccountRepository(db), "1", "ana@example.com", "tenant")
	repo := NewReservationRepository(db)

	valid := persistence.Reservation{
		ID:            "res-1",
		ProfileID:     "profile-1",
		AreaID:        "2",
		Date:          "2024-01-15",
		StartTime:     "12:00",
		EndTime:       "16:00",
		GuestCount:    10,
		Purpose:       "Aniversário",
		PaymentMethod: "pix",
		Status:        "pending",
		TotalAmount:   decimal.RequireFromString("160"),
		PaymentStatus: "pending",
	}

	unknownArea := valid
	unknownArea.AreaID = "404"
	if err := repo.CreateReservation(ctx, unknownArea); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}

	reversed := valid
	reversed.StartTime, reversed.EndTime = "16:00", "12:00"
	if err := repo.CreateReservation(ctx, reversed); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	unknownExtra := valid
	unknownExtra.ExtraItemIDs = []string{"99"}
	if err := repo.CreateReservation(ctx, unknownExtra); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
	if _, err := repo.GetReservation(ctx, "res-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected failed insert to be rolled back, got %v", err)
	}
}
