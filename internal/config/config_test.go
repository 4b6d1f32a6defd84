package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/condo-portal/internal/access"
)

var allKeys = []string{
	"HTTP_PORT",
	"SQLITE_DSN",
	"SESSION_SECRET",
	"SESSION_TTL",
	"TIMEZONE",
	"SELF_SIGNUP_ROLES",
	"CALENDAR_CACHE_TTL",
	"MAINTENANCE_SCHEDULE",
	"LOG_LEVEL",
}

// clearEnv unsets every portal variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(EnvPrefix+key, "")
		if err := os.Unsetenv(EnvPrefix + key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func noDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		const secret = "super-secret"
		t.Setenv("CONDO_SESSION_SECRET", secret)

		cfg, err := Load(noDotenv(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 || cfg.Addr() != ":8080" {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:condo.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.SessionTTL != 24*time.Hour || cfg.CalendarCacheTTL != 30*time.Second {
			t.Fatalf("unexpected durations %s / %s", cfg.SessionTTL, cfg.CalendarCacheTTL)
		}
		if cfg.Location == nil || cfg.Location.String() != "America/Sao_Paulo" {
			t.Fatalf("unexpected location %v", cfg.Location)
		}
		if !cfg.SignupRoles.Contains(access.RoleTenant) || !cfg.SignupRoles.Contains(access.RoleOwner) || cfg.SignupRoles.Contains(access.RoleAdmin) {
			t.Fatalf("unexpected sign-up roles %s", cfg.SignupRoles)
		}
		if cfg.MaintenanceSchedule != "@every 15m" {
			t.Fatalf("unexpected schedule %q", cfg.MaintenanceSchedule)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("unexpected log level %s", cfg.LogLevel)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(noDotenv(t))
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: CONDO_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDO_SESSION_SECRET", "secret-value")
		t.Setenv("CONDO_HTTP_PORT", "9090")
		t.Setenv("CONDO_SQLITE_DSN", "file:/tmp/condo.db")
		t.Setenv("CONDO_SESSION_TTL", "2h")
		t.Setenv("CONDO_CALENDAR_CACHE_TTL", "0s")
		t.Setenv("CONDO_TIMEZONE", "UTC")
		t.Setenv("CONDO_SELF_SIGNUP_ROLES", "tenant")
		t.Setenv("CONDO_LOG_LEVEL", "debug")

		cfg, err := Load(noDotenv(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SessionTTL != 2*time.Hour {
			t.Fatalf("expected session TTL 2h, got %s", cfg.SessionTTL)
		}
		if cfg.CalendarCacheTTL != 0 {
			t.Fatalf("expected calendar cache to be disabled, got %s", cfg.CalendarCacheTTL)
		}
		if cfg.Location != time.UTC && cfg.Location.String() != "UTC" {
			t.Fatalf("expected UTC, got %s", cfg.Location)
		}
		if cfg.SignupRoles.Contains(access.RoleOwner) {
			t.Fatalf("expected owners to be excluded from sign-up")
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("expected debug level, got %s", cfg.LogLevel)
		}
	})

	t.Run("collects invalid values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDO_SESSION_SECRET", "secret-value")
		t.Setenv("CONDO_HTTP_PORT", "-1")
		t.Setenv("CONDO_TIMEZONE", "Mars/Olympus_Mons")
		t.Setenv("CONDO_SELF_SIGNUP_ROLES", "tenant,janitor")
		t.Setenv("CONDO_MAINTENANCE_SCHEDULE", "every now and then")

		_, err := Load(noDotenv(t))
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{"CONDO_HTTP_PORT", "CONDO_TIMEZONE", "CONDO_SELF_SIGNUP_ROLES", "CONDO_MAINTENANCE_SCHEDULE"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %q", key, err.Error())
			}
		}
	})

	t.Run("reports unparsable values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDO_SESSION_SECRET", "secret-value")
		t.Setenv("CONDO_SESSION_TTL", "a day")

		_, err := Load(noDotenv(t))
		if err == nil {
			t.Fatalf("expected parse error for malformed duration")
		}
		if !strings.Contains(err.Error(), "CONDO_SESSION_TTL") {
			t.Fatalf("expected error to name the variable, got %v", err)
		}
		if strings.Count(err.Error(), "CONDO_SESSION_TTL") != 1 {
			t.Fatalf("expected the variable to be listed once, got %v", err)
		}
	})

	t.Run("reports missing and unparsable values together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDO_SESSION_TTL", "abc")
		t.Setenv("CONDO_HTTP_PORT", "eighty")

		_, err := Load(noDotenv(t))
		if err == nil {
			t.Fatalf("expected error")
		}
		for _, key := range []string{"CONDO_SESSION_SECRET", "CONDO_SESSION_TTL", "CONDO_HTTP_PORT"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %v", key, err)
			}
		}
	})

	t.Run("reads dotenv files without overriding the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONDO_HTTP_PORT", "7070")
		t.Cleanup(func() {
			_ = os.Unsetenv("CONDO_SESSION_SECRET")
		})

		path := filepath.Join(t.TempDir(), ".env")
		content := "CONDO_SESSION_SECRET=from-file\nCONDO_HTTP_PORT=6060\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write dotenv file: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.SessionSecret != "from-file" {
			t.Fatalf("expected secret from dotenv file, got %q", cfg.SessionSecret)
		}
		if cfg.HTTPPort != 7070 {
			t.Fatalf("expected environment to win over dotenv, got %d", cfg.HTTPPort)
		}
	})
}
