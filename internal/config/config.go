package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/condo-portal/internal/access"
)

// EnvPrefix is prepended to every variable name read by Load.
const EnvPrefix = "CONDO_"

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort            int           `env:"HTTP_PORT" envDefault:"8080"`
	SQLiteDSN           string        `env:"SQLITE_DSN" envDefault:"file:condo.db"`
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Timezone            string        `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
	SelfSignupRoles     string        `env:"SELF_SIGNUP_ROLES" envDefault:"tenant,owner"`
	CalendarCacheTTL    time.Duration `env:"CALENDAR_CACHE_TTL" envDefault:"30s"`
	MaintenanceSchedule string        `env:"MAINTENANCE_SCHEDULE" envDefault:"@every 15m"`
	LogLevel            slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`

	// Location and SignupRoles are derived from Timezone and SelfSignupRoles.
	Location    *time.Location `env:"-"`
	SignupRoles access.RoleSet `env:"-"`
}

// Load parses configuration values from the process environment.
//
// Variables found in the given dotenv files (".env" when none are given) are
// applied first without overriding ones already set; missing files are
// ignored. Defaults are applied for optional fields while required and
// malformed values are collected and reported together.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		malformed, ok := malformedVariables(err)
		if !ok {
			return Config{}, fmt.Errorf("config: parse env: %w", err)
		}
		invalid = append(invalid, malformed...)
	}

	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	if cfg.SessionSecret == "" {
		missing = append(missing, EnvPrefix+"SESSION_SECRET")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, EnvPrefix+"HTTP_PORT")
	}
	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	if cfg.SQLiteDSN == "" {
		invalid = append(invalid, EnvPrefix+"SQLITE_DSN")
	}
	if cfg.SessionTTL <= 0 {
		invalid = append(invalid, EnvPrefix+"SESSION_TTL")
	}
	if cfg.CalendarCacheTTL < 0 {
		invalid = append(invalid, EnvPrefix+"CALENDAR_CACHE_TTL")
	}

	location, err := time.LoadLocation(strings.TrimSpace(cfg.Timezone))
	if err != nil {
		invalid = append(invalid, EnvPrefix+"TIMEZONE")
	} else {
		cfg.Location = location
	}

	roles, err := access.ParseRoles(cfg.SelfSignupRoles)
	if err != nil || roles.Empty() {
		invalid = append(invalid, EnvPrefix+"SELF_SIGNUP_ROLES")
	} else {
		cfg.SignupRoles = roles
	}

	if _, err := cron.ParseStandard(cfg.MaintenanceSchedule); err != nil {
		invalid = append(invalid, EnvPrefix+"MAINTENANCE_SCHEDULE")
	}

	invalid = uniqueNames(invalid)
	switch {
	case len(missing) > 0 && len(invalid) > 0:
		return Config{}, fmt.Errorf("missing required environment variables: %s; invalid environment variable values: %s",
			strings.Join(missing, ", "), strings.Join(invalid, ", "))
	case len(missing) > 0:
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	case len(invalid) > 0:
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// malformedVariables names the variables env could not convert to their
// field type. It reports false when err holds anything other than parse
// failures.
func malformedVariables(err error) ([]string, bool) {
	var aggregate env.AggregateError
	if !errors.As(err, &aggregate) {
		return nil, false
	}
	configType := reflect.TypeOf(Config{})
	names := make([]string, 0, len(aggregate.Errors))
	for _, item := range aggregate.Errors {
		var parseErr env.ParseError
		if !errors.As(item, &parseErr) {
			return nil, false
		}
		field, ok := configType.FieldByName(parseErr.Name)
		if !ok {
			return nil, false
		}
		names = append(names, EnvPrefix+field.Tag.Get("env"))
	}
	return names, true
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
