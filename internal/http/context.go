package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/logging"
)

type contextKey string

const localeContextKey contextKey = "locale"

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

func contextWithLocale(ctx context.Context, loc locale) context.Context {
	return context.WithValue(ctx, localeContextKey, loc)
}

func localeFromContext(ctx context.Context) locale {
	if ctx == nil {
		return localePortuguese
	}
	loc, ok := ctx.Value(localeContextKey).(locale)
	if !ok {
		return localePortuguese
	}
	return loc
}

// authState returns the session snapshot attached by RequireSession. Requests
// that never went through the middleware are treated as signed out.
func authState(r *http.Request) access.State {
	auth, ok := access.FromContext(r.Context())
	if !ok {
		return access.State{}
	}
	return auth.Current()
}

// principalFromRequest derives the acting principal from the resolved session.
func principalFromRequest(r *http.Request) (application.Principal, bool) {
	state := authState(r)
	if !state.Authenticated() || state.Profile == nil {
		return application.Principal{}, false
	}
	return application.Principal{
		UserID:    state.User.ID,
		ProfileID: state.Profile.ID,
		Role:      state.Profile.Role,
	}, true
}
