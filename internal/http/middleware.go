package http

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/example/condo-portal/internal/access"
)

// RequireSession resolves the bearer or cookie token into a per-request
// access.AuthContext. It never rejects a request; Protect enforces access.
//
// When the identity provider fails for a reason other than a rejected token,
// the request carries an unresolved context so guarded routes answer with a
// retryable 503 instead of treating the caller as signed out.
func RequireSession(provider access.IdentityProvider, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			auth := access.NewAuthContext(provider)
			if err := auth.Restore(ctx, extractTokenFromRequest(r)); err != nil {
				handlerLogger(ctx, base, "RequireSession", "Restore", "error_kind", access.KindOf(err).String()).
					WarnContext(ctx, "session could not be resolved", "error", err)
				auth = access.NewAuthContext(provider)
			}
			next.ServeHTTP(w, r.WithContext(access.WithContext(ctx, auth)))
		})
	}
}

// Protect applies access.Guard to the wrapped handler. An empty role set only
// requires a signed-in caller.
func Protect(allowed access.RoleSet, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)
	responder := newResponder(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			decision := access.Guard(authState(r), allowed)
			switch decision {
			case access.DecisionAllow:
				next.ServeHTTP(w, r)
				return
			case access.DecisionLoading:
				w.Header().Set("Retry-After", "1")
				responder.writeError(ctx, w, http.StatusServiceUnavailable, "SESSION_LOADING", msgSessionLoading, nil)
			case access.DecisionRedirectToAuth:
				w.Header().Set("Location", "/auth")
				responder.writeError(ctx, w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
			default:
				responder.writeError(ctx, w, http.StatusForbidden, "AUTH_FORBIDDEN", msgForbidden, nil)
			}
			handlerLogger(ctx, base, "Protect", "Guard", "decision", decision.String(), "allowed_roles", allowed.String()).
				InfoContext(ctx, "request denied")
		})
	}
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
