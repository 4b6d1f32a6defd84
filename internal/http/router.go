package http

import (
	"log/slog"
	"net/http"

	"github.com/example/condo-portal/internal/access"
)

type RouterConfig struct {
	Auth         *AuthHandler
	Navigation   *NavigationHandler
	Areas        *AreaHandler
	Reservations *ReservationHandler
	Profiles     *ProfileHandler
	Logger       *slog.Logger
	Middleware   []func(http.Handler) http.Handler
}

var (
	signedIn = access.RoleSet{}
	managers = access.Roles(access.RoleSyndic, access.RoleAdmin)
	admins   = access.Roles(access.RoleAdmin)
)

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guarded := func(allowed access.RoleSet, handler http.HandlerFunc) http.Handler {
		return Protect(allowed, cfg.Logger)(handler)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /auth/sign-in", cfg.Auth.SignIn)
		mux.HandleFunc("POST /auth/sign-up", cfg.Auth.SignUp)
		mux.HandleFunc("POST /auth/sign-out", cfg.Auth.SignOut)
		mux.HandleFunc("GET /auth/session", cfg.Auth.Session)
		mux.Handle("POST /auth/refresh", guarded(signedIn, cfg.Auth.Refresh))
	}

	if cfg.Navigation != nil {
		mux.Handle("GET /navigation", guarded(signedIn, cfg.Navigation.List))
	}

	if cfg.Areas != nil {
		mux.Handle("GET /areas", guarded(signedIn, cfg.Areas.List))
		mux.Handle("POST /areas", guarded(managers, cfg.Areas.Create))
		mux.Handle("GET /areas/{id}", guarded(signedIn, cfg.Areas.Get))
		mux.Handle("PUT /areas/{id}", guarded(managers, cfg.Areas.Update))
		mux.Handle("POST /areas/{id}/quote", guarded(signedIn, cfg.Areas.Quote))
		mux.Handle("GET /extras", guarded(signedIn, cfg.Areas.ListExtras))
	}

	if cfg.Reservations != nil {
		mux.Handle("GET /reservations", guarded(signedIn, cfg.Reservations.List))
		mux.Handle("POST /reservations", guarded(signedIn, cfg.Reservations.Create))
		mux.Handle("GET /reservations/calendar", guarded(signedIn, cfg.Reservations.Calendar))
		mux.Handle("POST /reservations/{id}/status", guarded(managers, cfg.Reservations.UpdateStatus))
		mux.Handle("POST /reservations/{id}/cancel", guarded(signedIn, cfg.Reservations.Cancel))
	}

	if cfg.Profiles != nil {
		mux.Handle("GET /profiles", guarded(managers, cfg.Profiles.List))
		mux.Handle("GET /profiles/{id}", guarded(signedIn, cfg.Profiles.Get))
		mux.Handle("PUT /profiles/{id}/role", guarded(admins, cfg.Profiles.ChangeRole))
		mux.Handle("PUT /profiles/{id}/active", guarded(admins, cfg.Profiles.SetActive))
	}

	var handler http.Handler = Localize(mux)
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}
