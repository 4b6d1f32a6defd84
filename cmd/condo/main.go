package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/config"
	httptransport "github.com/example/condo-portal/internal/http"
	"github.com/example/condo-portal/internal/logging"
	"github.com/example/condo-portal/internal/maintenance"
	"github.com/example/condo-portal/internal/persistence/sqlite"
)

const (
	jobPruneSessions        = "prune-expired-sessions"
	jobCompleteReservations = "complete-past-reservations"
)

func main() {
	logger := logging.New(slog.LevelInfo, os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("condo portal stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	p, err := newPortal(ctx, cfg, logger, time.Now)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           p.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	p.scheduler.Start()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
		if err := p.scheduler.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop maintenance scheduler", "error", err)
		}
	}()

	logger.Info("condo portal listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// portal is the wired application: storage, HTTP handler and background jobs.
type portal struct {
	db           *sqlite.DB
	handler      http.Handler
	scheduler    *maintenance.Scheduler
	auth         *application.AuthService
	reservations *application.ReservationService
}

func newPortal(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time) (*portal, error) {
	db, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := db.Migrate(ctx, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	idGenerator := uuid.NewString
	tokens := newSessionTokens(cfg.SessionSecret)

	accounts := newAccountStoreAdapter(sqlite.NewAccountRepository(db))
	sessions := newSessionRepositoryAdapter(sqlite.NewSessionRepository(db))
	areas := newAreaRepositoryAdapter(sqlite.NewAreaRepository(db))
	reservations := newReservationRepositoryAdapter(sqlite.NewReservationRepository(db))

	authService := application.NewAuthServiceWithLogger(accounts, sessions, nil, nil, idGenerator, now, application.AuthSettings{
		SessionTTL:     cfg.SessionTTL,
		SignupRoles:    cfg.SignupRoles,
		TokenGenerator: tokens.Issue,
	}, logger)
	profileService := application.NewProfileServiceWithLogger(accounts, sessions, now, logger)
	areaService := application.NewAreaServiceWithLogger(areas, idGenerator, now, logger)
	reservationService := application.NewReservationServiceWithLogger(reservations, areas, idGenerator, now, application.ReservationSettings{
		Location:    cfg.Location,
		CalendarTTL: cfg.CalendarCacheTTL,
	}, logger)

	provider := newIdentityProvider(authService, tokens)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Navigation:   httptransport.NewNavigationHandler(logger),
		Areas:        httptransport.NewAreaHandler(areaService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Profiles:     httptransport.NewProfileHandler(profileService, logger),
		Logger:       logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireSession(provider, logger),
		},
	})

	scheduler := maintenance.New(logger, maintenance.WithLocation(cfg.Location))
	jobs := []struct {
		name string
		job  maintenance.Job
	}{
		{jobPruneSessions, func(ctx context.Context) error {
			_, err := authService.PruneExpiredSessions(ctx)
			return err
		}},
		{jobCompleteReservations, func(ctx context.Context) error {
			_, err := reservationService.CompletePastReservations(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		if err := scheduler.Register(cfg.MaintenanceSchedule, j.name, j.job); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &portal{
		db:           db,
		handler:      router,
		scheduler:    scheduler,
		auth:         authService,
		reservations: reservationService,
	}, nil
}

// Close releases the database connection pool.
func (p *portal) Close() error {
	if p == nil {
		return nil
	}
	return p.db.Close()
}
