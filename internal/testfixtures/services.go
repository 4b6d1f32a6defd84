package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
)

// ServiceFactory builds application services with deterministic identifiers
// and a controllable clock.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Location    *time.Location
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Location:    time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLocation sets the building time zone for reservation services.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// AuthServiceDeps captures dependencies for constructing an auth service.
// Nil password functions select the argon2id defaults.
type AuthServiceDeps struct {
	Accounts       application.AccountStore
	Sessions       application.SessionRepository
	PasswordHasher application.PasswordHasher
	PasswordVerify application.PasswordVerifier
	SessionTTL     time.Duration
	SignupRoles    access.RoleSet
}

// NewAuthService builds an auth service. SessionTTL defaults to a day and
// SignupRoles to tenants and owners.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	settings := application.AuthSettings{SessionTTL: deps.SessionTTL, SignupRoles: deps.SignupRoles}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = 24 * time.Hour
	}
	if settings.SignupRoles.Empty() {
		settings.SignupRoles = access.Roles(access.RoleTenant, access.RoleOwner)
	}
	return application.NewAuthServiceWithLogger(
		deps.Accounts,
		deps.Sessions,
		deps.PasswordHasher,
		deps.PasswordVerify,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		settings,
		f.Logger,
	)
}

// NewProfileService builds a profile service.
func (f *ServiceFactory) NewProfileService(profiles application.ProfileRepository, sessions application.SessionRepository) *application.ProfileService {
	return application.NewProfileServiceWithLogger(profiles, sessions, f.Clock.NowFunc(), f.Logger)
}

// NewAreaService builds an area service.
func (f *ServiceFactory) NewAreaService(areas application.AreaRepository) *application.AreaService {
	return application.NewAreaServiceWithLogger(areas, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewReservationService builds a reservation service. A zero calendarTTL
// selects the default cache lifetime.
func (f *ServiceFactory) NewReservationService(reservations application.ReservationRepository, areas application.AreaRepository, calendarTTL time.Duration) *application.ReservationService {
	return application.NewReservationServiceWithLogger(
		reservations,
		areas,
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		application.ReservationSettings{Location: f.Location, CalendarTTL: calendarTTL},
		f.Logger,
	)
}
