package persistence

import (
	"context"
	"time"
)

// AccountRepository stores users together with their profiles.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	RevokeUserSessions(ctx context.Context, userID string, revokedAt time.Time) (int, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error)
}

// AreaRepository stores common areas and the extra item catalog.
type AreaRepository interface {
	CreateArea(ctx context.Context, area Area) error
	UpdateArea(ctx context.Context, area Area) error
	GetArea(ctx context.Context, id string) (Area, error)
	ListAreas(ctx context.Context) ([]Area, error)
	ListExtraItems(ctx context.Context) ([]ExtraItem, error)
}

// ReservationFilter narrows reservation queries. Empty fields do not filter.
type ReservationFilter struct {
	ProfileID string
	AreaID    string
	Status    string
	// FromDate and ToDate are inclusive YYYY-MM-DD bounds.
	FromDate string
	ToDate   string
}

// ReservationRepository stores reservations and their extra items.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	UpdateReservationStatus(ctx context.Context, id, status string, updatedAt time.Time) error
}
