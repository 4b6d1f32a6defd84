package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/booking"
)

// Principal represents the acting identity for service operations.
type Principal struct {
	UserID    string
	ProfileID string
	Role      access.Role
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...access.Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// IsManager reports whether the principal administers the building.
func (p Principal) IsManager() bool {
	return p.HasRole(access.RoleSyndic, access.RoleAdmin)
}

// UserCredentials bundles an account with its stored password hash.
type UserCredentials struct {
	User         access.User
	Profile      access.Profile
	PasswordHash string
}

// Disabled reports whether the account may not sign in.
func (c UserCredentials) Disabled() bool {
	return !c.Profile.IsActive
}

// NewAccount is what Register hands to the account store.
type NewAccount struct {
	User         access.User
	Profile      access.Profile
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an issued authentication session.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
}

// SessionIdentity is an active session with the account it belongs to.
type SessionIdentity struct {
	Session Session
	User    access.User
	Profile access.Profile
}

// Principal returns the acting identity of the session.
func (s SessionIdentity) Principal() Principal {
	return Principal{UserID: s.User.ID, ProfileID: s.Profile.ID, Role: s.Profile.Role}
}

// AuthenticateParams captures the inputs required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult is returned after a successful authentication.
type AuthenticateResult struct {
	User    access.User
	Profile access.Profile
	Session Session
}

// RegisterParams carries a self-service sign-up.
type RegisterParams struct {
	Email    string
	Password string
	Fields   access.ProfileFields
}

// RefreshSessionParams describes the session refresh request.
type RefreshSessionParams struct {
	Token       string
	Fingerprint string
}

// RefreshSessionResult wraps the refreshed session details.
type RefreshSessionResult struct {
	Session Session
}

// ChangeRoleParams describes an administrative role change.
type ChangeRoleParams struct {
	Principal Principal
	ProfileID string
	Role      access.Role
}

// SetActiveParams enables or disables a profile.
type SetActiveParams struct {
	Principal Principal
	ProfileID string
	Active    bool
}

// AreaInput contains the editable attributes of a common area.
type AreaInput struct {
	Name        string
	Description string
	Capacity    int
	HourlyRate  decimal.Decimal
	OpensAt     string
	ClosesAt    string
	Rules       []string
	Amenities   []string
	Status      booking.AreaStatus
}

// CreateAreaParams describes the data required to create an area.
type CreateAreaParams struct {
	Principal Principal
	Input     AreaInput
}

// UpdateAreaParams describes the data required to update an area.
type UpdateAreaParams struct {
	Principal Principal
	AreaID    string
	Input     AreaInput
}

// QuoteParams asks for the price of a prospective reservation.
type QuoteParams struct {
	AreaID       string
	StartTime    booking.Clock
	EndTime      booking.Clock
	ExtraItemIDs []string
}

// QuoteResult is the price breakdown shown while filling the form.
type QuoteResult struct {
	Area         booking.CommonArea
	Hours        int
	AreaAmount   decimal.Decimal
	ExtrasAmount decimal.Decimal
	Total        decimal.Decimal
}

// CreateReservationParams captures a reservation submitted by a resident.
type CreateReservationParams struct {
	Principal Principal
	Request   booking.Request
}

// ListReservationsParams filters the reservation list. Month is optional;
// zero values mean no filter.
type ListReservationsParams struct {
	Principal Principal
	Year      int
	Month     time.Month
	AreaID    string
	Status    booking.ReservationStatus
}

// CalendarParams selects the month rendered by Calendar.
type CalendarParams struct {
	Principal Principal
	Year      int
	Month     time.Month
	AreaID    string
}

// Calendar is the month projection of the availability index.
type Calendar struct {
	Year  int
	Month time.Month
	Area  string
	Today booking.Date
	Days  map[int][]booking.Slot
	Grid  []booking.CalendarDay
}

// UpdateStatusParams describes a reservation status transition.
type UpdateStatusParams struct {
	Principal     Principal
	ReservationID string
	Status        booking.ReservationStatus
}
