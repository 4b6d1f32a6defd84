package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/access"
	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/booking"
	"github.com/example/condo-portal/internal/persistence"
)

var (
	accountCounter     uint64
	sessionCounter     uint64
	areaCounter        uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate is the calendar date of ReferenceTime.
func ReferenceDate() booking.Date {
	return booking.DateOf(referenceTime)
}

// ----------------------------- Account fixtures -----------------------------

// AccountFixture is a deterministic user with its resident profile.
type AccountFixture struct {
	UserID          string
	ProfileID       string
	Email           string
	FullName        string
	Phone           string
	Role            access.Role
	ApartmentNumber string
	BuildingID      string
	PasswordHash    string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns an active tenant account with optional overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AccountFixture{
		UserID:          fmt.Sprintf("user-%03d", idx),
		ProfileID:       fmt.Sprintf("profile-%03d", idx),
		Email:           fmt.Sprintf("resident-%03d@example.com", idx),
		FullName:        fmt.Sprintf("Morador %03d", idx),
		Role:            access.RoleTenant,
		ApartmentNumber: fmt.Sprintf("%d", 100+idx),
		BuildingID:      "A",
		PasswordHash:    fmt.Sprintf("hash-%03d", idx),
		IsActive:        true,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccountIDs overrides the user and profile identifiers.
func WithAccountIDs(userID, profileID string) AccountOption {
	return func(f *AccountFixture) {
		f.UserID = userID
		f.ProfileID = profileID
	}
}

// WithAccountEmail overrides the email address.
func WithAccountEmail(email string) AccountOption {
	return func(f *AccountFixture) {
		f.Email = email
	}
}

// WithAccountName overrides the resident's full name.
func WithAccountName(name string) AccountOption {
	return func(f *AccountFixture) {
		f.FullName = name
	}
}

// WithAccountRole overrides the profile role.
func WithAccountRole(role access.Role) AccountOption {
	return func(f *AccountFixture) {
		f.Role = role
	}
}

// WithAccountPasswordHash overrides the stored password hash.
func WithAccountPasswordHash(hash string) AccountOption {
	return func(f *AccountFixture) {
		f.PasswordHash = hash
	}
}

// WithAccountInactive marks the profile as disabled.
func WithAccountInactive() AccountOption {
	return func(f *AccountFixture) {
		f.IsActive = false
	}
}

// User converts the fixture into the access-layer user.
func (f AccountFixture) User() access.User {
	return access.User{ID: f.UserID, Email: f.Email}
}

// Profile converts the fixture into the access-layer profile.
func (f AccountFixture) Profile() access.Profile {
	return access.Profile{
		ID:              f.ProfileID,
		UserID:          f.UserID,
		FullName:        f.FullName,
		Email:           f.Email,
		Phone:           f.Phone,
		Role:            f.Role,
		ApartmentNumber: f.ApartmentNumber,
		BuildingID:      f.BuildingID,
		IsActive:        f.IsActive,
	}
}

// Principal returns the acting identity for the account.
func (f AccountFixture) Principal() application.Principal {
	return application.Principal{UserID: f.UserID, ProfileID: f.ProfileID, Role: f.Role}
}

// Credentials converts the fixture into the application credential bundle.
func (f AccountFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{User: f.User(), Profile: f.Profile(), PasswordHash: f.PasswordHash}
}

// Persistence converts the fixture into the stored account rows.
func (f AccountFixture) Persistence() persistence.Account {
	return persistence.Account{
		User: persistence.User{
			ID:           f.UserID,
			Email:        f.Email,
			PasswordHash: f.PasswordHash,
			CreatedAt:    f.CreatedAt,
			UpdatedAt:    f.UpdatedAt,
		},
		Profile: persistence.Profile{
			ID:              f.ProfileID,
			UserID:          f.UserID,
			FullName:        f.FullName,
			Email:           f.Email,
			Phone:           f.Phone,
			Role:            string(f.Role),
			ApartmentNumber: f.ApartmentNumber,
			BuildingID:      f.BuildingID,
			IsActive:        f.IsActive,
			CreatedAt:       f.CreatedAt,
			UpdatedAt:       f.UpdatedAt,
		},
	}
}

// ----------------------------- Session fixtures -----------------------------

// SessionFixture is a deterministic authentication session.
type SessionFixture struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a session valid for a day after ReferenceTime.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
		ExpiresAt: referenceTime.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser binds the session to userID.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the opaque token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionFingerprint sets the client fingerprint.
func WithSessionFingerprint(fingerprint string) SessionOption {
	return func(f *SessionFixture) {
		f.Fingerprint = fingerprint
	}
}

// WithSessionExpiresAt overrides the expiry.
func WithSessionExpiresAt(expiresAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = expiresAt
	}
}

// WithSessionRevokedAt marks the session as revoked.
func WithSessionRevokedAt(revokedAt time.Time) SessionOption {
	return func(f *SessionFixture) {
		t := revokedAt
		f.RevokedAt = &t
	}
}

// Application converts the fixture into the application session model.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		ExpiresAt:   f.ExpiresAt,
		RevokedAt:   cloneTime(f.RevokedAt),
	}
}

// Persistence converts the fixture into the stored session row.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		ExpiresAt:   f.ExpiresAt,
		RevokedAt:   cloneTime(f.RevokedAt),
	}
}

// ----------------------------- Area fixtures -----------------------------

// AreaFixture is a deterministic common area.
type AreaFixture struct {
	Area      booking.CommonArea
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AreaOption configures the generated area fixture.
type AreaOption func(*AreaFixture)

// NewAreaFixture returns an active area open 08:00-22:00 at 50/h. Fixture
// identifiers never collide with the seeded catalog.
func NewAreaFixture(opts ...AreaOption) AreaFixture {
	idx := atomic.AddUint64(&areaCounter, 1)
	fixture := AreaFixture{
		Area: booking.CommonArea{
			ID:             fmt.Sprintf("area-%03d", idx),
			Name:           fmt.Sprintf("Espaço %03d", idx),
			Description:    "Área de uso comum",
			Capacity:       20,
			HourlyRate:     decimal.NewFromInt(50),
			AvailableHours: booking.Hours{Start: booking.NewTimeOfDay(8, 0), End: booking.NewTimeOfDay(22, 0)},
			Rules:          []string{"Limpeza obrigatória"},
			Amenities:      []string{"Mesas"},
			Status:         booking.AreaActive,
		},
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAreaID overrides the area identifier.
func WithAreaID(id string) AreaOption {
	return func(f *AreaFixture) {
		f.Area.ID = id
	}
}

// WithAreaHours overrides the opening hours.
func WithAreaHours(start, end booking.TimeOfDay) AreaOption {
	return func(f *AreaFixture) {
		f.Area.AvailableHours = booking.Hours{Start: start, End: end}
	}
}

// WithAreaRate overrides the hourly rate.
func WithAreaRate(rate string) AreaOption {
	return func(f *AreaFixture) {
		f.Area.HourlyRate = decimal.RequireFromString(rate)
	}
}

// WithAreaStatus overrides the area status.
func WithAreaStatus(status booking.AreaStatus) AreaOption {
	return func(f *AreaFixture) {
		f.Area.Status = status
	}
}

// Domain returns the booking model of the fixture.
func (f AreaFixture) Domain() booking.CommonArea {
	return f.Area
}

// Persistence converts the fixture into the stored area row.
func (f AreaFixture) Persistence() persistence.Area {
	return persistence.Area{
		ID:          f.Area.ID,
		Name:        f.Area.Name,
		Description: f.Area.Description,
		Capacity:    f.Area.Capacity,
		HourlyRate:  f.Area.HourlyRate,
		OpensAt:     f.Area.AvailableHours.Start.String(),
		ClosesAt:    f.Area.AvailableHours.End.String(),
		Rules:       append([]string(nil), f.Area.Rules...),
		Amenities:   append([]string(nil), f.Area.Amenities...),
		Status:      string(f.Area.Status),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ----------------------------- Reservation fixtures -----------------------------

// ReservationFixture is a deterministic pending reservation.
type ReservationFixture struct {
	Record booking.Record
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a pending 14:00-18:00 booking of the seeded
// party room two days after ReferenceDate.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	fixture := ReservationFixture{
		Record: booking.Record{
			ID:            fmt.Sprintf("reservation-%03d", idx),
			ResidentID:    "profile-001",
			AreaID:        "1",
			Date:          ReferenceDate().AddDays(2),
			StartTime:     booking.NewTimeOfDay(14, 0),
			EndTime:       booking.NewTimeOfDay(18, 0),
			GuestCount:    10,
			Purpose:       "Aniversário",
			PaymentMethod: booking.PaymentPix,
			Status:        booking.StatusPending,
			TotalAmount:   decimal.NewFromInt(320),
			PaymentStatus: booking.PaymentPending,
			CreatedAt:     referenceTime,
			UpdatedAt:     referenceTime,
		},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the reservation identifier.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Record.ID = id
	}
}

// WithReservationResident books on behalf of profileID.
func WithReservationResident(profileID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Record.ResidentID = profileID
	}
}

// WithReservationArea overrides the booked area.
func WithReservationArea(areaID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Record.AreaID = areaID
	}
}

// WithReservationSlot overrides the date and interval.
func WithReservationSlot(date booking.Date, start, end booking.TimeOfDay) ReservationOption {
	return func(f *ReservationFixture) {
		f.Record.Date = date
		f.Record.StartTime = start
		f.Record.EndTime = end
	}
}

// WithReservationStatus overrides the reservation status.
func WithReservationStatus(status booking.ReservationStatus) ReservationOption {
	return func(f *ReservationFixture) {
		f.Record.Status = status
	}
}

// WithReservationExtras attaches extra item identifiers.
func WithReservationExtras(ids ...string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Record.ExtraItemIDs = append([]string(nil), ids...)
	}
}

// Domain returns the booking record of the fixture.
func (f ReservationFixture) Domain() booking.Record {
	return f.Record
}

// Persistence converts the fixture into the stored reservation row.
func (f ReservationFixture) Persistence() persistence.Reservation {
	r := f.Record
	return persistence.Reservation{
		ID:              r.ID,
		ProfileID:       r.ResidentID,
		AreaID:          r.AreaID,
		Date:            r.Date.String(),
		StartTime:       r.StartTime.String(),
		EndTime:         r.EndTime.String(),
		GuestCount:      r.GuestCount,
		Purpose:         r.Purpose,
		SpecialRequests: r.SpecialRequests,
		PaymentMethod:   string(r.PaymentMethod),
		ExtraItemIDs:    append([]string(nil), r.ExtraItemIDs...),
		Status:          string(r.Status),
		TotalAmount:     r.TotalAmount,
		PaymentStatus:   string(r.PaymentStatus),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
