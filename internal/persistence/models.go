package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents the login identity of a resident.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the resident attributes attached to a user.
type Profile struct {
	ID              string
	UserID          string
	FullName        string
	Email           string
	Phone           string
	Role            string
	ApartmentNumber string
	BuildingID      string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Account pairs a user with its profile. Both rows are written together.
type Account struct {
	User    User
	Profile Profile
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// Area represents a bookable common area. Opening hours are stored as HH:MM.
type Area struct {
	ID          string
	Name        string
	Description string
	Capacity    int
	HourlyRate  decimal.Decimal
	OpensAt     string
	ClosesAt    string
	Rules       []string
	Amenities   []string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExtraItem represents an add-on that may be attached to reservations.
type ExtraItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
}

// Reservation represents a booking of an area. Date is YYYY-MM-DD and times are HH:MM.
type Reservation struct {
	ID              string
	ProfileID       string
	AreaID          string
	Date            string
	StartTime       string
	EndTime         string
	GuestCount      int
	Purpose         string
	SpecialRequests string
	PaymentMethod   string
	ExtraItemIDs    []string
	Status          string
	TotalAmount     decimal.Decimal
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Populated on reads.
	AreaName     string
	ResidentName string
}
