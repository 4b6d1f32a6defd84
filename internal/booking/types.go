package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// AreaStatus controls whether a common area accepts new reservations.
type AreaStatus string

const (
	AreaActive      AreaStatus = "active"
	AreaMaintenance AreaStatus = "maintenance"
	AreaInactive    AreaStatus = "inactive"
)

func (s AreaStatus) Valid() bool {
	switch s {
	case AreaActive, AreaMaintenance, AreaInactive:
		return true
	}
	return false
}

func (s AreaStatus) Label() string {
	switch s {
	case AreaActive:
		return "Ativa"
	case AreaMaintenance:
		return "Em manutenção"
	case AreaInactive:
		return "Inativa"
	}
	return ""
}

// CommonArea is a bookable shared space of the building.
type CommonArea struct {
	ID             string
	Name           string
	Description    string
	Capacity       int
	HourlyRate     decimal.Decimal
	AvailableHours Hours
	Rules          []string
	Amenities      []string
	Status         AreaStatus
}

// ExtraItem is an optional add-on charged once per reservation.
type ExtraItem struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
}

type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "pix"
	PaymentBoleto     PaymentMethod = "boleto"
	PaymentCreditCard PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentBoleto, PaymentCreditCard:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentPix:
		return "PIX"
	case PaymentBoleto:
		return "Boleto"
	case PaymentCreditCard:
		return "Cartão de crédito"
	}
	return ""
}

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s ReservationStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusConfirmed:
		return "Confirmada"
	case StatusCancelled:
		return "Cancelada"
	case StatusCompleted:
		return "Concluída"
	}
	return ""
}

// CanTransition reports whether a reservation may move from s to next.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCancelled, StatusCompleted:
		return false
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPending:
		return "Pendente"
	case PaymentPaid:
		return "Pago"
	case PaymentFailed:
		return "Falhou"
	case PaymentRefunded:
		return "Reembolsado"
	}
	return ""
}

// Request is a reservation as submitted, before validation.
type Request struct {
	AreaID          string
	Date            *Date
	StartTime       Clock
	EndTime         Clock
	GuestCount      int
	Purpose         string
	SpecialRequests string
	AcceptsTerms    bool
	PaymentMethod   PaymentMethod
	ExtraItemIDs    []string
	// Malformed names the fields whose submitted value could not be parsed.
	// Validate reports them as invalid instead of missing.
	Malformed []string
}

func (r Request) malformed(field string) bool {
	for _, f := range r.Malformed {
		if f == field {
			return true
		}
	}
	return false
}

// Record is a persisted reservation.
type Record struct {
	ID              string
	ResidentID      string
	ResidentName    string
	AreaID          string
	AreaName        string
	Date            Date
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	GuestCount      int
	Purpose         string
	SpecialRequests string
	PaymentMethod   PaymentMethod
	ExtraItemIDs    []string
	Status          ReservationStatus
	TotalAmount     decimal.Decimal
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validated is the outcome of a successful Validate call.
type Validated struct {
	Request      Request
	Area         CommonArea
	Extras       []ExtraItem
	Hours        int
	AreaAmount   decimal.Decimal
	ExtrasAmount decimal.Decimal
	TotalAmount  decimal.Decimal
}

// Record materialises the validated request as a new record. Identity,
// resident and timestamps are left to the caller.
func (v Validated) Record() Record {
	ids := make([]string, len(v.Extras))
	for i, extra := range v.Extras {
		ids[i] = extra.ID
	}
	var date Date
	if v.Request.Date != nil {
		date = *v.Request.Date
	}
	return Record{
		AreaID:          v.Area.ID,
		AreaName:        v.Area.Name,
		Date:            date,
		StartTime:       v.Request.StartTime.Time,
		EndTime:         v.Request.EndTime.Time,
		GuestCount:      v.Request.GuestCount,
		Purpose:         v.Request.Purpose,
		SpecialRequests: v.Request.SpecialRequests,
		PaymentMethod:   v.Request.PaymentMethod,
		ExtraItemIDs:    ids,
		Status:          StatusPending,
		TotalAmount:     v.TotalAmount,
		PaymentStatus:   PaymentPending,
	}
}
