package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/condo-portal/internal/booking"
)

// ReservationFilter narrows reservation queries. Empty fields match everything.
type ReservationFilter struct {
	ResidentID string
	AreaID     string
	Status     booking.ReservationStatus
	From       *booking.Date
	To         *booking.Date
}

// ReservationRepository exposes persistence operations for reservations.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, record booking.Record) error
	GetReservation(ctx context.Context, id string) (booking.Record, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]booking.Record, error)
	UpdateReservationStatus(ctx context.Context, id string, status booking.ReservationStatus, updatedAt time.Time) error
}

// ReservationSettings tunes date handling and calendar caching.
type ReservationSettings struct {
	// Location is the building time zone used to decide what "today" is.
	Location    *time.Location
	CalendarTTL time.Duration
}

// ReservationService validates, stores and projects common area bookings.
type ReservationService struct {
	reservations ReservationRepository
	areas        AreaRepository
	idGenerator  func() string
	now          func() time.Time
	location     *time.Location
	logger       *slog.Logger

	// writeMu serialises the conflict check with the insert that follows it.
	writeMu  sync.Mutex
	calendar *calendarCache
}

// NewReservationService creates a new ReservationService instance.
func NewReservationService(reservations ReservationRepository, areas AreaRepository, idGenerator func() string, now func() time.Time, settings ReservationSettings) *ReservationService {
	return NewReservationServiceWithLogger(reservations, areas, idGenerator, now, settings, nil)
}

// NewReservationServiceWithLogger creates a new ReservationService with a specified logger.
func NewReservationServiceWithLogger(reservations ReservationRepository, areas AreaRepository, idGenerator func() string, now func() time.Time, settings ReservationSettings, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &ReservationService{
		reservations: reservations,
		areas:        areas,
		idGenerator:  idGenerator,
		now:          now,
		location:     settings.Location,
		logger:       defaultLogger(logger),
		calendar:     newCalendarCache(settings.CalendarTTL, 0, now),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Today returns the current date in the building time zone.
func (s *ReservationService) Today() booking.Date {
	return booking.Today(s.now(), s.location)
}

// CreateReservation validates the request against the current catalog,
// rejects double bookings and stores a pending reservation.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (record booking.Record, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil || s.areas == nil {
		err = fmt.Errorf("reservation service dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"principal_id", params.Principal.UserID,
		"area_id", strings.TrimSpace(params.Request.AreaID),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"reservation_id", record.ID,
			"date", record.Date.String(),
			"total_amount", record.TotalAmount.StringFixed(2),
		).InfoContext(ctx, "reservation created")
	}()

	if params.Principal.ProfileID == "" {
		err = ErrUnauthorized
		return
	}

	var catalog booking.Catalog
	catalog, err = s.loadCatalog(ctx)
	if err != nil {
		return
	}

	validated, fieldErrs := booking.Validate(params.Request, catalog, s.Today())
	if fieldErrs.Len() > 0 {
		err = fromBookingErrors(fieldErrs)
		return
	}

	now := s.now()
	candidate := validated.Record()
	candidate.ID = s.idGenerator()
	candidate.ResidentID = params.Principal.ProfileID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	date := candidate.Date
	var sameDay []booking.Record
	sameDay, err = s.reservations.ListReservations(ctx, ReservationFilter{
		AreaID: candidate.AreaID,
		From:   &date,
		To:     &date,
	})
	if err != nil {
		err = mapRepoError(err, booking.FieldDate, "Data inválida")
		return
	}
	if conflicts := booking.Conflicts(sameDay, candidate); len(conflicts) > 0 {
		vErr := &ValidationError{}
		vErr.Fields = append(vErr.Fields, FieldError{
			Field:   booking.FieldStartTime,
			Code:    string(booking.CodeSlotTaken),
			Message: booking.DefaultMessage(booking.CodeSlotTaken, ""),
		})
		logger.InfoContext(ctx, "reservation conflicts with existing booking", "conflicting_id", conflicts[0].ID)
		err = vErr
		return
	}

	if err = s.reservations.CreateReservation(ctx, candidate); err != nil {
		err = mapRepoError(err, booking.FieldAreaID, "Reserva inválida")
		return
	}
	s.calendar.Invalidate()

	record = candidate
	return
}

// ListReservations returns reservations visible to the principal. Tenants
// and owners only see their own.
func (s *ReservationService) ListReservations(ctx context.Context, params ListReservationsParams) (records []booking.Record, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListReservations",
		"principal_id", params.Principal.UserID,
		"role", params.Principal.Role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservations listed", "count", len(records))
	}()

	if params.Principal.ProfileID == "" {
		err = ErrUnauthorized
		return
	}

	filter := ReservationFilter{AreaID: normalizeAreaFilter(params.AreaID), Status: params.Status}
	if !params.Principal.IsManager() {
		filter.ResidentID = params.Principal.ProfileID
	}

	vErr := &ValidationError{}
	if filter.Status != "" && !filter.Status.Valid() {
		vErr.add("status", "invalid", "Status inválido")
	}
	if params.Year != 0 || params.Month != 0 {
		if !validMonth(params.Year, params.Month) {
			vErr.add("month", "invalid", "Mês inválido")
		} else {
			from := booking.NewDate(params.Year, params.Month, 1)
			to := booking.NewDate(params.Year, params.Month+1, 0)
			filter.From, filter.To = &from, &to
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	records, err = s.reservations.ListReservations(ctx, filter)
	if err != nil {
		err = mapRepoError(err, "reservation", "Reserva inválida")
	}
	return
}

// Calendar projects a month of active reservations for every resident.
// Cancelled reservations free their slot and are left out.
func (s *ReservationService) Calendar(ctx context.Context, params CalendarParams) (calendar Calendar, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	area := normalizeAreaFilter(params.AreaID)
	logger := s.loggerWith(ctx, "Calendar",
		"principal_id", params.Principal.UserID,
		"year", params.Year,
		"month", int(params.Month),
		"area", area,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build calendar", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !validMonth(params.Year, params.Month) {
		vErr := &ValidationError{}
		vErr.add("month", "invalid", "Mês inválido")
		err = vErr
		return
	}

	today := s.Today()
	key := calendarCacheKey(params.Year, params.Month, area, today)
	if cached, ok := s.calendar.Get(key); ok {
		logger.DebugContext(ctx, "calendar served from cache")
		calendar = cached
		return
	}

	generation := s.calendar.Generation()
	first := booking.NewDate(params.Year, params.Month, 1)
	from := first.AddDays(-int(first.Weekday()))
	to := from.AddDays(41)

	var records []booking.Record
	records, err = s.reservations.ListReservations(ctx, ReservationFilter{AreaID: area, From: &from, To: &to})
	if err != nil {
		err = mapRepoError(err, "reservation", "Reserva inválida")
		return
	}
	active := records[:0]
	for _, record := range records {
		if record.Status != booking.StatusCancelled {
			active = append(active, record)
		}
	}

	index := booking.NewIndex(active)
	calendar = Calendar{
		Year:  params.Year,
		Month: params.Month,
		Area:  area,
		Today: today,
		Days:  index.ForMonth(params.Year, params.Month, area),
		Grid:  index.MonthGrid(params.Year, params.Month, area, today),
	}
	if !s.calendar.Store(key, generation, calendar) {
		logger.DebugContext(ctx, "calendar not cached, reservations changed while it was built")
	}
	return
}

// UpdateStatus moves a reservation through its lifecycle. Syndics and
// administrators only.
func (s *ReservationService) UpdateStatus(ctx context.Context, params UpdateStatusParams) (record booking.Record, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateStatus",
		"principal_id", params.Principal.UserID,
		"reservation_id", params.ReservationID,
		"status", params.Status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation status updated")
	}()

	if !params.Principal.IsManager() {
		err = ErrUnauthorized
		return
	}
	if !params.Status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", "invalid", "Status inválido")
		err = vErr
		return
	}

	record, err = s.transition(ctx, params.ReservationID, params.Status, nil)
	return
}

// CancelReservation cancels a pending or confirmed reservation on behalf of
// its resident. Managers may cancel any reservation.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal, id string) (record booking.Record, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CancelReservation",
		"principal_id", principal.UserID,
		"reservation_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	if principal.ProfileID == "" {
		err = ErrUnauthorized
		return
	}

	record, err = s.transition(ctx, id, booking.StatusCancelled, func(current booking.Record) error {
		if principal.IsManager() || current.ResidentID == principal.ProfileID {
			return nil
		}
		return ErrUnauthorized
	})
	return
}

// CompletePastReservations marks confirmed reservations dated before today
// as completed and reports how many changed.
func (s *ReservationService) CompletePastReservations(ctx context.Context) (completed int, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CompletePastReservations")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete past reservations", "error", err, "error_kind", ErrorKind(err), "completed", completed)
			return
		}
		logger.InfoContext(ctx, "past reservations completed", "completed", completed)
	}()

	yesterday := s.Today().AddDays(-1)
	var due []booking.Record
	due, err = s.reservations.ListReservations(ctx, ReservationFilter{Status: booking.StatusConfirmed, To: &yesterday})
	if err != nil {
		err = mapRepoError(err, "reservation", "Reserva inválida")
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for _, record := range due {
		if err = s.reservations.UpdateReservationStatus(ctx, record.ID, booking.StatusCompleted, s.now()); err != nil {
			err = fmt.Errorf("complete reservation %s: %w", record.ID, err)
			break
		}
		completed++
	}
	if completed > 0 {
		s.calendar.Invalidate()
	}
	return
}

func (s *ReservationService) transition(ctx context.Context, id string, next booking.ReservationStatus, authorize func(booking.Record) error) (booking.Record, error) {
	if s.reservations == nil {
		return booking.Record{}, fmt.Errorf("reservation repository not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return booking.Record{}, ErrNotFound
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return booking.Record{}, mapRepoError(err, "reservation", "Reserva inválida")
	}
	if authorize != nil {
		if err := authorize(current); err != nil {
			return booking.Record{}, err
		}
	}
	if !current.Status.CanTransition(next) {
		return booking.Record{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	now := s.now()
	if err := s.reservations.UpdateReservationStatus(ctx, id, next, now); err != nil {
		return booking.Record{}, mapRepoError(err, "status", "Status inválido")
	}
	s.calendar.Invalidate()

	current.Status = next
	current.UpdatedAt = now
	return current, nil
}

func (s *ReservationService) loadCatalog(ctx context.Context) (booking.Catalog, error) {
	areas, err := s.areas.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load areas: %w", mapRepoError(err, booking.FieldAreaID, "Área inválida"))
	}
	extras, err := s.areas.ListExtraItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load extra items: %w", mapRepoError(err, booking.FieldExtraItems, "Item extra inválido"))
	}
	return booking.NewCatalog(areas, extras), nil
}

func normalizeAreaFilter(area string) string {
	area = strings.TrimSpace(area)
	if strings.EqualFold(area, booking.AllAreas) {
		return ""
	}
	return area
}

func validMonth(year int, month time.Month) bool {
	return year >= 1 && year <= 9999 && month >= time.January && month <= time.December
}
