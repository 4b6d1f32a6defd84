package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/booking"
)

type reservationService interface {
	Today() booking.Date
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (booking.Record, error)
	ListReservations(ctx context.Context, params application.ListReservationsParams) ([]booking.Record, error)
	Calendar(ctx context.Context, params application.CalendarParams) (application.Calendar, error)
	UpdateStatus(ctx context.Context, params application.UpdateStatusParams) (booking.Record, error)
	CancelReservation(ctx context.Context, principal application.Principal, id string) (booking.Record, error)
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	query := r.URL.Query()
	params := application.ListReservationsParams{
		Principal: principal,
		AreaID:    strings.TrimSpace(query.Get("area")),
		Status:    booking.ReservationStatus(strings.TrimSpace(query.Get("status"))),
	}
	if raw := strings.TrimSpace(query.Get("month")); raw != "" {
		year, month, ok := parseMonth(raw)
		if !ok {
			h.responder.writeValidation(r.Context(), w, fieldInvalid("month", "Mês inválido"))
			return
		}
		params.Year, params.Month = year, month
	}

	records, err := h.service.ListReservations(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "List", "actor_id", principal.UserID).ErrorContext(r.Context(), "failed to list reservations", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]reservationDTO, 0, len(records))
	for _, record := range records {
		resp = append(resp, toReservationDTO(record))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	request := req.toRequest()
	logger := h.log(r.Context(), "Create", "actor_id", principal.UserID, "area_id", request.AreaID)
	record, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{Principal: principal, Request: request})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", record.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toReservationDTO(record))
}

// Calendar renders the occupancy of a month. Without a month parameter the
// current month of the building is used.
func (h *ReservationHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	query := r.URL.Query()
	today := h.service.Today()
	params := application.CalendarParams{
		Principal: principal,
		Year:      today.Year,
		Month:     today.Month,
		AreaID:    strings.TrimSpace(query.Get("area")),
	}
	if raw := strings.TrimSpace(query.Get("month")); raw != "" {
		year, month, ok := parseMonth(raw)
		if !ok {
			h.responder.writeValidation(r.Context(), w, fieldInvalid("month", "Mês inválido"))
			return
		}
		params.Year, params.Month = year, month
	}

	calendar, err := h.service.Calendar(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "Calendar", "month", params.Month, "year", params.Year).ErrorContext(r.Context(), "failed to build calendar", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCalendarDTO(calendar))
}

func (h *ReservationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateStatus", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "actor_id", principal.UserID, "reservation_id", id, "status", req.Status)
	record, err := h.service.UpdateStatus(r.Context(), application.UpdateStatusParams{
		Principal:     principal,
		ReservationID: id,
		Status:        booking.ReservationStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update reservation status", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(record))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	logger := h.log(r.Context(), "Cancel", "actor_id", principal.UserID, "reservation_id", id)
	record, err := h.service.CancelReservation(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to cancel reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toReservationDTO(record))
}

func parseMonth(value string) (int, time.Month, bool) {
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, false
	}
	return parsed.Year(), parsed.Month(), true
}

type reservationRequest struct {
	AreaID          string   `json:"area_id"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	GuestCount      int      `json:"guest_count"`
	Purpose         string   `json:"purpose"`
	SpecialRequests string   `json:"special_requests"`
	AcceptsTerms    bool     `json:"accepts_terms"`
	PaymentMethod   string   `json:"payment_method"`
	ExtraItemIDs    []string `json:"extra_item_ids"`
}

// toRequest converts wire values. Values that fail to parse are left unset
// and listed in Malformed so booking.Validate reports them alongside every
// other failing field.
func (req reservationRequest) toRequest() booking.Request {
	out := booking.Request{
		AreaID:          strings.TrimSpace(req.AreaID),
		GuestCount:      req.GuestCount,
		Purpose:         req.Purpose,
		SpecialRequests: req.SpecialRequests,
		AcceptsTerms:    req.AcceptsTerms,
		PaymentMethod:   booking.PaymentMethod(strings.TrimSpace(req.PaymentMethod)),
		ExtraItemIDs:    req.ExtraItemIDs,
	}

	if raw := strings.TrimSpace(req.Date); raw != "" {
		if date, err := booking.ParseDate(raw); err != nil {
			out.Malformed = append(out.Malformed, booking.FieldDate)
		} else {
			out.Date = &date
		}
	}
	if start, err := booking.ParseClock(req.StartTime); err != nil {
		out.Malformed = append(out.Malformed, booking.FieldStartTime)
	} else {
		out.StartTime = start
	}
	if end, err := booking.ParseClock(req.EndTime); err != nil {
		out.Malformed = append(out.Malformed, booking.FieldEndTime)
	} else {
		out.EndTime = end
	}
	return out
}

type statusRequest struct {
	Status string `json:"status"`
}

type reservationDTO struct {
	ID                 string          `json:"id"`
	ResidentID         string          `json:"resident_id"`
	ResidentName       string          `json:"resident_name,omitempty"`
	AreaID             string          `json:"area_id"`
	AreaName           string          `json:"area_name,omitempty"`
	Date               string          `json:"date"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	GuestCount         int             `json:"guest_count"`
	Purpose            string          `json:"purpose"`
	SpecialRequests    string          `json:"special_requests,omitempty"`
	PaymentMethod      string          `json:"payment_method"`
	ExtraItemIDs       []string        `json:"extra_item_ids"`
	Status             string          `json:"status"`
	StatusLabel        string          `json:"status_label"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaymentStatus      string          `json:"payment_status"`
	PaymentStatusLabel string          `json:"payment_status_label"`
	CreatedAt          string          `json:"created_at,omitempty"`
	UpdatedAt          string          `json:"updated_at,omitempty"`
}

func toReservationDTO(record booking.Record) reservationDTO {
	extras := record.ExtraItemIDs
	if extras == nil {
		extras = []string{}
	}
	return reservationDTO{
		ID:                 record.ID,
		ResidentID:         record.ResidentID,
		ResidentName:       record.ResidentName,
		AreaID:             record.AreaID,
		AreaName:           record.AreaName,
		Date:               record.Date.String(),
		StartTime:          record.StartTime.String(),
		EndTime:            record.EndTime.String(),
		GuestCount:         record.GuestCount,
		Purpose:            record.Purpose,
		SpecialRequests:    record.SpecialRequests,
		PaymentMethod:      string(record.PaymentMethod),
		ExtraItemIDs:       extras,
		Status:             string(record.Status),
		StatusLabel:        record.Status.Label(),
		TotalAmount:        record.TotalAmount,
		PaymentStatus:      string(record.PaymentStatus),
		PaymentStatusLabel: record.PaymentStatus.Label(),
		CreatedAt:          formatTimestamp(record.CreatedAt),
		UpdatedAt:          formatTimestamp(record.UpdatedAt),
	}
}

type slotDTO struct {
	ReservationID string `json:"reservation_id"`
	AreaID        string `json:"area_id"`
	AreaName      string `json:"area_name,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
}

type calendarDayDTO struct {
	Date    string    `json:"date"`
	InMonth bool      `json:"in_month"`
	IsToday bool      `json:"is_today"`
	Slots   []slotDTO `json:"slots"`
}

type calendarDTO struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Area  string            `json:"area"`
	Today string            `json:"today"`
	Days  map[int][]slotDTO `json:"days"`
	Grid  []calendarDayDTO  `json:"grid"`
}

func toSlotDTOs(slots []booking.Slot) []slotDTO {
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotDTO{
			ReservationID: slot.ReservationID,
			AreaID:        slot.AreaID,
			AreaName:      slot.AreaName,
			StartTime:     slot.StartTime.String(),
			EndTime:       slot.EndTime.String(),
			Status:        string(slot.Status),
		})
	}
	return out
}

func toCalendarDTO(calendar application.Calendar) calendarDTO {
	days := make(map[int][]slotDTO, len(calendar.Days))
	for day, slots := range calendar.Days {
		days[day] = toSlotDTOs(slots)
	}
	grid := make([]calendarDayDTO, 0, len(calendar.Grid))
	for _, cell := range calendar.Grid {
		grid = append(grid, calendarDayDTO{
			Date:    cell.Date.String(),
			InMonth: cell.InMonth,
			IsToday: cell.IsToday,
			Slots:   toSlotDTOs(cell.Slots),
		})
	}
	return calendarDTO{
		Year:  calendar.Year,
		Month: int(calendar.Month),
		Area:  calendar.Area,
		Today: calendar.Today.String(),
		Days:  days,
		Grid:  grid,
	}
}
