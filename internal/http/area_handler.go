package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/application"
	"github.com/example/condo-portal/internal/booking"
)

type areaService interface {
	ListAreas(ctx context.Context) ([]booking.CommonArea, error)
	GetArea(ctx context.Context, id string) (booking.CommonArea, error)
	ListExtras(ctx context.Context) ([]booking.ExtraItem, error)
	CreateArea(ctx context.Context, params application.CreateAreaParams) (booking.CommonArea, error)
	UpdateArea(ctx context.Context, params application.UpdateAreaParams) (booking.CommonArea, error)
	Quote(ctx context.Context, params application.QuoteParams) (application.QuoteResult, error)
}

type AreaHandler struct {
	service   areaService
	responder responder
	logger    *slog.Logger
}

func NewAreaHandler(service areaService, logger *slog.Logger) *AreaHandler {
	base := defaultLogger(logger)
	return &AreaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AreaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AreaHandler", operation, attrs...)
}

func (h *AreaHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areas, err := h.service.ListAreas(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list areas", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]areaDTO, 0, len(areas))
	for _, area := range areas {
		resp = append(resp, toAreaDTO(area))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *AreaHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	area, err := h.service.GetArea(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "area_id", id).ErrorContext(r.Context(), "failed to load area", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAreaDTO(area))
}

func (h *AreaHandler) ListExtras(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	extras, err := h.service.ListExtras(r.Context())
	if err != nil {
		h.log(r.Context(), "ListExtras").ErrorContext(r.Context(), "failed to list extras", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := make([]extraDTO, 0, len(extras))
	for _, extra := range extras {
		resp = append(resp, extraDTO{ID: extra.ID, Name: extra.Name, Description: extra.Description, Price: extra.Price})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *AreaHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	principal, ok := principalFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, "AUTH_REQUIRED", msgAuthRequired, nil)
		return
	}

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode area payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", principal.UserID)
	area, err := h.service.CreateArea(r.Context(), application.CreateAreaParams{Principal: principal, Input: req.input()})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create area", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("area_id", area.ID).InfoContext(r.Context(), "area created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAreaDTO(area))
}

func (h *AreaHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode area payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", principal.UserID, "area_id", id)
	area, err := h.service.UpdateArea(r.Context(), application.UpdateAreaParams{Principal: principal, AreaID: id, Input: req.input()})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update area", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "area updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAreaDTO(area))
}

// Quote prices a prospective reservation. Amounts stay zero until both
// times are chosen.
func (h *AreaHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Quote", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode quote payload", "error", err)
		h.responder.writeBadRequest(r.Context(), w, errBadRequestBody)
		return
	}

	start, err := booking.ParseClock(req.StartTime)
	if err != nil {
		h.responder.writeValidation(r.Context(), w, fieldInvalid(booking.FieldStartTime, "Horário inválido"))
		return
	}
	end, err := booking.ParseClock(req.EndTime)
	if err != nil {
		h.responder.writeValidation(r.Context(), w, fieldInvalid(booking.FieldEndTime, "Horário inválido"))
		return
	}

	quote, err := h.service.Quote(r.Context(), application.QuoteParams{
		AreaID:       id,
		StartTime:    start,
		EndTime:      end,
		ExtraItemIDs: req.ExtraItemIDs,
	})
	if err != nil {
		h.log(r.Context(), "Quote", "area_id", id).ErrorContext(r.Context(), "failed to quote reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, quoteResponse{
		AreaID:       quote.Area.ID,
		Hours:        quote.Hours,
		AreaAmount:   quote.AreaAmount,
		ExtrasAmount: quote.ExtrasAmount,
		Total:        quote.Total,
	})
}

type areaRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Capacity    int             `json:"capacity"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	OpensAt     string          `json:"opens_at"`
	ClosesAt    string          `json:"closes_at"`
	Rules       []string        `json:"rules"`
	Amenities   []string        `json:"amenities"`
	Status      string          `json:"status"`
}

func (req areaRequest) input() application.AreaInput {
	return application.AreaInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		HourlyRate:  req.HourlyRate,
		OpensAt:     req.OpensAt,
		ClosesAt:    req.ClosesAt,
		Rules:       req.Rules,
		Amenities:   req.Amenities,
		Status:      booking.AreaStatus(strings.TrimSpace(req.Status)),
	}
}

type areaDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Capacity    int             `json:"capacity"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	OpensAt     string          `json:"opens_at"`
	ClosesAt    string          `json:"closes_at"`
	TimeOptions []string        `json:"time_options"`
	Rules       []string        `json:"rules"`
	Amenities   []string        `json:"amenities"`
	Status      string          `json:"status"`
	StatusLabel string          `json:"status_label"`
}

func toAreaDTO(area booking.CommonArea) areaDTO {
	options := booking.TimeOptions(area.AvailableHours)
	times := make([]string, len(options))
	for i, option := range options {
		times[i] = option.String()
	}
	rules := area.Rules
	if rules == nil {
		rules = []string{}
	}
	amenities := area.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return areaDTO{
		ID:          area.ID,
		Name:        area.Name,
		Description: area.Description,
		Capacity:    area.Capacity,
		HourlyRate:  area.HourlyRate,
		OpensAt:     area.AvailableHours.Start.String(),
		ClosesAt:    area.AvailableHours.End.String(),
		TimeOptions: times,
		Rules:       rules,
		Amenities:   amenities,
		Status:      string(area.Status),
		StatusLabel: area.Status.Label(),
	}
}

type extraDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type quoteRequest struct {
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	ExtraItemIDs []string `json:"extra_item_ids"`
}

type quoteResponse struct {
	AreaID       string          `json:"area_id"`
	Hours        int             `json:"hours"`
	AreaAmount   decimal.Decimal `json:"area_amount"`
	ExtrasAmount decimal.Decimal `json:"extras_amount"`
	Total        decimal.Decimal `json:"total"`
}
