package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/booking"
)

// AreaRepository exposes persistence operations for common areas and the
// extra item catalog.
type AreaRepository interface {
	ListAreas(ctx context.Context) ([]booking.CommonArea, error)
	GetArea(ctx context.Context, id string) (booking.CommonArea, error)
	CreateArea(ctx context.Context, area booking.CommonArea, createdAt time.Time) error
	UpdateArea(ctx context.Context, area booking.CommonArea, updatedAt time.Time) error
	ListExtraItems(ctx context.Context) ([]booking.ExtraItem, error)
}

// AreaService manages the common area catalog.
type AreaService struct {
	areas       AreaRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAreaService creates a new AreaService instance.
func NewAreaService(areas AreaRepository, idGenerator func() string, now func() time.Time) *AreaService {
	return NewAreaServiceWithLogger(areas, idGenerator, now, nil)
}

// NewAreaServiceWithLogger creates a new AreaService with a specified logger.
func NewAreaServiceWithLogger(areas AreaRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AreaService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AreaService{
		areas:       areas,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AreaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AreaService", operation, attrs...)
}

// ListAreas returns every area. Any signed-in role may browse the catalog.
func (s *AreaService) ListAreas(ctx context.Context) (areas []booking.CommonArea, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListAreas")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list areas", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	areas, err = s.areas.ListAreas(ctx)
	if err != nil {
		err = mapRepoError(err, "area", "Área inválida")
	}
	return
}

// GetArea returns a single area.
func (s *AreaService) GetArea(ctx context.Context, id string) (area booking.CommonArea, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	trimmed := strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "GetArea", "area_id", trimmed)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get area", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if trimmed == "" {
		err = ErrNotFound
		return
	}
	area, err = s.areas.GetArea(ctx, trimmed)
	if err != nil {
		err = mapRepoError(err, "area", "Área inválida")
	}
	return
}

// ListExtras returns the extra item catalog.
func (s *AreaService) ListExtras(ctx context.Context) (extras []booking.ExtraItem, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	extras, err = s.areas.ListExtraItems(ctx)
	if err != nil {
		err = mapRepoError(err, "extra_items", "Item extra inválido")
		s.loggerWith(ctx, "ListExtras").ErrorContext(ctx, "failed to list extra items", "error", err, "error_kind", ErrorKind(err))
	}
	return
}

// CreateArea registers a new area. Syndics and administrators only.
func (s *AreaService) CreateArea(ctx context.Context, params CreateAreaParams) (area booking.CommonArea, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateArea",
		"principal_id", params.Principal.UserID,
		"name", strings.TrimSpace(params.Input.Name),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create area", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("area_id", area.ID).InfoContext(ctx, "area created")
	}()

	if !params.Principal.IsManager() {
		err = ErrUnauthorized
		return
	}

	area, err = buildArea(params.Input)
	if err != nil {
		return
	}
	area.ID = s.idGenerator()

	if err = s.areas.CreateArea(ctx, area, s.now()); err != nil {
		area = booking.CommonArea{}
		err = mapRepoError(err, "name", "Área inválida")
		return
	}
	return
}

// UpdateArea replaces the editable attributes of an area. Syndics and
// administrators only.
func (s *AreaService) UpdateArea(ctx context.Context, params UpdateAreaParams) (area booking.CommonArea, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	areaID := strings.TrimSpace(params.AreaID)
	logger := s.loggerWith(ctx, "UpdateArea",
		"principal_id", params.Principal.UserID,
		"area_id", areaID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update area", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "area updated")
	}()

	if !params.Principal.IsManager() {
		err = ErrUnauthorized
		return
	}

	if _, err = s.areas.GetArea(ctx, areaID); err != nil {
		err = mapRepoError(err, "area", "Área inválida")
		return
	}

	area, err = buildArea(params.Input)
	if err != nil {
		return
	}
	area.ID = areaID

	if err = s.areas.UpdateArea(ctx, area, s.now()); err != nil {
		area = booking.CommonArea{}
		err = mapRepoError(err, "name", "Área inválida")
		return
	}
	return
}

// Quote prices a prospective reservation. Unknown extra items are ignored.
func (s *AreaService) Quote(ctx context.Context, params QuoteParams) (result QuoteResult, err error) {
	if s == nil {
		err = fmt.Errorf("AreaService is nil")
		return
	}
	if s.areas == nil {
		err = fmt.Errorf("area repository not configured")
		return
	}

	var area booking.CommonArea
	area, err = s.areas.GetArea(ctx, strings.TrimSpace(params.AreaID))
	if err != nil {
		err = mapRepoError(err, "area", "Área inválida")
		return
	}

	var catalog []booking.ExtraItem
	catalog, err = s.areas.ListExtraItems(ctx)
	if err != nil {
		err = mapRepoError(err, "extra_items", "Item extra inválido")
		return
	}
	extras := selectExtras(catalog, params.ExtraItemIDs)

	result = QuoteResult{
		Area:         area,
		AreaAmount:   decimal.Zero,
		ExtrasAmount: decimal.Zero,
		Total:        booking.Quote(area, params.StartTime, params.EndTime, extras),
	}
	if params.StartTime.Set && params.EndTime.Set {
		result.Hours = booking.BillableHours(params.StartTime.Time, params.EndTime.Time)
		result.AreaAmount = area.HourlyRate.Mul(decimal.NewFromInt(int64(result.Hours))).Round(2)
		result.ExtrasAmount = result.Total.Sub(result.AreaAmount)
	}
	return
}

func selectExtras(catalog []booking.ExtraItem, ids []string) []booking.ExtraItem {
	byID := make(map[string]booking.ExtraItem, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}
	selected := make([]booking.ExtraItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[strings.TrimSpace(id)]; ok {
			selected = append(selected, item)
		}
	}
	return selected
}

func buildArea(input AreaInput) (booking.CommonArea, error) {
	vErr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "required", "Nome é obrigatório")
	}
	if input.Capacity < 1 {
		vErr.add("capacity", "invalid", "Capacidade deve ser maior que zero")
	}
	if input.HourlyRate.IsNegative() {
		vErr.add("hourly_rate", "invalid", "Valor por hora não pode ser negativo")
	}

	opens, opensErr := booking.ParseTimeOfDay(input.OpensAt)
	if opensErr != nil {
		vErr.add("opens_at", "invalid", "Horário de abertura inválido")
	}
	closes, closesErr := booking.ParseTimeOfDay(input.ClosesAt)
	if closesErr != nil {
		vErr.add("closes_at", "invalid", "Horário de fechamento inválido")
	}
	if opensErr == nil && closesErr == nil && closes <= opens {
		vErr.add("closes_at", "before_open", "O fechamento deve ser depois da abertura")
	}

	status := input.Status
	if status == "" {
		status = booking.AreaActive
	}
	if !status.Valid() {
		vErr.add("status", "invalid", "Status inválido")
	}

	if vErr.HasErrors() {
		return booking.CommonArea{}, vErr
	}

	return booking.CommonArea{
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		Capacity:       input.Capacity,
		HourlyRate:     input.HourlyRate.Round(2),
		AvailableHours: booking.Hours{Start: opens, End: closes},
		Rules:          trimList(input.Rules),
		Amenities:      trimList(input.Amenities),
		Status:         status,
	}, nil
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
