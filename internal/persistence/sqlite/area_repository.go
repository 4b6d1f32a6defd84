package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/persistence"
)

// AreaRepository implements persistence.AreaRepository using SQLite.
type AreaRepository struct {
	db *DB
}

// NewAreaRepository creates a new SQLite area repository.
func NewAreaRepository(db *DB) *AreaRepository {
	return &AreaRepository{db: db}
}

const areaColumns = `id, name, description, capacity, hourly_rate, opens_at, closes_at, rules, amenities, status, created_at, updated_at`

// CreateArea inserts a new common area.
func (r *AreaRepository) CreateArea(ctx context.Context, area persistence.Area) error {
	if area.ID == "" || strings.TrimSpace(area.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	stampTimes(&area.CreatedAt, &area.UpdatedAt)

	rules, amenities, err := encodeAreaLists(area)
	if err != nil {
		return err
	}

	_, err = r.db.SQL().ExecContext(ctx, `
		INSERT INTO areas (`+areaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		area.ID,
		strings.TrimSpace(area.Name),
		area.Description,
		area.Capacity,
		area.HourlyRate.StringFixed(2),
		area.OpensAt,
		area.ClosesAt,
		rules,
		amenities,
		area.Status,
		formatTime(area.CreatedAt),
		formatTime(area.UpdatedAt),
	)
	return mapError(err)
}

// UpdateArea replaces every mutable field of an area.
func (r *AreaRepository) UpdateArea(ctx context.Context, area persistence.Area) error {
	if area.ID == "" || strings.TrimSpace(area.Name) == "" {
		return persistence.ErrConstraintViolation
	}
	if area.UpdatedAt.IsZero() {
		area.UpdatedAt = time.Now().UTC()
	}

	rules, amenities, err := encodeAreaLists(area)
	if err != nil {
		return err
	}

	result, err := r.db.SQL().ExecContext(ctx, `
		UPDATE areas
		SET name = ?, description = ?, capacity = ?, hourly_rate = ?, opens_at = ?, closes_at = ?,
			rules = ?, amenities = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		strings.TrimSpace(area.Name),
		area.Description,
		area.Capacity,
		area.HourlyRate.StringFixed(2),
		area.OpensAt,
		area.ClosesAt,
		rules,
		amenities,
		area.Status,
		formatTime(area.UpdatedAt),
		area.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(result)
}

// GetArea retrieves an area by ID.
func (r *AreaRepository) GetArea(ctx context.Context, id string) (persistence.Area, error) {
	if id == "" {
		return persistence.Area{}, persistence.ErrNotFound
	}
	return scanArea(r.db.SQL().QueryRowContext(ctx, `SELECT `+areaColumns+` FROM areas WHERE id = ?`, id))
}

// ListAreas returns every area ordered by name.
func (r *AreaRepository) ListAreas(ctx context.Context) ([]persistence.Area, error) {
	rows, err := r.db.SQL().QueryContext(ctx, `SELECT `+areaColumns+` FROM areas ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var areas []persistence.Area
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return areas, nil
}

// ListExtraItems returns the extra item catalog ordered by ID.
func (r *AreaRepository) ListExtraItems(ctx context.Context) ([]persistence.ExtraItem, error) {
	rows, err := r.db.SQL().QueryContext(ctx, `
		SELECT id, name, description, price
		FROM extra_items
		ORDER BY CAST(id AS INTEGER), id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var items []persistence.ExtraItem
	for rows.Next() {
		var (
			item  persistence.ExtraItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &price); err != nil {
			return nil, mapError(err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price of extra item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func encodeAreaLists(area persistence.Area) (string, string, error) {
	rules, err := encodeList(area.Rules)
	if err != nil {
		return "", "", err
	}
	amenities, err := encodeList(area.Amenities)
	if err != nil {
		return "", "", err
	}
	return rules, amenities, nil
}

func scanArea(row rowScanner) (persistence.Area, error) {
	var (
		area                 persistence.Area
		rate                 string
		rules, amenities     string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&area.ID,
		&area.Name,
		&area.Description,
		&area.Capacity,
		&rate,
		&area.OpensAt,
		&area.ClosesAt,
		&rules,
		&amenities,
		&area.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Area{}, mapError(err)
	}

	if area.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return persistence.Area{}, fmt.Errorf("parse hourly_rate of area %s: %w", area.ID, err)
	}
	if area.Rules, err = decodeList("rules", rules); err != nil {
		return persistence.Area{}, err
	}
	if area.Amenities, err = decodeList("amenities", amenities); err != nil {
		return persistence.Area{}, err
	}
	if area.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Area{}, err
	}
	if area.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Area{}, err
	}
	return area, nil
}
