package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/condo-portal/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	db *DB
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationSelect = `
	SELECT r.id, r.profile_id, r.area_id, r.reservation_date, r.start_time, r.end_time,
		r.guest_count, r.purpose, r.special_requests, r.payment_method, r.status,
		r.total_amount, r.payment_status, r.created_at, r.updated_at,
		a.name, p.full_name
	FROM reservations r
	JOIN areas a ON a.id = r.area_id
	JOIN profiles p ON p.id = r.profile_id`

// CreateReservation inserts the reservation and its extra items in one
// transaction.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.ProfileID == "" || reservation.AreaID == "" {
		return persistence.ErrConstraintViolation
	}
	stampTimes(&reservation.CreatedAt, &reservation.UpdatedAt)

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (
				id, profile_id, area_id, reservation_date, start_time, end_time,
				guest_count, purpose, special_requests, payment_method, status,
				total_amount, payment_status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			reservation.ID,
			reservation.ProfileID,
			reservation.AreaID,
			reservation.Date,
			reservation.StartTime,
			reservation.EndTime,
			reservation.GuestCount,
			reservation.Purpose,
			reservation.SpecialRequests,
			reservation.PaymentMethod,
			reservation.Status,
			reservation.TotalAmount.StringFixed(2),
			reservation.PaymentStatus,
			formatTime(reservation.CreatedAt),
			formatTime(reservation.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		for i, extraID := range reservation.ExtraItemIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reservation_extras (reservation_id, extra_item_id, position)
				VALUES (?, ?, ?)`,
				reservation.ID, extraID, i,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// GetReservation retrieves a reservation with its extra items.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	reservation, err := scanReservation(r.db.SQL().QueryRowContext(ctx, reservationSelect+` WHERE r.id = ?`, id))
	if err != nil {
		return persistence.Reservation{}, err
	}

	extras, err := loadExtras(ctx, r.db.SQL(), []string{reservation.ID})
	if err != nil {
		return persistence.Reservation{}, err
	}
	reservation.ExtraItemIDs = extras[reservation.ID]
	return reservation, nil
}

// ListReservations returns reservations matching filter ordered by date,
// start time and ID.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ProfileID != "" {
		conditions = append(conditions, "r.profile_id = ?")
		args = append(args, filter.ProfileID)
	}
	if filter.AreaID != "" {
		conditions = append(conditions, "r.area_id = ?")
		args = append(args, filter.AreaID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "r.status = ?")
		args = append(args, filter.Status)
	}
	if filter.FromDate != "" {
		conditions = append(conditions, "r.reservation_date >= ?")
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		conditions = append(conditions, "r.reservation_date <= ?")
		args = append(args, filter.ToDate)
	}

	query := reservationSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.reservation_date, r.start_time, r.id"

	rows, err := r.db.SQL().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var (
		reservations []persistence.Reservation
		ids          []string
	)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
		ids = append(ids, reservation.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	rows.Close()

	extras, err := loadExtras(ctx, r.db.SQL(), ids)
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		reservations[i].ExtraItemIDs = extras[reservations[i].ID]
	}
	return reservations, nil
}

// UpdateReservationStatus sets the lifecycle status of a reservation.
func (r *ReservationRepository) UpdateReservationStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	result, err := r.db.SQL().ExecContext(ctx, `
		UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?`,
		status, formatTime(updatedAt), id,
	)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(result)
}

// loadExtras returns the extra item IDs of each reservation in insertion order.
func loadExtras(ctx context.Context, q queryer, reservationIDs []string) (map[string][]string, error) {
	extras := make(map[string][]string, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return extras, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(reservationIDs)), ",")
	args := make([]any, len(reservationIDs))
	for i, id := range reservationIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, `
		SELECT reservation_id, extra_item_id
		FROM reservation_extras
		WHERE reservation_id IN (`+placeholders+`)
		ORDER BY reservation_id, position`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var reservationID, extraID string
		if err := rows.Scan(&reservationID, &extraID); err != nil {
			return nil, mapError(err)
		}
		extras[reservationID] = append(extras[reservationID], extraID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return extras, nil
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		reservation          persistence.Reservation
		total                string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&reservation.ID,
		&reservation.ProfileID,
		&reservation.AreaID,
		&reservation.Date,
		&reservation.StartTime,
		&reservation.EndTime,
		&reservation.GuestCount,
		&reservation.Purpose,
		&reservation.SpecialRequests,
		&reservation.PaymentMethod,
		&reservation.Status,
		&total,
		&reservation.PaymentStatus,
		&createdAt,
		&updatedAt,
		&reservation.AreaName,
		&reservation.ResidentName,
	)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}

	if reservation.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return persistence.Reservation{}, fmt.Errorf("parse total_amount of reservation %s: %w", reservation.ID, err)
	}
	if reservation.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}
