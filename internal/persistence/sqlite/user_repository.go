package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/condo-portal/internal/persistence"
)

// AccountRepository implements persistence.AccountRepository using SQLite.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const profileColumns = `id, user_id, full_name, email, phone, role, apartment_number, building_id, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateAccount inserts the user and its profile in one transaction.
func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.Account) error {
	user := account.User
	profile := account.Profile

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" || user.Email == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	if profile.ID == "" {
		return persistence.ErrConstraintViolation
	}
	profile.UserID = user.ID
	if profile.Email == "" {
		profile.Email = user.Email
	}
	stampTimes(&user.CreatedAt, &user.UpdatedAt)
	stampTimes(&profile.CreatedAt, &profile.UpdatedAt)

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			user.ID,
			user.Email,
			user.PasswordHash,
			formatTime(user.CreatedAt),
			formatTime(user.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (`+profileColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			profile.ID,
			profile.UserID,
			strings.TrimSpace(profile.FullName),
			profile.Email,
			profile.Phone,
			profile.Role,
			profile.ApartmentNumber,
			profile.BuildingID,
			profile.IsActive,
			formatTime(profile.CreatedAt),
			formatTime(profile.UpdatedAt),
		)
		return mapError(err)
	})
}

// GetUser retrieves a user by ID.
func (r *AccountRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.db.SQL().QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (r *AccountRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.db.SQL().QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetProfile retrieves a profile by ID.
func (r *AccountRepository) GetProfile(ctx context.Context, id string) (persistence.Profile, error) {
	if id == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	row := r.db.SQL().QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// GetProfileByUserID retrieves the profile attached to a user.
func (r *AccountRepository) GetProfileByUserID(ctx context.Context, userID string) (persistence.Profile, error) {
	if userID == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	row := r.db.SQL().QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	return scanProfile(row)
}

// ListProfiles returns every profile ordered by name.
func (r *AccountRepository) ListProfiles(ctx context.Context) ([]persistence.Profile, error) {
	rows, err := r.db.SQL().QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY full_name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var profiles []persistence.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return profiles, nil
}

// UpdateProfile replaces the mutable profile fields. UserID, Email and
// CreatedAt are preserved.
func (r *AccountRepository) UpdateProfile(ctx context.Context, profile persistence.Profile) error {
	if profile.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}

	result, err := r.db.SQL().ExecContext(ctx, `
		UPDATE profiles
		SET full_name = ?, phone = ?, role = ?, apartment_number = ?, building_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		strings.TrimSpace(profile.FullName),
		profile.Phone,
		profile.Role,
		profile.ApartmentNumber,
		profile.BuildingID,
		profile.IsActive,
		formatTime(profile.UpdatedAt),
		profile.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return affectedOne(result)
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, mapError(err)
	}

	var err error
	if user.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

func scanProfile(row rowScanner) (persistence.Profile, error) {
	var (
		profile              persistence.Profile
		createdAt, updatedAt string
	)
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Email,
		&profile.Phone,
		&profile.Role,
		&profile.ApartmentNumber,
		&profile.BuildingID,
		&profile.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Profile{}, mapError(err)
	}

	if profile.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Profile{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}
	if profile.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Profile{}, fmt.Errorf("profile %s: %w", profile.ID, err)
	}
	return profile, nil
}
