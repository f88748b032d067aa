package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const staffColumns = `id, name, email, role, password_hash, created_at, updated_at`

// CreateStaff inserts a staff account with an already hashed password.
// Returns ErrDuplicateEmail if the email is registered.
func (db *DB) CreateStaff(ctx context.Context, name, email, role, passwordHash string) (*StaffUser, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO staff_users (name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+staffColumns,
		name, strings.ToLower(strings.TrimSpace(email)), role, passwordHash,
	)
	u, err := scanStaff(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return u, nil
}

// GetStaff retrieves a staff account by ID. Returns nil if not found.
func (db *DB) GetStaff(ctx context.Context, id uuid.UUID) (*StaffUser, error) {
	u, err := scanStaff(db.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff_users WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}
	return u, nil
}

// GetStaffByEmail retrieves a staff account by email, case-insensitively.
// Returns nil if not found.
func (db *DB) GetStaffByEmail(ctx context.Context, email string) (*StaffUser, error) {
	u, err := scanStaff(db.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff_users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff user by email: %w", err)
	}
	return u, nil
}

// UpdateStaffPassword replaces the stored password hash.
func (db *DB) UpdateStaffPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE staff_users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("staff user not found: %s", id)
	}
	return nil
}

// DeleteStaff removes a staff account.
func (db *DB) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM staff_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("staff user not found: %s", id)
	}
	return nil
}

func scanStaff(row pgx.Row) (*StaffUser, error) {
	var u StaffUser
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
