package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetClinicStatus returns the clinic status row. Returns nil if the table is empty.
func (db *DB) GetClinicStatus(ctx context.Context) (*ClinicStatus, error) {
	var s ClinicStatus
	err := db.pool.QueryRow(ctx,
		`SELECT id, estimated_wait_minutes, updated_at FROM clinic_status
		 ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&s.ID, &s.EstimatedWaitMinutes, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get clinic status: %w", err)
	}
	return &s, nil
}

// UpdateWaitTime sets the estimated wait on the status row and returns it.
// The row is created if Migrate has not seeded it yet.
func (db *DB) UpdateWaitTime(ctx context.Context, minutes int) (*ClinicStatus, error) {
	current, err := db.GetClinicStatus(ctx)
	if err != nil {
		return nil, err
	}

	var s ClinicStatus
	if current == nil {
		err = db.pool.QueryRow(ctx,
			`INSERT INTO clinic_status (estimated_wait_minutes) VALUES ($1)
			 RETURNING id, estimated_wait_minutes, updated_at`,
			minutes,
		).Scan(&s.ID, &s.EstimatedWaitMinutes, &s.UpdatedAt)
	} else {
		err = db.pool.QueryRow(ctx,
			`UPDATE clinic_status SET estimated_wait_minutes = $1, updated_at = NOW()
			 WHERE id = $2
			 RETURNING id, estimated_wait_minutes, updated_at`,
			minutes, current.ID,
		).Scan(&s.ID, &s.EstimatedWaitMinutes, &s.UpdatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update wait time: %w", err)
	}
	return &s, nil
}
