package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
)

const patientColumns = `id, full_name, phone_number, symptom_category, language_pref, iv_selection, is_seen, created_at`

// CreatePatient inserts a new check-in and returns the stored row.
func (db *DB) CreatePatient(ctx context.Context, in *PatientInput) (*Patient, error) {
	var selection []byte
	if in.IVSelection != nil {
		b, err := json.Marshal(in.IVSelection)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal IV selection: %w", err)
		}
		selection = b
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO patient_queue (full_name, phone_number, symptom_category, language_pref, iv_selection)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+patientColumns,
		in.FullName, in.PhoneNumber, in.SymptomCategory, in.LanguagePref, selection,
	)
	p, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return p, nil
}

// GetPatient retrieves a queue entry by ID. Returns nil if not found.
func (db *DB) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patient_queue WHERE id = $1`, id)
	p, err := scanPatient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// ListWaitingPatients returns unseen patients, oldest check-in first.
func (db *DB) ListWaitingPatients(ctx context.Context) ([]Patient, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+patientColumns+` FROM patient_queue
		 WHERE is_seen = FALSE ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting patients: %w", err)
	}
	defer rows.Close()

	patients := []Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list waiting patients: %w", err)
	}
	return patients, nil
}

// MarkPatientSeen flags a patient as seen and returns the updated row.
// Returns nil if the patient does not exist.
func (db *DB) MarkPatientSeen(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE patient_queue SET is_seen = TRUE WHERE id = $1 RETURNING `+patientColumns, id)
	p, err := scanPatient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark patient seen: %w", err)
	}
	return p, nil
}

// DeletePatient removes a queue entry and returns what was deleted.
// Returns nil if the patient does not exist.
func (db *DB) DeletePatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := db.pool.QueryRow(ctx,
		`DELETE FROM patient_queue WHERE id = $1 RETURNING `+patientColumns, id)
	p, err := scanPatient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete patient: %w", err)
	}
	return p, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var selection []byte
	if err := row.Scan(&p.ID, &p.FullName, &p.PhoneNumber, &p.SymptomCategory,
		&p.LanguagePref, &selection, &p.IsSeen, &p.CreatedAt); err != nil {
		return nil, err
	}
	if len(selection) > 0 {
		var sel ivbuilder.Selection
		if err := json.Unmarshal(selection, &sel); err != nil {
			return nil, fmt.Errorf("failed to decode IV selection: %w", err)
		}
		p.IVSelection = &sel
	}
	return &p, nil
}
