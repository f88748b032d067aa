package db

import (
	"context"
	"fmt"

	"github.com/optimumcare/clinic-site/internal/ivbuilder"
)

// ListTreatments returns every IV treatment, most expensive first.
func (db *DB) ListTreatments(ctx context.Context) ([]ivbuilder.Treatment, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, description, base_price::float8, duration_min, benefits
		 FROM iv_treatments ORDER BY base_price DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	defer rows.Close()

	var treatments []ivbuilder.Treatment
	for rows.Next() {
		var t ivbuilder.Treatment
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.BasePrice, &t.DurationMin, &t.Benefits); err != nil {
			return nil, fmt.Errorf("failed to scan treatment: %w", err)
		}
		treatments = append(treatments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

// ListAddons returns every add-on, cheapest first.
func (db *DB) ListAddons(ctx context.Context) ([]ivbuilder.Addon, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, price::float8, category
		 FROM iv_addons ORDER BY price ASC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	defer rows.Close()

	var addons []ivbuilder.Addon
	for rows.Next() {
		var a ivbuilder.Addon
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.Category); err != nil {
			return nil, fmt.Errorf("failed to scan add-on: %w", err)
		}
		addons = append(addons, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	return addons, nil
}

// UpsertCatalog writes treatments and add-ons in one transaction, updating
// rows whose ID already exists.
func (db *DB) UpsertCatalog(ctx context.Context, treatments []ivbuilder.Treatment, addons []ivbuilder.Addon) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, t := range treatments {
		benefits := t.Benefits
		if benefits == nil {
			benefits = []string{}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO iv_treatments (id, name, description, base_price, duration_min, benefits)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET name = $2, description = $3, base_price = $4,
			     duration_min = $5, benefits = $6`,
			t.ID, t.Name, t.Description, t.BasePrice, t.DurationMin, benefits,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert treatment %s: %w", t.ID, err)
		}
	}

	for _, a := range addons {
		_, err := tx.Exec(ctx,
			`INSERT INTO iv_addons (id, name, price, category)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET name = $2, price = $3, category = $4`,
			a.ID, a.Name, a.Price, a.Category,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert add-on %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}
